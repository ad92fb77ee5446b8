package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LineListener reads one command per line: "q" stops playback, "p" toggles
// pause. Anything else is rejected and the user is prompted again.
type LineListener struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLineListener reads commands from in. Pass the same *bufio.Reader used
// for earlier prompts so no buffered input is lost.
func NewLineListener(in io.Reader, out io.Writer) *LineListener {
	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	return &LineListener{in: br, out: out}
}

// Listen implements Listener. It returns nil on "q", on end of input and on
// cancellation. A blocked read is left behind when ctx is cancelled.
func (l *LineListener) Listen(ctx context.Context, c Controller) error {
	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		for {
			line, err := l.in.ReadString('\n')
			if line != "" {
				select {
				case lines <- line:
				case <-done:
					return
				}
			}
			if err != nil {
				errc <- err
				return
			}
		}
	}()

	fmt.Fprintln(l.out, "Enter command: 'q' to quit or 'p' to toggle pause/resume.")
	for {
		fmt.Fprint(l.out, "Command: ")

		select {
		case <-ctx.Done():
			fmt.Fprintln(l.out)
			return nil
		case err := <-errc:
			fmt.Fprintln(l.out)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading command: %w", err)
		case line := <-lines:
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "q":
				fmt.Fprintln(l.out, "Stop command received. Stopping playback...")
				if err := c.Stop(); err != nil {
					return fmt.Errorf("stopping playback: %w", err)
				}
				return nil
			case "p":
				fmt.Fprintln(l.out, "Toggling pause/resume...")
				if err := c.TogglePause(); err != nil {
					return fmt.Errorf("toggling pause: %w", err)
				}
			default:
				fmt.Fprintln(l.out, "Invalid command. Please enter 'q' or 'p'.")
			}
		}
	}
}
