// Package control translates user input into playback commands. Two input
// strategies exist: single key presses on a raw terminal, and one command per
// line for non-interactive stdin. The strategy is chosen once at startup.
package control

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"ytplay/internal/config"
	"ytplay/internal/player"
)

// ErrMissingCapability is returned when key mode is requested without a terminal.
var ErrMissingCapability = errors.New("key input requires an interactive terminal")

// Controller is the part of a playback session a listener may drive.
type Controller interface {
	TogglePause() error
	Stop() error
	State() player.State
}

// Listener reads user input and issues commands until the user quits or ctx
// is cancelled.
type Listener interface {
	Listen(ctx context.Context, c Controller) error
}

// IsTerminal reports whether both in and out are attached to a terminal.
func IsTerminal(in, out interface{}) bool {
	return isTTY(in) && isTTY(out)
}

func isTTY(v interface{}) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Select returns the listener for mode. In auto mode key input is used when
// tty is true. in and out serve line mode; key mode drives the terminal
// directly.
func Select(mode string, tty bool, in io.Reader, out io.Writer, debounce time.Duration) (Listener, error) {
	switch mode {
	case config.InputKeys:
		if !tty {
			return nil, ErrMissingCapability
		}
		return NewKeyListener(debounce), nil
	case config.InputLine:
		return NewLineListener(in, out), nil
	case config.InputAuto, "":
		if tty {
			return NewKeyListener(debounce), nil
		}
		return NewLineListener(in, out), nil
	default:
		return nil, fmt.Errorf("unknown input mode %q", mode)
	}
}
