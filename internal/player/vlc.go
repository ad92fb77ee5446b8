package player

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"ytplay/internal/media"
)

// statusInterval is how often the VLC handle asks for a status line.
const statusInterval = 250 * time.Millisecond

// vlcStatePattern matches the state line of the rc interface's status reply.
var vlcStatePattern = regexp.MustCompile(`\( state (\w+) \)`)

// VLC implements the Engine interface for VLC media player, controlled
// through its remote-control (rc) interface on a Unix socket.
type VLC struct {
	opts Options
}

func (v *VLC) Name() string { return "vlc" }

func (v *VLC) Available() bool {
	_, err := exec.LookPath("vlc")
	return err == nil
}

// Start launches VLC with the rc interface bound to a private socket.
func (v *VLC) Start(ctx context.Context, stream *media.Stream) (Handle, error) {
	socketDir, err := os.MkdirTemp("", "ytplay-vlc-*")
	if err != nil {
		return nil, fmt.Errorf("%w: creating temp dir for vlc socket: %v", ErrPlayerInit, err)
	}
	socketPath := filepath.Join(socketDir, "socket")

	args := []string{
		"--intf", "rc",
		"--rc-unix", socketPath,
		"--rc-fake-tty",
		"--play-and-exit",
	}
	if stream.Title != "" {
		args = append(args, "--meta-title", stream.Title)
	}
	args = append(args, stream.URL)

	proc, err := startProcess("vlc", args, socketDir, v.opts.Debug)
	if err != nil {
		os.RemoveAll(socketDir)
		return nil, fmt.Errorf("%w: starting vlc: %v", ErrPlayerInit, err)
	}

	conn, err := dialSocket(ctx, proc, socketPath, v.opts.StartTimeout)
	if err != nil {
		proc.release()
		return nil, fmt.Errorf("%w: %v", ErrPlaybackStart, err)
	}

	h := newVLCHandle(proc, conn)
	go h.pollStatus(statusInterval)
	return h, nil
}

type vlcHandle struct {
	proc *process
	conn net.Conn
	box  *stateBox

	writeMu sync.Mutex
	closed  chan struct{}
	once    sync.Once
}

func newVLCHandle(proc *process, conn net.Conn) *vlcHandle {
	h := &vlcHandle{proc: proc, conn: conn, box: newStateBox(), closed: make(chan struct{})}
	go h.readLines()
	go h.watchExit()
	return h
}

func (h *vlcHandle) readLines() {
	scanner := bufio.NewScanner(h.conn)
	for scanner.Scan() {
		h.handleLine(scanner.Text())
	}
}

func (h *vlcHandle) handleLine(line string) {
	m := vlcStatePattern.FindStringSubmatch(line)
	if m == nil {
		return
	}
	switch m[1] {
	case "playing":
		h.box.set(Playing)
		h.box.markReady()
	case "paused":
		h.box.set(Paused)
	case "stopped":
		// VLC reports stopped while still opening the input.
		if h.box.isReady() {
			h.box.set(Ended)
		}
	}
}

func (h *vlcHandle) pollStatus(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := h.send("status"); err != nil {
				return
			}
		case <-h.proc.done:
			return
		case <-h.closed:
			return
		}
	}
}

func (h *vlcHandle) watchExit() {
	<-h.proc.done
	h.box.set(exitState(h.proc.exitCode()))
	h.conn.Close()
}

func (h *vlcHandle) send(command string) error {
	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	h.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if _, err := h.conn.Write([]byte(command + "\n")); err != nil {
		return fmt.Errorf("sending %q to vlc: %w", command, err)
	}
	return nil
}

// TogglePause sends "pause", which the rc interface treats as a toggle.
func (h *vlcHandle) TogglePause() error {
	return h.send("pause")
}

func (h *vlcHandle) Stop() error {
	if h.proc.exited() {
		return nil
	}
	if err := h.send("stop"); err != nil {
		return err
	}
	return h.send("quit")
}

func (h *vlcHandle) State() State { return h.box.get() }

func (h *vlcHandle) Ready() <-chan struct{} { return h.box.ready }

func (h *vlcHandle) Close() error {
	h.once.Do(func() { close(h.closed) })
	h.conn.Close()
	h.proc.release()
	return nil
}
