package player

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"sync"
	"time"
)

// process is a launched player together with its private socket directory.
type process struct {
	cmd  *exec.Cmd
	dir  string
	done chan struct{}

	mu  sync.Mutex
	err error // result of cmd.Wait, valid once done is closed
}

// startProcess launches name with args. The socket directory is removed when
// the process is released.
func startProcess(name string, args []string, dir string, debug bool) (*process, error) {
	cmd := exec.Command(name, args...)
	if debug {
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &process{cmd: cmd, dir: dir, done: make(chan struct{})}
	go func() {
		err := cmd.Wait()
		p.mu.Lock()
		p.err = err
		p.mu.Unlock()
		close(p.done)
	}()
	return p, nil
}

func (p *process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// exitCode returns the process exit status, or -1 if it did not exit normally.
func (p *process) exitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(p.err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// release kills the process if it is still running and removes its socket dir.
func (p *process) release() {
	if p.cmd != nil && p.cmd.Process != nil && !p.exited() {
		p.cmd.Process.Kill()
		select {
		case <-p.done:
		case <-time.After(2 * time.Second):
		}
	}
	if p.dir != "" {
		os.RemoveAll(p.dir)
	}
}

// dialSocket waits for the player's control socket to accept a connection.
func dialSocket(ctx context.Context, p *process, socketPath string, timeout time.Duration) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	for {
		if p.exited() {
			return nil, fmt.Errorf("player exited with status %d before its control socket was ready", p.exitCode())
		}

		if _, err := os.Stat(socketPath); err == nil {
			conn, err := net.Dial("unix", socketPath)
			if err == nil {
				return conn, nil
			}
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("control socket %s not ready after %s", socketPath, timeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// stateBox holds the state shared by the socket reader, the exit watcher and
// callers of Handle.
type stateBox struct {
	mu    sync.Mutex
	state State

	ready     chan struct{}
	readyOnce sync.Once
}

func newStateBox() *stateBox {
	return &stateBox{ready: make(chan struct{})}
}

func (b *stateBox) get() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// set updates the state unless playback has already reached a terminal state.
func (b *stateBox) set(s State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state.Terminal() {
		return
	}
	b.state = s
}

func (b *stateBox) markReady() {
	b.readyOnce.Do(func() { close(b.ready) })
}

func (b *stateBox) isReady() bool {
	select {
	case <-b.ready:
		return true
	default:
		return false
	}
}

// exitState maps a player exit status to a final state. Both mpv and VLC use
// 0 for a normal end; mpv uses 4 when quit by the user or a signal.
func exitState(code int) State {
	if code == 0 || code == 4 {
		return Ended
	}
	return Error
}
