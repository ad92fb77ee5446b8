package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"ytplay/internal/media"
)

// MPV implements the Engine interface for mpv, controlled over its JSON IPC
// socket at a randomized temp path.
type MPV struct {
	opts Options
}

func (m *MPV) Name() string { return "mpv" }

func (m *MPV) Available() bool {
	_, err := exec.LookPath("mpv")
	return err == nil
}

// Start launches mpv with the given stream and connects to its IPC socket.
func (m *MPV) Start(ctx context.Context, stream *media.Stream) (Handle, error) {
	// Randomized socket dir prevents symlink attacks
	socketDir, err := os.MkdirTemp("", "ytplay-mpv-*")
	if err != nil {
		return nil, fmt.Errorf("%w: creating temp dir for mpv socket: %v", ErrPlayerInit, err)
	}
	socketPath := filepath.Join(socketDir, "socket")

	args := []string{
		stream.URL,
		"--input-ipc-server=" + socketPath,
		"--no-terminal", // keys are read by ytplay, not mpv
		"--idle=no",
		"--keep-open=no",
	}
	if stream.Title != "" {
		args = append(args, "--force-media-title="+stream.Title)
	}

	proc, err := startProcess("mpv", args, socketDir, m.opts.Debug)
	if err != nil {
		os.RemoveAll(socketDir)
		return nil, fmt.Errorf("%w: starting mpv: %v", ErrPlayerInit, err)
	}

	conn, err := dialSocket(ctx, proc, socketPath, m.opts.StartTimeout)
	if err != nil {
		proc.release()
		return nil, fmt.Errorf("%w: %v", ErrPlaybackStart, err)
	}

	h := newMPVHandle(proc, conn)
	if err := h.send("observe_property", 1, "pause"); err != nil {
		h.Close()
		return nil, fmt.Errorf("%w: %v", ErrPlaybackStart, err)
	}
	return h, nil
}

type mpvHandle struct {
	proc *process
	conn net.Conn
	box  *stateBox

	writeMu sync.Mutex
	paused  bool // guarded by box.mu
}

func newMPVHandle(proc *process, conn net.Conn) *mpvHandle {
	h := &mpvHandle{proc: proc, conn: conn, box: newStateBox()}
	go h.readEvents()
	go h.watchExit()
	return h
}

// mpvEvent covers both asynchronous events and command replies.
type mpvEvent struct {
	Event     string          `json:"event"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	Reason    string          `json:"reason"`
	FileError string          `json:"file_error"`
	Error     string          `json:"error"`
}

func (h *mpvHandle) readEvents() {
	scanner := bufio.NewScanner(h.conn)
	for scanner.Scan() {
		var ev mpvEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		h.handleEvent(ev)
	}
}

func (h *mpvHandle) handleEvent(ev mpvEvent) {
	switch ev.Event {
	case "property-change":
		if ev.Name != "pause" {
			return
		}
		var paused bool
		if err := json.Unmarshal(ev.Data, &paused); err != nil {
			return
		}
		h.box.mu.Lock()
		h.paused = paused
		h.box.mu.Unlock()
		if h.box.isReady() {
			h.box.set(h.playState())
		}
	case "file-loaded":
		h.box.set(h.playState())
		h.box.markReady()
	case "end-file":
		switch ev.Reason {
		case "error":
			h.box.set(Error)
		case "eof", "stop", "quit":
			h.box.set(Ended)
		}
	}
}

func (h *mpvHandle) playState() State {
	h.box.mu.Lock()
	defer h.box.mu.Unlock()
	if h.paused {
		return Paused
	}
	return Playing
}

func (h *mpvHandle) watchExit() {
	<-h.proc.done
	h.box.set(exitState(h.proc.exitCode()))
	h.conn.Close()
}

// send writes one IPC command, e.g. send("cycle", "pause").
func (h *mpvHandle) send(args ...interface{}) error {
	data, err := json.Marshal(map[string]interface{}{"command": args})
	if err != nil {
		return err
	}
	data = append(data, '\n')

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	h.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
	if _, err := h.conn.Write(data); err != nil {
		return fmt.Errorf("sending %v to mpv: %w", args, err)
	}
	return nil
}

func (h *mpvHandle) TogglePause() error {
	return h.send("cycle", "pause")
}

func (h *mpvHandle) Stop() error {
	if h.proc.exited() {
		return nil
	}
	return h.send("stop")
}

func (h *mpvHandle) State() State { return h.box.get() }

func (h *mpvHandle) Ready() <-chan struct{} { return h.box.ready }

func (h *mpvHandle) Close() error {
	h.conn.Close()
	h.proc.release()
	return nil
}
