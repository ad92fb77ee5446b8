// Package player drives an external media player process through its control
// socket. All player invocations use exec.Command with explicit argument
// slices; no shell is involved.
package player

import (
	"context"
	"errors"
	"time"

	"ytplay/internal/media"
)

var (
	// ErrMissingCapability is returned when the player binary is not installed.
	ErrMissingCapability = errors.New("player is not available")

	// ErrPlayerInit is returned when the player process could not be constructed.
	ErrPlayerInit = errors.New("error initializing player")

	// ErrPlaybackStart is returned when the player was launched but never
	// accepted control commands.
	ErrPlaybackStart = errors.New("player failed to start playback")
)

// State is the lifecycle state reported by a player.
type State int

const (
	Idle State = iota
	Playing
	Paused
	Ended
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether playback is over.
func (s State) Terminal() bool {
	return s == Ended || s == Error
}

// Engine constructs playback sessions for one player program.
type Engine interface {
	// Name returns the player name.
	Name() string

	// Available checks if the player binary exists in PATH.
	Available() bool

	// Start launches the player against stream and returns once it accepts commands.
	Start(ctx context.Context, stream *media.Stream) (Handle, error)
}

// Handle is a running playback session. It is safe for concurrent use.
type Handle interface {
	// TogglePause flips between playing and paused.
	TogglePause() error

	// Stop ends playback. It is a no-op once the player has exited.
	Stop() error

	// State returns the last state reported by the player without blocking.
	State() State

	// Ready is closed once the player reports the media is loaded.
	Ready() <-chan struct{}

	// Close terminates the player process and releases its control socket.
	Close() error
}

// Options tune how engines launch their player.
type Options struct {
	// StartTimeout bounds the wait for the control socket to come up.
	StartTimeout time.Duration

	// Debug forwards the player's own output to stderr.
	Debug bool
}

// New creates an engine by name.
func New(name string, opts Options) Engine {
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = 5 * time.Second
	}
	switch name {
	case "vlc":
		return &VLC{opts: opts}
	default:
		return &MPV{opts: opts}
	}
}
