// Package session sequences one playback: resolve the source, start the
// player, hand control to a listener and wait for playback to finish.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"ytplay/internal/control"
	"ytplay/internal/media"
	"ytplay/internal/player"
	"ytplay/internal/resolve"
)

// ErrEmptyInput is returned when the source reference is blank.
var ErrEmptyInput = errors.New("invalid URL: input is empty")

const (
	defaultPollInterval  = time.Second
	defaultSettleTimeout = time.Second
	defaultListenerGrace = 500 * time.Millisecond
)

// Session wires a resolver, an engine and a listener together.
type Session struct {
	Resolver resolve.Resolver
	Engine   player.Engine
	Listener control.Listener

	// PollInterval is how often the player state is checked.
	PollInterval time.Duration
	// SettleTimeout bounds the wait for the player's readiness signal.
	SettleTimeout time.Duration
	// ListenerGrace bounds the wait for the listener to return on exit.
	ListenerGrace time.Duration

	// Out receives user-facing status messages.
	Out io.Writer
}

// Result describes a finished playback.
type Result struct {
	Stream      *media.Stream
	FinalState  player.State
	Interrupted bool
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Resolve validates source and resolves it to a stream.
func (s *Session) Resolve(ctx context.Context, source string) (*media.Stream, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrEmptyInput
	}
	return s.Resolver.Resolve(ctx, source)
}

// Run plays source until the player reaches a terminal state or ctx is
// cancelled. Cancellation after playback has started is not an error.
func (s *Session) Run(ctx context.Context, source string) (*Result, error) {
	stream, err := s.Resolve(ctx, source)
	if err != nil {
		return nil, err
	}
	return s.Play(ctx, stream)
}

// Play runs an already resolved stream.
func (s *Session) Play(ctx context.Context, stream *media.Stream) (*Result, error) {
	out := s.out()

	fmt.Fprintln(out, "Starting video playback...")
	h, err := s.Engine.Start(ctx, stream)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	res := &Result{Stream: stream, StartedAt: time.Now()}

	select {
	case <-h.Ready():
	case <-time.After(durationOr(s.SettleTimeout, defaultSettleTimeout)):
		log.Printf("%s did not report readiness within %s", s.Engine.Name(), durationOr(s.SettleTimeout, defaultSettleTimeout))
	case <-ctx.Done():
	}
	log.Printf("initial %s player state: %s", s.Engine.Name(), h.State())

	listenCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- s.Listener.Listen(listenCtx, h)
	}()

	res.FinalState, res.Interrupted = s.wait(ctx, h)
	res.FinishedAt = time.Now()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			log.Printf("control listener: %v", err)
		}
	case <-time.After(durationOr(s.ListenerGrace, defaultListenerGrace)):
	}

	if res.Interrupted {
		fmt.Fprintln(out, "Playback interrupted by user.")
	}
	if res.FinalState == player.Error {
		log.Printf("%s reported a playback error", s.Engine.Name())
	}
	fmt.Fprintln(out, "Video playback ended.")

	return res, nil
}

// wait polls h until it reports a terminal state or ctx is cancelled.
func (s *Session) wait(ctx context.Context, h player.Handle) (player.State, bool) {
	ticker := time.NewTicker(durationOr(s.PollInterval, defaultPollInterval))
	defer ticker.Stop()

	for {
		if st := h.State(); st.Terminal() {
			return st, false
		}
		select {
		case <-ctx.Done():
			return h.State(), true
		case <-ticker.C:
		}
	}
}

func (s *Session) out() io.Writer {
	if s.Out == nil {
		return io.Discard
	}
	return s.Out
}

func durationOr(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
