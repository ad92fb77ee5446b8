package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ytplay/internal/config"
	"ytplay/internal/control"
	"ytplay/internal/history"
	"ytplay/internal/media"
	"ytplay/internal/player"
	"ytplay/internal/resolve"
	"ytplay/internal/session"
	"ytplay/internal/ui"
)

// playRun is the default command: ytplay [url]
func playRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdin := bufio.NewReader(os.Stdin)
	s, err := newSession(ctx, stdin)
	if err != nil {
		return err
	}

	source := strings.Join(args, " ")
	if source == "" {
		source, err = ui.Prompt(stdin, os.Stdout, "Enter video URL: ")
		if err != nil {
			return err
		}
	}

	return playSource(ctx, s, source)
}

// newSession checks the external tools ytplay needs and builds a session.
// Missing tools are reported before the user is asked for anything.
func newSession(ctx context.Context, stdin *bufio.Reader) (*session.Session, error) {
	engine := player.New(cfg.Player, player.Options{
		StartTimeout: cfg.StartTimeout.Duration,
		Debug:        cfg.Debug,
	})
	if !flagJSON && !engine.Available() {
		return nil, fmt.Errorf("%w: %q not found in PATH", player.ErrMissingCapability, engine.Name())
	}

	if err := resolve.Ensure(ctx, cfg.YtDlpPath, cfg.AutoInstall); err != nil {
		return nil, err
	}

	tty := control.IsTerminal(os.Stdin, os.Stdout)
	listener, err := control.Select(cfg.Input, tty, stdin, os.Stdout, cfg.Debounce.Duration)
	if err != nil {
		return nil, err
	}
	if _, ok := listener.(*control.LineListener); ok && cfg.Input == config.InputAuto {
		log.Printf("no interactive terminal, falling back to line input commands")
	}
	debugf("player: %s, input: %T, format: %s", engine.Name(), listener, cfg.Format)

	return &session.Session{
		Resolver:      resolve.NewYTDLP(cfg.Format, cfg.YtDlpPath),
		Engine:        engine,
		Listener:      listener,
		PollInterval:  cfg.PollInterval.Duration,
		SettleTimeout: cfg.SettleTimeout.Duration,
		Out:           os.Stdout,
	}, nil
}

// playSource resolves and plays one source, then records it in history.
func playSource(ctx context.Context, s *session.Session, source string) error {
	stream, err := s.Resolve(ctx, source)
	if err != nil {
		return err
	}
	debugf("stream URL: %s", stream.URL)

	// JSON output mode
	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stream)
	}

	res, err := s.Play(ctx, stream)
	if err != nil {
		return err
	}
	debugf("final state: %s (interrupted: %v)", res.FinalState, res.Interrupted)

	if cfg.History {
		recordHistory(strings.TrimSpace(source), s.Engine.Name(), res)
	}
	return nil
}

// recordHistory saves a finished session. Failures are only logged.
func recordHistory(source, playerName string, res *session.Result) {
	store, err := history.OpenDefault()
	if err != nil {
		debugf("opening history failed: %v", err)
		return
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entry := media.HistoryEntry{
		Source:     source,
		Title:      res.Stream.Title,
		Player:     playerName,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		FinalState: res.FinalState.String(),
	}
	if _, err := store.Add(ctx, entry); err != nil {
		debugf("saving history failed: %v", err)
	}
}
