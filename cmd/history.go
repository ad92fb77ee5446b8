package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ytplay/internal/history"
	"ytplay/internal/ui"
)

var (
	flagReplay bool
	flagLimit  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or replay previously played videos",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().BoolVarP(&flagReplay, "replay", "r", false, "Pick an entry with fzf and play it again")
	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "Number of entries to show")
}

func historyRun(cmd *cobra.Command, args []string) error {
	store, err := history.OpenDefault()
	if err != nil {
		return err
	}
	entries, err := store.Recent(cmd.Context(), flagLimit)
	store.Close()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	items := history.FormatForDisplay(entries)
	if !flagReplay {
		for i, item := range items {
			fmt.Printf("%s\n    %s\n", item, entries[i].Source)
		}
		return nil
	}

	idx, err := ui.Select("History", items)
	if err != nil {
		return err
	}
	selected := entries[idx]
	debugf("replaying: %s (ID: %s)", selected.Source, selected.ID)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx, bufio.NewReader(os.Stdin))
	if err != nil {
		return err
	}
	return playSource(ctx, s, selected.Source)
}
