package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ytplay/internal/media"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ytplay", "history.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndRecent(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)

	entry := media.HistoryEntry{
		Source:     "https://youtu.be/abc",
		Title:      "Test Video",
		Player:     "mpv",
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Minute),
		FinalState: "ended",
	}

	id, err := s.Add(ctx, entry)
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("generated ID %q is not a UUID", id)
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	got := entries[0]
	if got.ID != id {
		t.Errorf("ID = %q, want %q", got.ID, id)
	}
	if got.Source != entry.Source {
		t.Errorf("Source = %q, want %q", got.Source, entry.Source)
	}
	if got.Title != entry.Title {
		t.Errorf("Title = %q, want %q", got.Title, entry.Title)
	}
	if !got.StartedAt.Equal(start) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, start)
	}
	if !got.FinishedAt.Equal(entry.FinishedAt) {
		t.Errorf("FinishedAt = %v, want %v", got.FinishedAt, entry.FinishedAt)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i, src := range []string{"first", "second", "third"} {
		at := base.Add(time.Duration(i) * time.Minute)
		if _, err := s.Add(ctx, media.HistoryEntry{Source: src, StartedAt: at, FinishedAt: at}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Source != "third" || entries[1].Source != "second" {
		t.Errorf("order = [%s %s], want [third second]", entries[0].Source, entries[1].Source)
	}
}

func TestRemove(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	id, _ := s.Add(ctx, media.HistoryEntry{ID: "keep-me-not", Source: "a", StartedAt: time.Now()})
	s.Add(ctx, media.HistoryEntry{Source: "b", StartedAt: time.Now()})

	if err := s.Remove(ctx, id); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}

	entries, _ := s.Recent(ctx, 10)
	if len(entries) != 1 || entries[0].Source != "b" {
		t.Errorf("after Remove got %+v, want only b", entries)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Add(ctx, media.HistoryEntry{Source: "persisted", StartedAt: time.Now()})
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	entries, _ := s.Recent(ctx, 10)
	if len(entries) != 1 || entries[0].Source != "persisted" {
		t.Errorf("got %+v after reopen", entries)
	}
}

func TestFormatForDisplay(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 0, 0, time.Local)
	entries := []media.HistoryEntry{
		{Title: "Titled", StartedAt: at, FinalState: "ended"},
		{Source: "https://youtu.be/x", StartedAt: at, FinalState: "error"},
	}

	items := FormatForDisplay(entries)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0] != "2026-03-04 05:06  Titled" {
		t.Errorf("items[0] = %q", items[0])
	}
	if !strings.HasSuffix(items[1], "https://youtu.be/x [error]") {
		t.Errorf("items[1] = %q", items[1])
	}
}
