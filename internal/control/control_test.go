package control

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytplay/internal/player"
)

// fakeController records the commands it receives.
type fakeController struct {
	mu       sync.Mutex
	calls    []string
	state    player.State
	stopErr  error
	pauseErr error
}

func (f *fakeController) TogglePause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "toggle")
	if f.state == player.Playing {
		f.state = player.Paused
	} else if f.state == player.Paused {
		f.state = player.Playing
	}
	return f.pauseErr
}

func (f *fakeController) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "stop")
	f.state = player.Ended
	return f.stopErr
}

func (f *fakeController) State() player.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeController) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func TestLineListenerCommands(t *testing.T) {
	ctl := &fakeController{state: player.Playing}
	var out bytes.Buffer

	l := NewLineListener(strings.NewReader("p\nx\nq\np\n"), &out)
	require.NoError(t, l.Listen(context.Background(), ctl))

	assert.Equal(t, []string{"toggle", "stop"}, ctl.Calls())
	assert.Contains(t, out.String(), "Invalid command. Please enter 'q' or 'p'.")
	assert.Equal(t, 1, strings.Count(out.String(), "Invalid command"))
}

func TestLineListenerNormalizesInput(t *testing.T) {
	ctl := &fakeController{state: player.Playing}

	l := NewLineListener(strings.NewReader("  P \r\n Q"), io.Discard)
	require.NoError(t, l.Listen(context.Background(), ctl))

	assert.Equal(t, []string{"toggle", "stop"}, ctl.Calls())
}

func TestLineListenerEOF(t *testing.T) {
	ctl := &fakeController{state: player.Playing}

	l := NewLineListener(strings.NewReader("p\n"), io.Discard)
	require.NoError(t, l.Listen(context.Background(), ctl))

	assert.Equal(t, []string{"toggle"}, ctl.Calls(), "end of input issues no stop")
}

func TestLineListenerCancel(t *testing.T) {
	ctl := &fakeController{state: player.Playing}
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewLineListener(pr, io.Discard).Listen(ctx, ctl)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("listener did not return after cancel")
	}
	assert.Empty(t, ctl.Calls())
}

func TestLineListenerPropagatesEngineError(t *testing.T) {
	ctl := &fakeController{state: player.Playing, pauseErr: errors.New("broken pipe")}

	err := NewLineListener(strings.NewReader("p\nq\n"), io.Discard).Listen(context.Background(), ctl)
	assert.ErrorContains(t, err, "broken pipe")
	assert.Equal(t, []string{"toggle"}, ctl.Calls())
}

func TestTogglePairRestoresState(t *testing.T) {
	ctl := &fakeController{state: player.Playing}

	NewLineListener(strings.NewReader("p\np\n"), io.Discard).Listen(context.Background(), ctl)
	assert.Equal(t, player.Playing, ctl.State())
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestKeyModelDebounce(t *testing.T) {
	ctl := &fakeController{state: player.Playing}
	m := newKeyModel(ctl, 400*time.Millisecond)

	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }

	next, _ := m.Update(runeKey('p'))
	m = next.(keyModel)

	now = now.Add(100 * time.Millisecond) // auto-repeat of the same press
	next, _ = m.Update(runeKey('p'))
	m = next.(keyModel)
	assert.Equal(t, []string{"toggle"}, ctl.Calls())

	now = now.Add(400 * time.Millisecond)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(keyModel)
	assert.Equal(t, []string{"toggle", "toggle"}, ctl.Calls())
	assert.Equal(t, player.Playing, ctl.State())
}

func TestKeyModelQuit(t *testing.T) {
	ctl := &fakeController{state: player.Playing}
	m := newKeyModel(ctl, 400*time.Millisecond)

	next, cmd := m.Update(runeKey('x'))
	assert.Nil(t, cmd)
	assert.Empty(t, ctl.Calls())

	next, cmd = next.(keyModel).Update(runeKey('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Equal(t, []string{"stop"}, ctl.Calls())
	assert.True(t, next.(keyModel).quitting)
}

func TestKeyModelQuitsOnTerminalState(t *testing.T) {
	ctl := &fakeController{state: player.Playing}
	m := newKeyModel(ctl, 400*time.Millisecond)

	next, cmd := m.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)
	assert.False(t, next.(keyModel).quitting)

	ctl.Stop()
	next, cmd = next.(keyModel).Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Equal(t, player.Ended, next.(keyModel).state)
}

func TestKeyModelView(t *testing.T) {
	ctl := &fakeController{state: player.Paused}
	m := newKeyModel(ctl, 400*time.Millisecond)

	view := m.View()
	assert.Contains(t, view, "paused")
	assert.Contains(t, view, "pause/resume")
}

func TestSelect(t *testing.T) {
	in := strings.NewReader("")
	var out bytes.Buffer

	tests := []struct {
		name    string
		mode    string
		tty     bool
		wantKey bool
		wantErr error
	}{
		{"auto with terminal", "auto", true, true, nil},
		{"auto without terminal", "auto", false, false, nil},
		{"line with terminal", "line", true, false, nil},
		{"keys with terminal", "keys", true, true, nil},
		{"keys without terminal", "keys", false, false, ErrMissingCapability},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := Select(tt.mode, tt.tty, in, &out, 400*time.Millisecond)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			_, isKey := l.(*KeyListener)
			assert.Equal(t, tt.wantKey, isKey)
		})
	}

	_, err := Select("mouse", true, in, &out, time.Second)
	assert.Error(t, err)
}

func TestIsTerminalNonFile(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}, &bytes.Buffer{}))
}
