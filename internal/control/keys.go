package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"ytplay/internal/player"
)

// refreshInterval is how often the key listener polls the player state.
const refreshInterval = 100 * time.Millisecond

type keyMap struct {
	Pause key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding { return []key.Binding{k.Pause, k.Quit} }

func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{k.ShortHelp()} }

var defaultKeys = keyMap{
	Pause: key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p/space", "pause/resume")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "stop")),
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	stateStyles = map[player.State]lipgloss.Style{
		player.Idle:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		player.Playing: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		player.Paused:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		player.Ended:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		player.Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
	statusStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("245"))
)

// KeyListener reads single key presses from the terminal in raw mode.
type KeyListener struct {
	debounce time.Duration
	opts     []tea.ProgramOption
}

// NewKeyListener creates a key listener. A pause press within debounce of
// the previous accepted one is ignored, so key auto-repeat toggles once.
func NewKeyListener(debounce time.Duration, opts ...tea.ProgramOption) *KeyListener {
	return &KeyListener{debounce: debounce, opts: opts}
}

// Listen implements Listener. It returns after "q", when playback reaches a
// terminal state, or when ctx is cancelled; the terminal is restored in all
// three cases.
func (k *KeyListener) Listen(ctx context.Context, c Controller) error {
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, k.opts...)
	p := tea.NewProgram(newKeyModel(c, k.debounce), opts...)

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running key listener: %w", err)
	}
	if m, ok := final.(keyModel); ok {
		return m.err
	}
	return nil
}

type tickMsg time.Time

type keyModel struct {
	ctl      Controller
	keys     keyMap
	help     help.Model
	debounce time.Duration
	now      func() time.Time

	lastToggle time.Time
	state      player.State
	status     string
	quitting   bool
	err        error
}

func newKeyModel(c Controller, debounce time.Duration) keyModel {
	return keyModel{
		ctl:      c,
		keys:     defaultKeys,
		help:     help.New(),
		debounce: debounce,
		now:      time.Now,
		state:    c.State(),
	}
}

func (m keyModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m keyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.status = "Stopping playback..."
			m.quitting = true
			if err := m.ctl.Stop(); err != nil {
				m.err = fmt.Errorf("stopping playback: %w", err)
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			now := m.now()
			if !m.lastToggle.IsZero() && now.Sub(m.lastToggle) < m.debounce {
				return m, nil
			}
			m.lastToggle = now
			if err := m.ctl.TogglePause(); err != nil {
				m.err = fmt.Errorf("toggling pause: %w", err)
				m.quitting = true
				return m, tea.Quit
			}
			m.status = "Toggling pause/resume..."
		}
	case tickMsg:
		m.state = m.ctl.State()
		if m.state.Terminal() {
			m.quitting = true
			return m, tea.Quit
		}
		return m, tick()
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m keyModel) View() string {
	state := stateStyles[m.state].Render(m.state.String())
	if m.quitting {
		return fmt.Sprintf("%s %s\n", titleStyle.Render("ytplay"), state)
	}
	line := fmt.Sprintf("%s %s", titleStyle.Render("ytplay"), state)
	if m.status != "" {
		line += "  " + statusStyle.Render(m.status)
	}
	return line + "\n" + m.help.View(m.keys) + "\n"
}
