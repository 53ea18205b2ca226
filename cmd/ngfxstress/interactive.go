package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/wippyai/ngfx/config"
)

const refreshInterval = 100 * time.Millisecond

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Width(18)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	stresser *stresser
	cancel   context.CancelFunc
	cfg      *config.Config
	spinner  spinner.Model
	current  report
	done     bool
	quitting bool
}

type tickMsg time.Time

type doneMsg struct {
	report report
}

func newInteractiveModel(cfg *config.Config, log *zap.Logger) *interactiveModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = valueStyle
	return &interactiveModel{
		stresser: newStresser(cfg, log),
		cfg:      cfg,
		spinner:  sp,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	return tea.Batch(m.spinner.Tick, tick(), m.runStress(ctx))
}

func (m *interactiveModel) runStress(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{report: m.stresser.run(ctx)}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.done {
				return m, tea.Quit
			}
			// wait for the workers to drain so the final counts are exact
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
		}

	case tickMsg:
		if m.done {
			return m, nil
		}
		m.current = m.stresser.stats.snapshot()
		return m, tick()

	case doneMsg:
		m.current = msg.report
		m.done = true
		if m.cancel != nil {
			m.cancel()
		}
		if m.quitting {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ngfx stress"))
	b.WriteString(fmt.Sprintf(" %d workers x %d iterations\n\n", m.cfg.Workers, m.cfg.Iterations))

	r := m.current
	rows := []struct {
		label string
		value string
	}{
		{"created", fmt.Sprint(r.Created)},
		{"destroyed", fmt.Sprint(r.Destroyed)},
		{"live", fmt.Sprint(r.Created - r.Destroyed)},
		{"clones", fmt.Sprint(r.Clones)},
		{"handles", fmt.Sprintf("%d (freed %d)", r.Handles, r.Freed)},
		{"exhausted", fmt.Sprint(r.Exhausted)},
		{"deferred pins", fmt.Sprint(r.Deferred)},
		{"fences", fmt.Sprint(r.Fences)},
		{"elapsed", r.Elapsed.Round(time.Millisecond).String()},
	}
	for _, row := range rows {
		b.WriteString(labelStyle.Render(row.label))
		b.WriteString(valueStyle.Render(row.value))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case !m.done && m.quitting:
		b.WriteString(m.spinner.View() + " stopping...")
	case !m.done:
		b.WriteString(m.spinner.View() + " running")
	case r.OK():
		b.WriteString(resultStyle.Render("OK: every object destroyed exactly once"))
	default:
		b.WriteString(errorStyle.Render(fmt.Sprintf("FAIL: %d leaked, %d double destroys",
			r.Created-r.Destroyed, r.DoubleDestroys)))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("q quit"))

	return b.String()
}

func runInteractive(cfg *config.Config, log *zap.Logger) error {
	p := tea.NewProgram(newInteractiveModel(cfg, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
