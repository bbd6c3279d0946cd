package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pomoplan/internal/store"
	"github.com/sadopc/pomoplan/internal/timer"
)

type timerModel struct {
	engine *timer.Engine
	width  int
	height int
}

func newTimerModel(e *timer.Engine) timerModel {
	return timerModel{engine: e}
}

func (t *timerModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if err := t.engine.Tick(); err != nil {
			return t, errorStatus(err)
		}
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Start):
			t.engine.Start()
			return t, nil
		case key.Matches(msg, keys.Pause):
			switch t.engine.State() {
			case timer.StateRunning:
				t.engine.Pause()
			case timer.StatePaused:
				t.engine.Start()
			}
			return t, nil
		case key.Matches(msg, keys.Reset):
			t.engine.Reset()
			return t, nil
		case key.Matches(msg, keys.Mode):
			if t.engine.State() == timer.StateRunning {
				return t, func() tea.Msg {
					return statusMsg{text: "Reset the timer before switching modes", isError: true}
				}
			}
			t.engine.SwitchMode()
			return t, nil
		case key.Matches(msg, keys.Delete):
			t.engine.ClearCurrentTask()
			return t, nil
		}
	}
	return t, nil
}

func (t timerModel) view() string {
	w := t.width - 4

	modeLabel := countdownWorkStyle.Render("WORK")
	display := countdownWorkStyle.Width(w - 6).Render(formatCountdown(t.engine.Remaining()))
	if t.engine.Mode() == store.ModeBreak {
		modeLabel = countdownBreakStyle.Render("BREAK")
		display = countdownBreakStyle.Width(w - 6).Render(formatCountdown(t.engine.Remaining()))
	}

	var indicator string
	switch t.engine.State() {
	case timer.StateRunning:
		indicator = successStyle.Render("●  RUNNING")
	case timer.StatePaused:
		display = countdownPausedStyle.Width(w - 6).Render(formatCountdown(t.engine.Remaining()))
		indicator = warningStyle.Render("⏸  PAUSED")
	default:
		display = countdownStyle.Width(w - 6).Render(formatCountdown(t.engine.Remaining()))
		indicator = mutedStyle.Render("■  READY")
	}

	taskLine := mutedStyle.Render("No task selected")
	if title := t.engine.CurrentTaskTitle(); title != "" {
		taskLine = highlightStyle.Render(title)
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		modeLabel,
		"",
		display,
		indicator,
		"",
		taskLine,
		"",
		t.renderPomodoroCount(),
	)

	var controls string
	switch t.engine.State() {
	case timer.StateRunning:
		controls = mutedStyle.Render("space: pause  r: reset")
	case timer.StatePaused:
		controls = mutedStyle.Render("space: resume  r: reset")
	default:
		controls = mutedStyle.Render("s: start  m: work/break  d: clear task")
	}

	style := panelStyle
	if t.engine.State() == timer.StateRunning {
		style = activePanelStyle
	}
	return style.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Center, content, "", controls),
	)
}

func (t timerModel) renderPomodoroCount() string {
	n := t.engine.CompletedPomodoros()
	if n == 0 {
		return mutedStyle.Render("No pomodoros completed yet today")
	}
	var dots []string
	for i := 0; i < n && i < 12; i++ {
		dots = append(dots, successStyle.Render("●"))
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d completed", n))
	return strings.Join(dots, " ") + counter
}
