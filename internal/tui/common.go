package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/pomoplan/internal/store"
	"github.com/sadopc/pomoplan/internal/task"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewTasks
	viewSchedule
	viewHistory
	viewSettings
)

var viewNames = []string{"Timer", "Tasks", "Schedule", "History", "Settings"}

// --- Messages ---

type tickMsg time.Time

type statusMsg struct {
	text    string
	isError bool
}

type tasksFetchedMsg struct {
	tasks []task.Task
	err   error
}

type settingsChangedMsg struct {
	settings store.Settings
}

type reconcileDoneMsg struct {
	updated int
	err     error
}

type sessionsDataMsg struct {
	sessions []store.Session
}

type scheduleDataMsg struct {
	schedule *store.DaySchedule
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatCountdown(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

var priorityNames = []string{"None", "Urgent", "High", "Medium", "Low"}

func priorityLabel(p int) string {
	if p < 0 || p >= len(priorityNames) {
		return "None"
	}
	return priorityNames[p]
}

func errorStatus(err error) func() tea.Msg {
	return func() tea.Msg {
		return statusMsg{text: err.Error(), isError: true}
	}
}
