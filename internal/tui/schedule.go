package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pomoplan/internal/schedule"
	"github.com/sadopc/pomoplan/internal/store"
	"github.com/sadopc/pomoplan/internal/task"
)

// reconcileEvery is how many ticks pass between background recounts
// while the schedule view is visible.
const reconcileEvery = 30

const minutesPerPomodoro = 25

type scheduleModel struct {
	store      *store.Store
	registry   *task.Registry
	reconciler *schedule.Reconciler
	width      int
	height     int

	date     string // YYYY-MM-DD
	schedule *store.DaySchedule
	cursor   int

	active    bool // view currently visible, drives periodic reconcile
	tickCount int

	formActive bool
	form       *huh.Form
	formType   string // "add", "edit"

	// Form field pointers (survive value copies)
	formTaskID   *string
	formEstimate *string
	formNotes    *string

	editingTaskID string
}

func newScheduleModel(s *store.Store, r *task.Registry, rec *schedule.Reconciler) scheduleModel {
	taskID, estimate, notes := "", "1", ""
	return scheduleModel{
		store:        s,
		registry:     r,
		reconciler:   rec,
		date:         time.Now().Format("2006-01-02"),
		formTaskID:   &taskID,
		formEstimate: &estimate,
		formNotes:    &notes,
	}
}

func (m *scheduleModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m scheduleModel) refresh() tea.Cmd {
	date := m.date
	return func() tea.Msg {
		sched, err := m.store.GetScheduleByDate(date)
		if err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		return scheduleDataMsg{schedule: sched}
	}
}

func (m scheduleModel) reconcile() tea.Cmd {
	return func() tea.Msg {
		updated, err := m.reconciler.Run()
		return reconcileDoneMsg{updated: updated, err: err}
	}
}

// activate is called when the view becomes visible: recount
// immediately, then keep recounting while it stays visible.
func (m scheduleModel) activate() (scheduleModel, tea.Cmd) {
	m.active = true
	m.tickCount = 0
	return m, tea.Batch(m.reconcile(), m.refresh())
}

func (m scheduleModel) deactivate() scheduleModel {
	m.active = false
	return m
}

func (m scheduleModel) update(msg tea.Msg) (scheduleModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case scheduleDataMsg:
		m.schedule = msg.schedule
		m.clampCursor()
		return m, nil

	case reconcileDoneMsg:
		if msg.err != nil {
			return m, errorStatus(msg.err)
		}
		if msg.updated > 0 {
			return m, m.refresh()
		}
		return m, nil

	case tickMsg:
		if !m.active {
			return m, nil
		}
		m.tickCount++
		if m.tickCount >= reconcileEvery {
			m.tickCount = 0
			return m, m.reconcile()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.schedule != nil && m.cursor < len(m.schedule.Tasks)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Left):
			m.date = shiftDate(m.date, -1)
			m.cursor = 0
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			m.date = shiftDate(m.date, 1)
			m.cursor = 0
			return m, m.refresh()
		case key.Matches(msg, keys.New):
			return m.showAddForm()
		case key.Matches(msg, keys.Edit):
			return m.showEditForm()
		case key.Matches(msg, keys.Delete):
			if m.schedule != nil && m.cursor < len(m.schedule.Tasks) {
				taskID := m.schedule.Tasks[m.cursor].TaskID
				if err := m.store.RemoveTaskFromSchedule(m.date, taskID); err != nil {
					return m, errorStatus(err)
				}
				return m, m.refresh()
			}
		}
	}
	return m, nil
}

func (m *scheduleModel) clampCursor() {
	n := 0
	if m.schedule != nil {
		n = len(m.schedule.Tasks)
	}
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

func shiftDate(date string, days int) string {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Now().Format("2006-01-02")
	}
	return d.AddDate(0, 0, days).Format("2006-01-02")
}

func (m scheduleModel) showAddForm() (scheduleModel, tea.Cmd) {
	tasks := m.registry.Tasks()
	if len(tasks) == 0 {
		return m, func() tea.Msg {
			return statusMsg{text: "No tasks to schedule. Create or fetch some first.", isError: true}
		}
	}

	options := make([]huh.Option[string], len(tasks))
	for i, t := range tasks {
		options[i] = huh.NewOption(t.Title, t.ID)
	}
	*m.formTaskID = tasks[0].ID
	*m.formEstimate = "1"
	*m.formNotes = ""
	m.formType = "add"

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Task").Options(options...).Value(m.formTaskID),
			huh.NewInput().Title("Estimated pomodoros (1-20)").Value(m.formEstimate).
				Validate(validateEstimate),
			huh.NewInput().Title("Notes").Value(m.formNotes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m scheduleModel) showEditForm() (scheduleModel, tea.Cmd) {
	if m.schedule == nil || m.cursor >= len(m.schedule.Tasks) {
		return m, nil
	}
	st := m.schedule.Tasks[m.cursor]
	*m.formEstimate = strconv.Itoa(st.EstimatedPomodoros)
	*m.formNotes = st.Notes
	m.formType = "edit"
	m.editingTaskID = st.TaskID

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Estimated pomodoros (1-20)").Value(m.formEstimate).
				Validate(validateEstimate),
			huh.NewInput().Title("Notes").Value(m.formNotes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func validateEstimate(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if n < 1 || n > 20 {
		return fmt.Errorf("must be between 1 and 20")
	}
	return nil
}

func (m scheduleModel) updateForm(msg tea.Msg) (scheduleModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		estimate, _ := strconv.Atoi(strings.TrimSpace(*m.formEstimate))

		switch m.formType {
		case "add":
			t, ok := m.registry.Find(*m.formTaskID)
			if !ok {
				return m, nil
			}
			err := m.store.AddTaskToSchedule(m.date, store.ScheduledTask{
				TaskID:             t.ID,
				TaskTitle:          t.Title,
				EstimatedPomodoros: estimate,
				Notes:              *m.formNotes,
			})
			if err != nil {
				return m, errorStatus(err)
			}
			return m, m.refresh()

		case "edit":
			notes := *m.formNotes
			err := m.store.UpdateScheduledTask(m.date, m.editingTaskID, store.ScheduledTaskUpdate{
				EstimatedPomodoros: &estimate,
				Notes:              &notes,
			})
			if err != nil {
				return m, errorStatus(err)
			}
			return m, m.refresh()
		}
	}

	return m, cmd
}

func (m scheduleModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("Add to Schedule")
		if m.formType == "edit" {
			title = titleStyle.Render("Edit Scheduled Task")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	dateLabel := m.date
	if d, err := time.Parse("2006-01-02", m.date); err == nil {
		dateLabel = d.Format("Mon, Jan 02 2006")
	}
	if m.date == time.Now().Format("2006-01-02") {
		dateLabel += mutedStyle.Render("  (today)")
	}
	title := titleStyle.Render("Schedule") + "  " + highlightStyle.Render(dateLabel)

	if m.schedule == nil || len(m.schedule.Tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("Nothing planned. Press n to add a task."),
			"",
			mutedStyle.Render("  ←/→: change day  n: add"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	totalEstimated := 0
	for i, st := range m.schedule.Tasks {
		totalEstimated += st.EstimatedPomodoros
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		progress := renderPomodoroProgress(st.CompletedPomodoros, st.EstimatedPomodoros)
		row := fmt.Sprintf("%s%s  %s", cursor,
			style.Render(fmt.Sprintf("%-32s", truncate(st.TaskTitle, 32))), progress)
		rows = append(rows, row)
		if st.Notes != "" {
			rows = append(rows, mutedStyle.Render("      "+truncate(st.Notes, w-10)))
		}
	}

	rows = append(rows, "")
	est := totalEstimated * minutesPerPomodoro
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %d pomodoros planned, about %dh %02dm",
		totalEstimated, est/60, est%60)))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  ←/→: change day  n: add  e: edit  d: remove"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func renderPomodoroProgress(completed, estimated int) string {
	var parts []string
	shown := estimated
	if completed > shown {
		shown = completed
	}
	for i := 0; i < shown && i < 20; i++ {
		if i < completed {
			parts = append(parts, successStyle.Render("●"))
		} else {
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	counter := mutedStyle.Render(fmt.Sprintf("  %d/%d", completed, estimated))
	return strings.Join(parts, " ") + counter
}
