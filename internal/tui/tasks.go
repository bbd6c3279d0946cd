package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pomoplan/internal/linear"
	"github.com/sadopc/pomoplan/internal/store"
	"github.com/sadopc/pomoplan/internal/task"
	"github.com/sadopc/pomoplan/internal/timer"
)

type tasksModel struct {
	store    *store.Store
	registry *task.Registry
	engine   *timer.Engine
	client   *linear.Client
	width    int
	height   int

	cursor   int
	fetching bool

	formActive bool
	form       *huh.Form

	// Form field pointers (survive value copies)
	formTitle       *string
	formDescription *string
	formPriority    *string
}

func newTasksModel(s *store.Store, r *task.Registry, e *timer.Engine, c *linear.Client) tasksModel {
	title, desc, prio := "", "", "0"
	return tasksModel{
		store:           s,
		registry:        r,
		engine:          e,
		client:          c,
		formTitle:       &title,
		formDescription: &desc,
		formPriority:    &prio,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m tasksModel) fetchRemote() tea.Cmd {
	return func() tea.Msg {
		settings, err := m.store.GetSettings()
		if err != nil {
			return tasksFetchedMsg{err: err}
		}
		tasks, err := m.client.FetchTasks(context.Background(), settings.LinearAPIToken)
		if err != nil {
			return tasksFetchedMsg{err: err}
		}

		out := make([]task.Task, 0, len(tasks))
		for _, t := range tasks {
			out = append(out, task.Task{
				ID:          t.ID,
				Title:       t.Title,
				Description: t.Description,
				Priority:    t.Priority,
				State:       t.State,
				DueDate:     t.DueDate,
			})
		}
		return tasksFetchedMsg{tasks: out}
	}
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tasksFetchedMsg:
		m.fetching = false
		if msg.err != nil {
			return m, errorStatus(msg.err)
		}
		m.registry.ReplaceRemote(msg.tasks)
		m.clampCursor()
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Fetched %d Linear tasks", len(msg.tasks))}
		}

	case tea.KeyMsg:
		tasks := m.registry.Tasks()
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(tasks)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Enter):
			if m.cursor < len(tasks) {
				t := tasks[m.cursor]
				m.registry.Select(t.ID)
				m.engine.SetCurrentTask(t.ID, t.Title)
				return m, func() tea.Msg {
					return statusMsg{text: "Timer task: " + t.Title}
				}
			}
		case key.Matches(msg, keys.New):
			return m.showNewTaskForm()
		case key.Matches(msg, keys.Delete):
			if m.cursor < len(tasks) {
				if err := m.registry.DeleteLocal(tasks[m.cursor].ID); err != nil {
					return m, errorStatus(err)
				}
				m.clampCursor()
			}
		case key.Matches(msg, keys.Fetch):
			if m.fetching {
				return m, nil
			}
			m.fetching = true
			return m, m.fetchRemote()
		}
	}
	return m, nil
}

func (m *tasksModel) clampCursor() {
	if n := len(m.registry.Tasks()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

func (m tasksModel) showNewTaskForm() (tasksModel, tea.Cmd) {
	*m.formTitle = ""
	*m.formDescription = ""
	*m.formPriority = "0"

	prioOptions := make([]huh.Option[string], len(priorityNames))
	for i, name := range priorityNames {
		prioOptions[i] = huh.NewOption(name, fmt.Sprintf("%d", i))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(m.formTitle).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return task.ErrEmptyTitle
					}
					return nil
				}),
			huh.NewInput().Title("Description").Value(m.formDescription),
			huh.NewSelect[string]().Title("Priority").Options(prioOptions...).Value(m.formPriority),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
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
		prio := 0
		fmt.Sscanf(*m.formPriority, "%d", &prio)
		if _, err := m.registry.AddLocal(*m.formTitle, *m.formDescription, prio); err != nil {
			return m, errorStatus(err)
		}
		m.cursor = 0
		return m, nil
	}

	return m, cmd
}

func (m tasksModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	title := titleStyle.Render("Tasks")
	if m.fetching {
		title += mutedStyle.Render("  fetching from Linear...")
	} else if !m.registry.LastFetchedAt().IsZero() {
		title += mutedStyle.Render("  synced " + m.registry.LastFetchedAt().Format("15:04"))
	}

	tasks := m.registry.Tasks()
	if len(tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks. Press n to create one or f to fetch from Linear."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-8s %-32s %-12s %-8s", "Source", "Title", "State", "Priority"))
	rows = append(rows, header)

	selected, hasSelected := m.registry.Selected()
	for i, t := range tasks {
		badge := localBadgeStyle.Render("local ")
		if t.Source == task.SourceRemote {
			badge = remoteBadgeStyle.Render("linear")
		}
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		marker := " "
		if hasSelected && t.ID == selected.ID {
			marker = successStyle.Render("●")
		}
		row := fmt.Sprintf("%s%s %s %s %s", cursor, marker, badge,
			style.Render(fmt.Sprintf("%-32s", truncate(t.Title, 32))),
			mutedStyle.Render(fmt.Sprintf("%-12s %s", t.State, priorityLabel(t.Priority))))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select for timer  n: new  d: delete  f: fetch linear"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
