package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pomoplan/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   store.Settings
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	workDuration  *string
	breakDuration *string
	notifications *string
	linearToken   *string
}

func newSettingsModel(s *store.Store) settingsModel {
	wd, bd, nt, lt := "", "", "", ""
	return settingsModel{
		store:         s,
		workDuration:  &wd,
		breakDuration: &bd,
		notifications: &nt,
		linearToken:   &lt,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings store.Settings
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.GetSettings()
		if err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.workDuration = strconv.Itoa(s.settings.WorkDuration)
	*s.breakDuration = strconv.Itoa(s.settings.BreakDuration)
	*s.notifications = "on"
	if !s.settings.NotificationsEnabled {
		*s.notifications = "off"
	}
	*s.linearToken = s.settings.LinearAPIToken

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work duration (min, 1-60)").Value(s.workDuration).
				Validate(validateMinutes(1, 60)),
			huh.NewInput().Title("Break duration (min, 1-30)").Value(s.breakDuration).
				Validate(validateMinutes(1, 30)),
			huh.NewSelect[string]().Title("Notifications").
				Options(
					huh.NewOption("Enabled", "on"),
					huh.NewOption("Disabled", "off"),
				).Value(s.notifications),
		).Title("Timer"),
		huh.NewGroup(
			huh.NewInput().Title("Linear API token").Value(s.linearToken).
				EchoMode(huh.EchoModePassword),
		).Title("Integrations"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateMinutes(lo, hi int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("enter a number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s.save()
	}

	return s, cmd
}

func (s settingsModel) save() (settingsModel, tea.Cmd) {
	work, _ := strconv.Atoi(strings.TrimSpace(*s.workDuration))
	brk, _ := strconv.Atoi(strings.TrimSpace(*s.breakDuration))

	settings := store.Settings{
		WorkDuration:         work,
		BreakDuration:        brk,
		NotificationsEnabled: *s.notifications == "on",
		LinearAPIToken:       strings.TrimSpace(*s.linearToken),
	}
	if err := s.store.SaveSettings(settings); err != nil {
		return s, errorStatus(err)
	}
	s.settings = settings

	return s, func() tea.Msg {
		return settingsChangedMsg{settings: settings}
	}
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit")

	token := mutedStyle.Render("not set")
	if s.settings.LinearAPIToken != "" {
		token = successStyle.Render("configured")
	}
	notif := "enabled"
	if !s.settings.NotificationsEnabled {
		notif = "disabled"
	}

	rows := []string{
		title,
		"",
		settingRow("Work duration", fmt.Sprintf("%d min", s.settings.WorkDuration)),
		settingRow("Break duration", fmt.Sprintf("%d min", s.settings.BreakDuration)),
		settingRow("Notifications", notif),
		fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(24).Render("Linear API token"), token),
		"",
		hint,
	}

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingRow(label, value string) string {
	return fmt.Sprintf("  %s %s",
		lipgloss.NewStyle().Width(24).Render(label),
		highlightStyle.Render(value))
}
