package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/sadopc/pomoplan/internal/linear"
	"github.com/sadopc/pomoplan/internal/notify"
	"github.com/sadopc/pomoplan/internal/schedule"
	"github.com/sadopc/pomoplan/internal/store"
	"github.com/sadopc/pomoplan/internal/task"
	"github.com/sadopc/pomoplan/internal/timer"
	"github.com/sadopc/pomoplan/internal/tui"
)

func main() {
	// Optional .env for ANTHROPIC_API_KEY.
	_ = godotenv.Load()

	dbPath, err := store.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	settings, err := s.GetSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading settings: %v\n", err)
		os.Exit(1)
	}

	engine := timer.New(timer.Config{
		WorkDuration:         settings.WorkDuration,
		BreakDuration:        settings.BreakDuration,
		NotificationsEnabled: settings.NotificationsEnabled,
	}, s, notify.NewDesktop())

	registry := task.NewRegistry(s)
	if err := registry.LoadLocal(); err != nil {
		fmt.Fprintf(os.Stderr, "error loading tasks: %v\n", err)
		os.Exit(1)
	}

	reconciler := schedule.NewReconciler(s)
	client := linear.NewClient(os.Getenv("ANTHROPIC_API_KEY"))

	app := tui.NewApp(s, engine, registry, reconciler, client)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
