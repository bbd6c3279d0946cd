// Package timer implements the pomodoro countdown state machine.
// It owns mode switching, session recording, and schedule-facing
// completion counts; the TUI only drives it with ticks and commands.
package timer

import (
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/pomoplan/internal/store"
)

// RunState is the lifecycle of the countdown.
type RunState int

const (
	StateIdle RunState = iota
	StateRunning
	StatePaused
)

// Recorder persists completed sessions.
type Recorder interface {
	AppendSession(store.Session) error
}

// Notifier delivers a completion alert. Failures are not surfaced.
type Notifier interface {
	Notify(title, body string)
}

// Config holds the durations the engine counts down from, in minutes.
type Config struct {
	WorkDuration         int
	BreakDuration        int
	NotificationsEnabled bool
}

// Engine is the countdown state machine. It is not safe for concurrent
// use; the TUI drives it from a single goroutine.
type Engine struct {
	cfg      Config
	recorder Recorder
	notifier Notifier
	now      func() time.Time

	mode         string
	state        RunState
	remaining    int // seconds
	sessionStart time.Time

	currentTaskID    string
	currentTaskTitle string

	completedPomodoros int
}

// New creates an idle work-mode engine ready to count down.
func New(cfg Config, recorder Recorder, notifier Notifier) *Engine {
	e := &Engine{
		cfg:      cfg,
		recorder: recorder,
		notifier: notifier,
		now:      time.Now,
		mode:     store.ModeWork,
		state:    StateIdle,
	}
	e.remaining = e.configuredSeconds(e.mode)
	return e
}

func (e *Engine) configuredSeconds(mode string) int {
	if mode == store.ModeBreak {
		return e.cfg.BreakDuration * 60
	}
	return e.cfg.WorkDuration * 60
}

// Start begins or resumes the countdown. Starting while already
// running is a no-op; resuming from pause keeps the original session
// start time.
func (e *Engine) Start() {
	switch e.state {
	case StateIdle:
		e.sessionStart = e.now()
		e.state = StateRunning
	case StatePaused:
		e.state = StateRunning
	}
}

// Pause freezes the countdown without discarding the session start.
func (e *Engine) Pause() {
	if e.state == StateRunning {
		e.state = StatePaused
	}
}

// Reset abandons the current run and restores the full configured
// duration for the current mode. No session is recorded.
func (e *Engine) Reset() {
	e.state = StateIdle
	e.sessionStart = time.Time{}
	e.remaining = e.configuredSeconds(e.mode)
}

// Tick advances the countdown by one second. It only has an effect
// while running; at zero the session completes and the mode flips.
func (e *Engine) Tick() error {
	if e.state != StateRunning {
		return nil
	}
	e.remaining--
	if e.remaining > 0 {
		return nil
	}
	return e.complete()
}

// complete finishes the current run: work sessions are recorded with
// their wall-clock duration, break sessions are not. Either way the
// mode flips and the engine returns to idle.
func (e *Engine) complete() error {
	now := e.now()
	var persistErr error

	if e.mode == store.ModeWork {
		sess := store.Session{
			ID:          uuid.NewString(),
			StartedAt:   e.sessionStart,
			CompletedAt: &now,
			Duration:    int(now.Sub(e.sessionStart).Minutes()),
			Mode:        store.ModeWork,
		}
		if e.currentTaskID != "" {
			id, title := e.currentTaskID, e.currentTaskTitle
			sess.TaskID = &id
			sess.TaskTitle = &title
		}
		persistErr = e.recorder.AppendSession(sess)
		e.completedPomodoros++
		e.mode = store.ModeBreak
	} else {
		e.mode = store.ModeWork
	}

	e.state = StateIdle
	e.sessionStart = time.Time{}
	e.remaining = e.configuredSeconds(e.mode)

	if e.cfg.NotificationsEnabled && e.notifier != nil {
		if e.mode == store.ModeBreak {
			e.notifier.Notify("Pomodoro complete", "Time for a break.")
		} else {
			e.notifier.Notify("Break over", "Back to work.")
		}
	}
	return persistErr
}

// SwitchMode toggles between work and break while idle, discarding any
// paused run.
func (e *Engine) SwitchMode() {
	if e.mode == store.ModeWork {
		e.mode = store.ModeBreak
	} else {
		e.mode = store.ModeWork
	}
	e.Reset()
}

// SetCurrentTask attributes future work sessions to the given task.
func (e *Engine) SetCurrentTask(id, title string) {
	e.currentTaskID = id
	e.currentTaskTitle = title
}

// ClearCurrentTask detaches the timer from any task.
func (e *Engine) ClearCurrentTask() {
	e.currentTaskID = ""
	e.currentTaskTitle = ""
}

// ApplySettings adopts new durations. The remaining time is reloaded
// only when the timer is idle, so a running countdown is never cut
// short or stretched mid-flight.
func (e *Engine) ApplySettings(cfg Config) {
	e.cfg = cfg
	if e.state == StateIdle {
		e.remaining = e.configuredSeconds(e.mode)
	}
}

func (e *Engine) Mode() string { return e.mode }

func (e *Engine) State() RunState { return e.state }

func (e *Engine) Remaining() int { return e.remaining }

func (e *Engine) CompletedPomodoros() int { return e.completedPomodoros }

func (e *Engine) CurrentTaskID() string { return e.currentTaskID }

func (e *Engine) CurrentTaskTitle() string { return e.currentTaskTitle }
