package store

import "time"

// Timer modes. A session records which mode produced it; only completed
// work sessions count toward schedule progress.
const (
	ModeWork  = "work"
	ModeBreak = "break"
)

// Settings holds the persisted user preferences. Durations are minutes.
type Settings struct {
	WorkDuration         int
	BreakDuration        int
	NotificationsEnabled bool
	LinearAPIToken       string
}

// DefaultSettings returns the values used when a key is missing or
// unreadable.
func DefaultSettings() Settings {
	return Settings{
		WorkDuration:         25,
		BreakDuration:        5,
		NotificationsEnabled: true,
		LinearAPIToken:       "",
	}
}

// Session is a single timer run. Duration is the wall-clock length in
// minutes, measured at completion rather than from the configured
// duration.
type Session struct {
	ID          string
	TaskID      *string
	TaskTitle   *string
	StartedAt   time.Time
	CompletedAt *time.Time
	Duration    int
	Interrupted bool
	Mode        string
}

// Qualifying reports whether the session counts toward schedule
// progress: a completed, uninterrupted work session.
func (s Session) Qualifying() bool {
	return s.Mode == ModeWork && !s.Interrupted && s.CompletedAt != nil
}

// LocalTask is a user-created task. Remote tasks fetched from Linear
// are never persisted here.
type LocalTask struct {
	ID          string
	Title       string
	Description string
	Priority    int
	State       string
	DueDate     *string
	CreatedAt   time.Time
}

// TaskUpdate carries a partial edit; nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *int
	State       *string
	DueDate     *string
}

// ScheduledTask is a task attached to a day's plan. CompletedPomodoros
// is derived from the session log by the reconciler, never entered by
// hand.
type ScheduledTask struct {
	TaskID             string
	TaskTitle          string
	EstimatedPomodoros int
	CompletedPomodoros int
	Notes              string
}

// DaySchedule is the plan for a single calendar date (YYYY-MM-DD).
type DaySchedule struct {
	ID    string
	Date  string
	Tasks []ScheduledTask
}
