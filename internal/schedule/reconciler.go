// Package schedule derives scheduled-task progress from the session
// log. Completion counts are never edited directly; they are recomputed
// from recorded sessions so the schedule always agrees with history.
package schedule

import (
	"fmt"

	"github.com/sadopc/pomoplan/internal/store"
)

const dateFormat = "2006-01-02"

// Reconciler recomputes completed pomodoro counts for every schedule.
type Reconciler struct {
	store *store.Store
}

func NewReconciler(s *store.Store) *Reconciler {
	return &Reconciler{store: s}
}

// Run recounts qualifying sessions per (date, task) and writes back
// every count that differs from the stored value. It returns how many
// scheduled tasks were updated. Running it again immediately is a
// no-op.
func (r *Reconciler) Run() (int, error) {
	sessions, err := r.store.ListSessions()
	if err != nil {
		return 0, fmt.Errorf("list sessions: %w", err)
	}
	schedules, err := r.store.ListSchedules()
	if err != nil {
		return 0, fmt.Errorf("list schedules: %w", err)
	}

	counts := make(map[string]int)
	for _, sess := range sessions {
		if !sess.Qualifying() || sess.TaskID == nil || sess.StartedAt.IsZero() {
			continue
		}
		key := countKey(sess.StartedAt.Format(dateFormat), *sess.TaskID)
		counts[key]++
	}

	updated := 0
	for _, sched := range schedules {
		for _, st := range sched.Tasks {
			want := counts[countKey(sched.Date, st.TaskID)]
			if want == st.CompletedPomodoros {
				continue
			}
			if err := r.store.SetCompletedPomodoros(sched.ID, st.TaskID, want); err != nil {
				return updated, err
			}
			updated++
		}
	}
	return updated, nil
}

func countKey(date, taskID string) string {
	return date + "\x00" + taskID
}
