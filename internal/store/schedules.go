package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrDuplicateScheduledTask is returned when a task is already on the
// day's schedule.
var ErrDuplicateScheduledTask = errors.New("task already scheduled for this date")

// ListSchedules returns every day schedule with its tasks, ordered by
// date ascending.
func (s *Store) ListSchedules() ([]DaySchedule, error) {
	rows, err := s.db.Query("SELECT id, date FROM schedules ORDER BY date ASC")
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	var schedules []DaySchedule
	for rows.Next() {
		var sched DaySchedule
		if err := rows.Scan(&sched.ID, &sched.Date); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, sched)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range schedules {
		tasks, err := s.scheduledTasks(schedules[i].ID)
		if err != nil {
			return nil, err
		}
		schedules[i].Tasks = tasks
	}
	return schedules, nil
}

// GetScheduleByDate returns the schedule for a YYYY-MM-DD date, or nil
// when no schedule exists for it.
func (s *Store) GetScheduleByDate(date string) (*DaySchedule, error) {
	var sched DaySchedule
	err := s.db.QueryRow("SELECT id, date FROM schedules WHERE date = ?", date).
		Scan(&sched.ID, &sched.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule: %w", err)
	}

	tasks, err := s.scheduledTasks(sched.ID)
	if err != nil {
		return nil, err
	}
	sched.Tasks = tasks
	return &sched, nil
}

// AddTaskToSchedule attaches a task to the date's schedule, creating
// the schedule if the date has none yet.
func (s *Store) AddTaskToSchedule(date string, st ScheduledTask) error {
	sched, err := s.GetScheduleByDate(date)
	if err != nil {
		return err
	}

	var scheduleID string
	var position int
	if sched == nil {
		scheduleID = uuid.NewString()
		if _, err := s.db.Exec("INSERT INTO schedules (id, date) VALUES (?, ?)", scheduleID, date); err != nil {
			return fmt.Errorf("create schedule: %w", err)
		}
	} else {
		scheduleID = sched.ID
		for _, existing := range sched.Tasks {
			if existing.TaskID == st.TaskID {
				return ErrDuplicateScheduledTask
			}
		}
		position = len(sched.Tasks)
	}

	_, err = s.db.Exec(`
		INSERT INTO scheduled_tasks (schedule_id, task_id, task_title, estimated, completed, notes, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, scheduleID, st.TaskID, st.TaskTitle, st.EstimatedPomodoros, st.CompletedPomodoros, st.Notes, position)
	if err != nil {
		return fmt.Errorf("add task to schedule: %w", err)
	}
	return nil
}

// RemoveTaskFromSchedule detaches a task. Removing the last task
// deletes the schedule itself.
func (s *Store) RemoveTaskFromSchedule(date, taskID string) error {
	sched, err := s.GetScheduleByDate(date)
	if err != nil {
		return err
	}
	if sched == nil {
		return nil
	}

	if _, err := s.db.Exec(
		"DELETE FROM scheduled_tasks WHERE schedule_id = ? AND task_id = ?",
		sched.ID, taskID); err != nil {
		return fmt.Errorf("remove task from schedule: %w", err)
	}

	var remaining int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM scheduled_tasks WHERE schedule_id = ?",
		sched.ID).Scan(&remaining); err != nil {
		return fmt.Errorf("count scheduled tasks: %w", err)
	}
	if remaining == 0 {
		if _, err := s.db.Exec("DELETE FROM schedules WHERE id = ?", sched.ID); err != nil {
			return fmt.Errorf("delete empty schedule: %w", err)
		}
	}
	return nil
}

// ScheduledTaskUpdate carries a partial edit to a scheduled task; nil
// fields are left unchanged.
type ScheduledTaskUpdate struct {
	EstimatedPomodoros *int
	Notes              *string
}

// UpdateScheduledTask applies the non-nil fields of update.
func (s *Store) UpdateScheduledTask(date, taskID string, update ScheduledTaskUpdate) error {
	sched, err := s.GetScheduleByDate(date)
	if err != nil {
		return err
	}
	if sched == nil {
		return nil
	}

	if update.EstimatedPomodoros != nil {
		if _, err := s.db.Exec(
			"UPDATE scheduled_tasks SET estimated = ? WHERE schedule_id = ? AND task_id = ?",
			*update.EstimatedPomodoros, sched.ID, taskID); err != nil {
			return fmt.Errorf("update estimated pomodoros: %w", err)
		}
	}
	if update.Notes != nil {
		if _, err := s.db.Exec(
			"UPDATE scheduled_tasks SET notes = ? WHERE schedule_id = ? AND task_id = ?",
			*update.Notes, sched.ID, taskID); err != nil {
			return fmt.Errorf("update notes: %w", err)
		}
	}
	return nil
}

// SetCompletedPomodoros writes the reconciled completion count for a
// scheduled task.
func (s *Store) SetCompletedPomodoros(scheduleID, taskID string, count int) error {
	_, err := s.db.Exec(
		"UPDATE scheduled_tasks SET completed = ? WHERE schedule_id = ? AND task_id = ?",
		count, scheduleID, taskID)
	if err != nil {
		return fmt.Errorf("set completed pomodoros: %w", err)
	}
	return nil
}

func (s *Store) scheduledTasks(scheduleID string) ([]ScheduledTask, error) {
	rows, err := s.db.Query(`
		SELECT task_id, task_title, estimated, completed, notes
		FROM scheduled_tasks
		WHERE schedule_id = ?
		ORDER BY position ASC
	`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("query scheduled tasks: %w", err)
	}
	defer rows.Close()

	var tasks []ScheduledTask
	for rows.Next() {
		var t ScheduledTask
		if err := rows.Scan(&t.TaskID, &t.TaskTitle, &t.EstimatedPomodoros,
			&t.CompletedPomodoros, &t.Notes); err != nil {
			return nil, fmt.Errorf("scan scheduled task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
