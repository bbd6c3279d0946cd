package store

import (
	"database/sql"
	"fmt"
	"time"
)

// ListTasks returns all local tasks, newest first.
func (s *Store) ListTasks() ([]LocalTask, error) {
	rows, err := s.db.Query(`
		SELECT id, title, description, priority, state, due_date, created_at
		FROM local_tasks
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []LocalTask
	for rows.Next() {
		var t LocalTask
		var dueDate sql.NullString
		var createdAt string
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Priority,
			&t.State, &dueDate, &createdAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if dueDate.Valid {
			t.DueDate = &dueDate.String
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			t.CreatedAt = ts
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CreateTask inserts a local task.
func (s *Store) CreateTask(t LocalTask) error {
	var dueDate sql.NullString
	if t.DueDate != nil {
		dueDate = sql.NullString{String: *t.DueDate, Valid: true}
	}
	_, err := s.db.Exec(`
		INSERT INTO local_tasks (id, title, description, priority, state, due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.Title, t.Description, t.Priority, t.State, dueDate,
		t.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// UpdateTask applies the non-nil fields of update to the task.
func (s *Store) UpdateTask(id string, update TaskUpdate) error {
	if update.Title != nil {
		if _, err := s.db.Exec("UPDATE local_tasks SET title = ? WHERE id = ?", *update.Title, id); err != nil {
			return fmt.Errorf("update task title: %w", err)
		}
	}
	if update.Description != nil {
		if _, err := s.db.Exec("UPDATE local_tasks SET description = ? WHERE id = ?", *update.Description, id); err != nil {
			return fmt.Errorf("update task description: %w", err)
		}
	}
	if update.Priority != nil {
		if _, err := s.db.Exec("UPDATE local_tasks SET priority = ? WHERE id = ?", *update.Priority, id); err != nil {
			return fmt.Errorf("update task priority: %w", err)
		}
	}
	if update.State != nil {
		if _, err := s.db.Exec("UPDATE local_tasks SET state = ? WHERE id = ?", *update.State, id); err != nil {
			return fmt.Errorf("update task state: %w", err)
		}
	}
	if update.DueDate != nil {
		if _, err := s.db.Exec("UPDATE local_tasks SET due_date = ? WHERE id = ?", *update.DueDate, id); err != nil {
			return fmt.Errorf("update task due date: %w", err)
		}
	}
	return nil
}

// DeleteTask removes a local task.
func (s *Store) DeleteTask(id string) error {
	_, err := s.db.Exec("DELETE FROM local_tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
