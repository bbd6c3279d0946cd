// Package task keeps the merged view of local and remote tasks. Local
// tasks are persisted; remote tasks live only for the session and are
// replaced wholesale on every fetch.
package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sadopc/pomoplan/internal/store"
)

// Source tags where a task came from.
type Source string

const (
	SourceLocal  Source = "local"
	SourceRemote Source = "remote"
)

var (
	// ErrEmptyTitle is returned when a task title is blank after trimming.
	ErrEmptyTitle = errors.New("task title must not be empty")
	// ErrRemoteTask is returned when a mutation targets a remote task.
	ErrRemoteTask = errors.New("remote tasks cannot be modified")
)

// Task is the unified task shape shown in the picker.
type Task struct {
	ID          string
	Title       string
	Description string
	Priority    int
	State       string
	DueDate     *string
	Source      Source
}

// Registry holds both task pools and the current selection.
type Registry struct {
	store *store.Store

	local  []Task
	remote []Task

	selectedID    string
	lastFetchedAt time.Time
}

func NewRegistry(s *store.Store) *Registry {
	return &Registry{store: s}
}

// LoadLocal reads the persisted local tasks into the registry.
func (r *Registry) LoadLocal() error {
	rows, err := r.store.ListTasks()
	if err != nil {
		return err
	}
	r.local = r.local[:0]
	for _, t := range rows {
		r.local = append(r.local, Task{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			Priority:    t.Priority,
			State:       t.State,
			DueDate:     t.DueDate,
			Source:      SourceLocal,
		})
	}
	return nil
}

// ReplaceRemote swaps in a fresh remote snapshot, leaving local tasks
// untouched.
func (r *Registry) ReplaceRemote(tasks []Task) {
	r.remote = make([]Task, len(tasks))
	copy(r.remote, tasks)
	for i := range r.remote {
		r.remote[i].Source = SourceRemote
	}
	r.lastFetchedAt = time.Now()
}

// Tasks returns the merged list, remote first.
func (r *Registry) Tasks() []Task {
	out := make([]Task, 0, len(r.remote)+len(r.local))
	out = append(out, r.remote...)
	out = append(out, r.local...)
	return out
}

// AddLocal validates and persists a new local task, returning it.
func (r *Registry) AddLocal(title, description string, priority int) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}

	rec := store.LocalTask{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Priority:    priority,
		State:       "Todo",
		CreatedAt:   time.Now(),
	}
	if err := r.store.CreateTask(rec); err != nil {
		return Task{}, err
	}

	t := Task{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Priority:    rec.Priority,
		State:       rec.State,
		Source:      SourceLocal,
	}
	r.local = append([]Task{t}, r.local...)
	return t, nil
}

// UpdateLocal edits a local task. Targeting a remote task fails
// without touching the store.
func (r *Registry) UpdateLocal(id string, update store.TaskUpdate) error {
	idx, err := r.localIndex(id)
	if err != nil {
		return err
	}
	if update.Title != nil {
		trimmed := strings.TrimSpace(*update.Title)
		if trimmed == "" {
			return ErrEmptyTitle
		}
		update.Title = &trimmed
	}
	if err := r.store.UpdateTask(id, update); err != nil {
		return err
	}

	t := &r.local[idx]
	if update.Title != nil {
		t.Title = *update.Title
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	if update.Priority != nil {
		t.Priority = *update.Priority
	}
	if update.State != nil {
		t.State = *update.State
	}
	if update.DueDate != nil {
		t.DueDate = update.DueDate
	}
	return nil
}

// DeleteLocal removes a local task. Targeting a remote task fails
// without touching the store.
func (r *Registry) DeleteLocal(id string) error {
	idx, err := r.localIndex(id)
	if err != nil {
		return err
	}
	if err := r.store.DeleteTask(id); err != nil {
		return err
	}
	r.local = append(r.local[:idx], r.local[idx+1:]...)
	if r.selectedID == id {
		r.selectedID = ""
	}
	return nil
}

func (r *Registry) localIndex(id string) (int, error) {
	for _, t := range r.remote {
		if t.ID == id {
			return 0, ErrRemoteTask
		}
	}
	for i, t := range r.local {
		if t.ID == id {
			return i, nil
		}
	}
	return 0, errors.New("task not found")
}

// Select marks a task as the timer's current task. An unknown id
// clears the selection.
func (r *Registry) Select(id string) {
	if _, ok := r.Find(id); ok {
		r.selectedID = id
		return
	}
	r.selectedID = ""
}

// Selected returns the currently selected task, if any.
func (r *Registry) Selected() (Task, bool) {
	if r.selectedID == "" {
		return Task{}, false
	}
	return r.Find(r.selectedID)
}

// Find looks up a task by id in either pool.
func (r *Registry) Find(id string) (Task, bool) {
	for _, t := range r.remote {
		if t.ID == id {
			return t, true
		}
	}
	for _, t := range r.local {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// LastFetchedAt reports when the remote pool was last replaced; zero
// means never.
func (r *Registry) LastFetchedAt() time.Time {
	return r.lastFetchedAt
}
