package task

import (
	"errors"
	"testing"

	"github.com/sadopc/pomoplan/internal/store"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewRegistry(s)
}

func TestAddLocalValidatesTitle(t *testing.T) {
	r := newTestRegistry(t)

	if _, err := r.AddLocal("   ", "", 0); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("blank title err = %v, want ErrEmptyTitle", err)
	}

	task, err := r.AddLocal("  Ship release  ", "cut the tag", 3)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if task.Title != "Ship release" {
		t.Errorf("title = %q, want trimmed", task.Title)
	}
	if task.Source != SourceLocal {
		t.Errorf("source = %q, want local", task.Source)
	}
	if task.State != "Todo" {
		t.Errorf("state = %q, want Todo", task.State)
	}
}

func TestAddLocalPersists(t *testing.T) {
	r := newTestRegistry(t)

	if _, err := r.AddLocal("First", "", 0); err != nil {
		t.Fatalf("add: %v", err)
	}

	fresh := NewRegistry(r.store)
	if err := fresh.LoadLocal(); err != nil {
		t.Fatalf("load: %v", err)
	}
	tasks := fresh.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "First" {
		t.Errorf("reloaded tasks = %+v, want the persisted one", tasks)
	}
}

func TestRemoteTasksAreReadOnly(t *testing.T) {
	r := newTestRegistry(t)

	r.ReplaceRemote([]Task{{ID: "LIN-1", Title: "Remote issue"}})

	if err := r.DeleteLocal("LIN-1"); !errors.Is(err, ErrRemoteTask) {
		t.Errorf("delete remote err = %v, want ErrRemoteTask", err)
	}
	title := "renamed"
	if err := r.UpdateLocal("LIN-1", store.TaskUpdate{Title: &title}); !errors.Is(err, ErrRemoteTask) {
		t.Errorf("update remote err = %v, want ErrRemoteTask", err)
	}

	// The remote task is still there, untouched.
	got, ok := r.Find("LIN-1")
	if !ok || got.Title != "Remote issue" {
		t.Errorf("remote task = %+v, want unchanged", got)
	}
}

func TestReplaceRemotePreservesLocal(t *testing.T) {
	r := newTestRegistry(t)

	local, err := r.AddLocal("Local chore", "", 0)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	r.ReplaceRemote([]Task{{ID: "LIN-1", Title: "One"}, {ID: "LIN-2", Title: "Two"}})
	r.ReplaceRemote([]Task{{ID: "LIN-3", Title: "Three"}})

	tasks := r.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	// Remote first, then local.
	if tasks[0].ID != "LIN-3" || tasks[0].Source != SourceRemote {
		t.Errorf("tasks[0] = %+v, want latest remote", tasks[0])
	}
	if tasks[1].ID != local.ID {
		t.Errorf("tasks[1] = %+v, want local task", tasks[1])
	}
	if r.LastFetchedAt().IsZero() {
		t.Error("fetch time should be recorded")
	}
}

func TestUpdateLocal(t *testing.T) {
	r := newTestRegistry(t)

	task, err := r.AddLocal("Draft post", "", 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	state := "Done"
	if err := r.UpdateLocal(task.ID, store.TaskUpdate{State: &state}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := r.Find(task.ID)
	if got.State != "Done" {
		t.Errorf("state = %q, want Done", got.State)
	}
	if got.Priority != 1 {
		t.Errorf("priority = %d, want 1 (untouched)", got.Priority)
	}

	blank := "  "
	if err := r.UpdateLocal(task.ID, store.TaskUpdate{Title: &blank}); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("blank title err = %v, want ErrEmptyTitle", err)
	}
}

func TestDeleteLocalClearsSelection(t *testing.T) {
	r := newTestRegistry(t)

	task, err := r.AddLocal("Temp", "", 0)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	r.Select(task.ID)
	if _, ok := r.Selected(); !ok {
		t.Fatal("task should be selected")
	}

	if err := r.DeleteLocal(task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := r.Selected(); ok {
		t.Error("selection should be cleared after delete")
	}
}

func TestSelectUnknownClears(t *testing.T) {
	r := newTestRegistry(t)

	task, err := r.AddLocal("Known", "", 0)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	r.Select(task.ID)
	r.Select("does-not-exist")
	if _, ok := r.Selected(); ok {
		t.Error("selecting an unknown id should clear the selection")
	}
}
