package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/pomoplan/internal/linear"
	"github.com/sadopc/pomoplan/internal/schedule"
	"github.com/sadopc/pomoplan/internal/store"
	"github.com/sadopc/pomoplan/internal/task"
	"github.com/sadopc/pomoplan/internal/timer"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestEngine(s *store.Store) *timer.Engine {
	return timer.New(timer.Config{WorkDuration: 25, BreakDuration: 5}, s, nil)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// ============================================================
// Timer view
// ============================================================

func TestTimerViewStartPauseReset(t *testing.T) {
	s := newTestStore(t)
	e := newTestEngine(s)
	tm := newTimerModel(e)

	tm, _ = tm.update(keyMsg("s"))
	if e.State() != timer.StateRunning {
		t.Fatal("s should start the countdown")
	}

	tm, _ = tm.update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	if e.State() != timer.StatePaused {
		t.Fatal("space should pause")
	}

	tm, _ = tm.update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	if e.State() != timer.StateRunning {
		t.Fatal("space should resume")
	}

	tm, _ = tm.update(keyMsg("r"))
	if e.State() != timer.StateIdle {
		t.Fatal("r should reset to idle")
	}
	if e.Remaining() != 25*60 {
		t.Fatalf("remaining = %d, want full duration", e.Remaining())
	}
	_ = tm
}

func TestTimerViewTickAdvancesEngine(t *testing.T) {
	s := newTestStore(t)
	e := newTestEngine(s)
	tm := newTimerModel(e)

	tm, _ = tm.update(keyMsg("s"))
	before := e.Remaining()
	tm, _ = tm.update(tickMsg(time.Now()))
	if e.Remaining() != before-1 {
		t.Fatalf("remaining = %d, want %d", e.Remaining(), before-1)
	}
	_ = tm
}

func TestTimerViewModeSwitchBlockedWhileRunning(t *testing.T) {
	s := newTestStore(t)
	e := newTestEngine(s)
	tm := newTimerModel(e)

	tm, _ = tm.update(keyMsg("s"))
	tm, cmd := tm.update(keyMsg("m"))
	if e.Mode() != store.ModeWork {
		t.Fatal("mode should not switch while running")
	}
	if cmd == nil {
		t.Fatal("expected a status message explaining the refusal")
	}

	tm, _ = tm.update(keyMsg("r"))
	tm, _ = tm.update(keyMsg("m"))
	if e.Mode() != store.ModeBreak {
		t.Fatal("mode should switch when idle")
	}
	_ = tm
}

// ============================================================
// Tasks view
// ============================================================

func TestTasksViewSelectSetsEngineTask(t *testing.T) {
	s := newTestStore(t)
	e := newTestEngine(s)
	r := task.NewRegistry(s)
	if _, err := r.AddLocal("Write report", "", 2); err != nil {
		t.Fatal(err)
	}

	m := newTasksModel(s, r, e, linear.NewClient(""))
	m, cmd := m.update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("selecting should emit a status message")
	}
	if e.CurrentTaskTitle() != "Write report" {
		t.Fatalf("engine task = %q, want Write report", e.CurrentTaskTitle())
	}
	if _, ok := r.Selected(); !ok {
		t.Fatal("registry should have a selection")
	}
	_ = m
}

func TestTasksViewFetchGuard(t *testing.T) {
	s := newTestStore(t)
	m := newTasksModel(s, task.NewRegistry(s), newTestEngine(s), linear.NewClient(""))

	m, cmd := m.update(keyMsg("f"))
	if !m.fetching {
		t.Fatal("f should mark the view as fetching")
	}
	if cmd == nil {
		t.Fatal("f should start a fetch command")
	}

	// A second press while a fetch is in flight does nothing.
	m, cmd = m.update(keyMsg("f"))
	if cmd != nil {
		t.Fatal("fetch should not be restarted while in flight")
	}
}

func TestTasksViewFetchResult(t *testing.T) {
	s := newTestStore(t)
	r := task.NewRegistry(s)
	m := newTasksModel(s, r, newTestEngine(s), linear.NewClient(""))
	m.fetching = true

	m, _ = m.update(tasksFetchedMsg{tasks: []task.Task{
		{ID: "LIN-1", Title: "Remote"},
	}})
	if m.fetching {
		t.Fatal("fetch result should clear the fetching flag")
	}
	if len(r.Tasks()) != 1 {
		t.Fatalf("got %d tasks, want 1", len(r.Tasks()))
	}
}

func TestTasksViewFetchError(t *testing.T) {
	s := newTestStore(t)
	m := newTasksModel(s, task.NewRegistry(s), newTestEngine(s), linear.NewClient(""))
	m.fetching = true

	m, cmd := m.update(tasksFetchedMsg{err: linear.ErrMissingToken})
	if m.fetching {
		t.Fatal("error should clear the fetching flag")
	}
	if cmd == nil {
		t.Fatal("error should produce a status message")
	}
	msg := cmd()
	status, ok := msg.(statusMsg)
	if !ok || !status.isError {
		t.Fatalf("got %#v, want error status", msg)
	}
}

func TestTasksViewDeleteRemoteRejected(t *testing.T) {
	s := newTestStore(t)
	r := task.NewRegistry(s)
	r.ReplaceRemote([]task.Task{{ID: "LIN-1", Title: "Remote"}})

	m := newTasksModel(s, r, newTestEngine(s), linear.NewClient(""))
	m, cmd := m.update(keyMsg("d"))
	if cmd == nil {
		t.Fatal("deleting a remote task should produce an error status")
	}
	if len(r.Tasks()) != 1 {
		t.Fatal("remote task should survive")
	}
	_ = m
}

// ============================================================
// Schedule view
// ============================================================

func newTestScheduleModel(t *testing.T) (scheduleModel, *store.Store) {
	s := newTestStore(t)
	r := task.NewRegistry(s)
	return newScheduleModel(s, r, schedule.NewReconciler(s)), s
}

func TestScheduleViewDateNavigation(t *testing.T) {
	m, _ := newTestScheduleModel(t)
	today := time.Now().Format("2006-01-02")
	if m.date != today {
		t.Fatalf("initial date = %q, want today", m.date)
	}

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyLeft})
	want := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	if m.date != want {
		t.Fatalf("date = %q, want %q", m.date, want)
	}

	m, _ = m.update(tea.KeyMsg{Type: tea.KeyRight})
	if m.date != today {
		t.Fatalf("date = %q, want today again", m.date)
	}
}

func TestScheduleViewPeriodicReconcile(t *testing.T) {
	m, _ := newTestScheduleModel(t)

	m, cmd := m.activate()
	if !m.active {
		t.Fatal("activate should mark the view active")
	}
	if cmd == nil {
		t.Fatal("activate should reconcile immediately")
	}

	// Ticks below the threshold do not trigger a recount.
	for i := 0; i < reconcileEvery-1; i++ {
		var c tea.Cmd
		m, c = m.update(tickMsg(time.Now()))
		if c != nil {
			t.Fatalf("tick %d should not reconcile yet", i)
		}
	}
	m, cmd = m.update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("threshold tick should trigger a reconcile")
	}

	m = m.deactivate()
	m, cmd = m.update(tickMsg(time.Now()))
	if cmd != nil {
		t.Fatal("inactive view should ignore ticks")
	}
}

func TestScheduleViewRemoveTask(t *testing.T) {
	m, s := newTestScheduleModel(t)
	date := time.Now().Format("2006-01-02")
	if err := s.AddTaskToSchedule(date, store.ScheduledTask{
		TaskID: "t1", TaskTitle: "Only one", EstimatedPomodoros: 1,
	}); err != nil {
		t.Fatal(err)
	}
	sched, _ := s.GetScheduleByDate(date)
	m.schedule = sched

	m, cmd := m.update(keyMsg("d"))
	if cmd == nil {
		t.Fatal("delete should refresh the view")
	}

	sched, err := s.GetScheduleByDate(date)
	if err != nil {
		t.Fatal(err)
	}
	if sched != nil {
		t.Fatal("removing the last task should delete the schedule")
	}
}

func TestValidateEstimate(t *testing.T) {
	if err := validateEstimate("5"); err != nil {
		t.Errorf("5 should be valid: %v", err)
	}
	if err := validateEstimate("0"); err == nil {
		t.Error("0 should be rejected")
	}
	if err := validateEstimate("21"); err == nil {
		t.Error("21 should be rejected")
	}
	if err := validateEstimate("abc"); err == nil {
		t.Error("non-numeric should be rejected")
	}
}

func TestShiftDate(t *testing.T) {
	if got := shiftDate("2025-06-01", 1); got != "2025-06-02" {
		t.Errorf("shiftDate(+1) = %q", got)
	}
	if got := shiftDate("2025-06-01", -1); got != "2025-05-31" {
		t.Errorf("shiftDate(-1) = %q", got)
	}
	// Month boundary
	if got := shiftDate("2025-06-30", 1); got != "2025-07-01" {
		t.Errorf("shiftDate(month boundary) = %q", got)
	}
}

// ============================================================
// Settings view
// ============================================================

func TestSettingsViewSave(t *testing.T) {
	s := newTestStore(t)
	m := newSettingsModel(s)
	m.settings = store.DefaultSettings()

	*m.workDuration = "50"
	*m.breakDuration = "10"
	*m.notifications = "off"
	*m.linearToken = "lin_api_xyz"

	m, cmd := m.save()
	if cmd == nil {
		t.Fatal("save should emit settingsChangedMsg")
	}
	msg, ok := cmd().(settingsChangedMsg)
	if !ok {
		t.Fatalf("got %#v, want settingsChangedMsg", cmd())
	}
	if msg.settings.WorkDuration != 50 || msg.settings.BreakDuration != 10 {
		t.Errorf("durations = %d/%d, want 50/10", msg.settings.WorkDuration, msg.settings.BreakDuration)
	}
	if msg.settings.NotificationsEnabled {
		t.Error("notifications should be off")
	}

	saved, err := s.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	if saved.LinearAPIToken != "lin_api_xyz" {
		t.Errorf("token = %q, want persisted value", saved.LinearAPIToken)
	}
	_ = m
}

func TestValidateMinutes(t *testing.T) {
	v := validateMinutes(1, 60)
	if err := v("25"); err != nil {
		t.Errorf("25 should be valid: %v", err)
	}
	if err := v("0"); err == nil {
		t.Error("0 should be rejected")
	}
	if err := v("61"); err == nil {
		t.Error("61 should be rejected")
	}
	if err := v("x"); err == nil {
		t.Error("non-numeric should be rejected")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{60, "01:00"},
		{1500, "25:00"},
		{-5, "00:00"},
	}
	for _, tt := range tests {
		if got := formatCountdown(tt.secs); got != tt.want {
			t.Errorf("formatCountdown(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestPriorityLabel(t *testing.T) {
	if priorityLabel(1) != "Urgent" {
		t.Errorf("priorityLabel(1) = %q", priorityLabel(1))
	}
	if priorityLabel(0) != "None" {
		t.Errorf("priorityLabel(0) = %q", priorityLabel(0))
	}
	if priorityLabel(99) != "None" {
		t.Errorf("out of range should fall back to None")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("a very long task title", 10); got != "a very ..." {
		t.Errorf("truncate(long) = %q", got)
	}
	// Multibyte titles must cut on rune boundaries, not bytes.
	if got := truncate("会議の議事録をまとめる", 6); got != "会議の..." {
		t.Errorf("truncate(multibyte) = %q", got)
	}
	if got := truncate("日本語", 10); got != "日本語" {
		t.Errorf("truncate(short multibyte) = %q", got)
	}
}

// ============================================================
// App
// ============================================================

func newTestApp(t *testing.T) App {
	s := newTestStore(t)
	e := newTestEngine(s)
	r := task.NewRegistry(s)
	return NewApp(s, e, r, schedule.NewReconciler(s), linear.NewClient(""))
}

func TestAppViewSwitching(t *testing.T) {
	a := newTestApp(t)

	model, _ := a.Update(keyMsg("2"))
	a = model.(App)
	if a.activeView != viewTasks {
		t.Fatalf("view = %d, want tasks", a.activeView)
	}

	model, cmd := a.Update(keyMsg("3"))
	a = model.(App)
	if a.activeView != viewSchedule {
		t.Fatalf("view = %d, want schedule", a.activeView)
	}
	if cmd == nil {
		t.Fatal("entering schedule view should reconcile and refresh")
	}
	if !a.schedule.active {
		t.Fatal("schedule view should be active")
	}

	model, _ = a.Update(keyMsg("1"))
	a = model.(App)
	if a.schedule.active {
		t.Fatal("leaving schedule view should deactivate it")
	}
}

func TestAppSettingsChangeReachesEngine(t *testing.T) {
	a := newTestApp(t)

	model, _ := a.Update(settingsChangedMsg{settings: store.Settings{
		WorkDuration:  50,
		BreakDuration: 10,
	}})
	a = model.(App)
	if a.engine.Remaining() != 50*60 {
		t.Fatalf("remaining = %d, want new work duration", a.engine.Remaining())
	}
	if a.status != "Settings saved" {
		t.Fatalf("status = %q", a.status)
	}
}

func TestAppTickKeepsTicking(t *testing.T) {
	a := newTestApp(t)

	model, cmd := a.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick should re-arm the ticker")
	}
	_ = model
}

func TestAppExportPicker(t *testing.T) {
	a := newTestApp(t)

	model, _ := a.Update(keyMsg("x"))
	a = model.(App)
	if !a.exportPicking {
		t.Fatal("x should open the export picker")
	}

	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	a = model.(App)
	if a.exportPicking {
		t.Fatal("esc should close the export picker")
	}
}
