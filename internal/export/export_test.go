package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/pomoplan/internal/store"
)

func sampleSessions() []store.Session {
	now := time.Now()
	done := now
	taskID := "t1"
	title := "Write proposal"

	return []store.Session{
		{
			ID:          "s1",
			TaskID:      &taskID,
			TaskTitle:   &title,
			StartedAt:   now.Add(-25 * time.Minute),
			CompletedAt: &done,
			Duration:    25,
			Mode:        store.ModeWork,
		},
		{
			ID:          "s2",
			StartedAt:   now.Add(-5 * time.Minute),
			CompletedAt: &done,
			Duration:    5,
			Mode:        store.ModeBreak,
		},
		{
			ID:          "s3",
			StartedAt:   now.Add(-2 * time.Minute),
			CompletedAt: nil, // abandoned
			Duration:    0,
			Interrupted: true,
			Mode:        store.ModeWork,
		},
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(sampleSessions(), path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 3 data rows
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	header := records[0]
	expectedHeader := []string{"ID", "Task", "Mode", "Started", "Completed", "Duration (min)", "Interrupted"}
	for i, h := range expectedHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	row := records[1]
	if row[0] != "s1" {
		t.Fatalf("ID = %q, want s1", row[0])
	}
	if row[1] != "Write proposal" {
		t.Fatalf("Task = %q, want Write proposal", row[1])
	}
	if row[5] != "25" {
		t.Fatalf("Duration = %q, want 25", row[5])
	}
	if row[6] != "no" {
		t.Fatalf("Interrupted = %q, want no", row[6])
	}

	// Abandoned session has no completion time.
	abandoned := records[3]
	if abandoned[4] != "" {
		t.Fatalf("abandoned session should have empty completed time, got %q", abandoned[4])
	}
	if abandoned[6] != "yes" {
		t.Fatalf("Interrupted = %q, want yes", abandoned[6])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(nil, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, _ := csv.NewReader(f).ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	now := time.Now()
	title := `task with "quotes" and, commas`
	sessions := []store.Session{
		{ID: "s1", TaskTitle: &title, StartedAt: now, Duration: 25, Mode: store.ModeWork},
	}
	path := filepath.Join(t.TempDir(), "special.csv")

	if err := ToCSV(sessions, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("CSV should be valid even with special chars: %v", err)
	}
	if records[1][1] != title {
		t.Fatalf("task title mangled: %q", records[1][1])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(sampleSessions(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 {
		t.Fatalf("count = %d, want 3", result.Count)
	}
	if len(result.Sessions) != 3 {
		t.Fatalf("sessions = %d, want 3", len(result.Sessions))
	}
	if result.ExportedAt == "" {
		t.Fatal("exported_at should not be empty")
	}

	first := result.Sessions[0]
	if first.ID != "s1" {
		t.Fatalf("ID = %q, want s1", first.ID)
	}
	if first.Task != "Write proposal" {
		t.Fatalf("Task = %q", first.Task)
	}
	if first.DurationMin != 25 {
		t.Fatalf("DurationMin = %d, want 25", first.DurationMin)
	}

	abandoned := result.Sessions[2]
	if abandoned.CompletedAt != "" {
		t.Fatalf("abandoned session completed_at should be empty, got %q", abandoned.CompletedAt)
	}
	if !abandoned.Interrupted {
		t.Fatal("abandoned session should be marked interrupted")
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.Sessions != nil {
		t.Fatal("sessions should be null for empty export")
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(nil, path)

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n") {
		t.Fatal("JSON should be pretty-printed with newlines")
	}
	if !strings.Contains(string(data), "  ") {
		t.Fatal("JSON should be indented with spaces")
	}
}

func TestToJSONValidTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ts.json")
	ToJSON(sampleSessions(), path)

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}
	for _, s := range result.Sessions {
		if _, err := time.Parse(time.RFC3339, s.StartedAt); err != nil {
			t.Fatalf("started_at is not valid RFC3339: %q", s.StartedAt)
		}
	}
}
