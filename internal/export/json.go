package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/pomoplan/internal/store"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID          string `json:"id"`
	Task        string `json:"task,omitempty"`
	TaskID      string `json:"task_id,omitempty"`
	Mode        string `json:"mode"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	DurationMin int    `json:"duration_minutes"`
	Interrupted bool   `json:"interrupted"`
}

func ToJSON(sessions []store.Session, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
	}

	for _, s := range sessions {
		task, taskID := "", ""
		if s.TaskTitle != nil {
			task = *s.TaskTitle
		}
		if s.TaskID != nil {
			taskID = *s.TaskID
		}
		completedStr := ""
		if s.CompletedAt != nil {
			completedStr = s.CompletedAt.Local().Format(time.RFC3339)
		}

		export.Sessions = append(export.Sessions, jsonSession{
			ID:          s.ID,
			Task:        task,
			TaskID:      taskID,
			Mode:        s.Mode,
			StartedAt:   s.StartedAt.Local().Format(time.RFC3339),
			CompletedAt: completedStr,
			DurationMin: s.Duration,
			Interrupted: s.Interrupted,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
