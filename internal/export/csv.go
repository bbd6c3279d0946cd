package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/pomoplan/internal/store"
)

func ToCSV(sessions []store.Session, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Task", "Mode", "Started", "Completed", "Duration (min)", "Interrupted"}); err != nil {
		return err
	}

	for _, s := range sessions {
		task := ""
		if s.TaskTitle != nil {
			task = *s.TaskTitle
		}
		completedStr := ""
		if s.CompletedAt != nil {
			completedStr = s.CompletedAt.Local().Format(time.RFC3339)
		}
		interrupted := "no"
		if s.Interrupted {
			interrupted = "yes"
		}

		row := []string{
			s.ID,
			task,
			s.Mode,
			s.StartedAt.Local().Format(time.RFC3339),
			completedStr,
			fmt.Sprintf("%d", s.Duration),
			interrupted,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
