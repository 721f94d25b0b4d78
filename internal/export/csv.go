package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/tomadori/focusdeck/internal/model"
)

func ToCSV(tasks []model.Task, folders map[string]model.Folder, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	header := []string{"ID", "Title", "Folder", "Completed", "Pomodoros", "Estimated", "Duration (min)", "Time Spent (s)", "Time Spent", "Scheduled", "Created"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, t := range tasks {
		folderName := ""
		if t.FolderID != nil {
			if fl, ok := folders[*t.FolderID]; ok {
				folderName = fl.Name
			} else {
				folderName = "Unknown"
			}
		}
		scheduled := ""
		if t.ScheduledFor != nil {
			scheduled = t.ScheduledFor.Local().Format(time.RFC3339)
		}

		row := []string{
			t.ID,
			t.Title,
			folderName,
			fmt.Sprintf("%t", t.Completed),
			fmt.Sprintf("%d", t.Pomodoros),
			fmt.Sprintf("%d", t.EstimatedPomodoros),
			fmt.Sprintf("%d", t.DurationMinutes),
			fmt.Sprintf("%d", t.TimeSpentSeconds),
			formatDuration(t.TimeSpentSeconds),
			scheduled,
			t.CreatedAt.Local().Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
