package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tomadori/focusdeck/internal/model"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Count      int        `json:"count"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonTask struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Folder       string `json:"folder,omitempty"`
	FolderID     string `json:"folder_id,omitempty"`
	Completed    bool   `json:"completed"`
	Pomodoros    int    `json:"pomodoros"`
	Estimated    int    `json:"estimated_pomodoros"`
	DurationMin  int    `json:"duration_minutes"`
	TimeSpentSec int64  `json:"time_spent_seconds"`
	TimeSpent    string `json:"time_spent"`
	ScheduledFor string `json:"scheduled_for,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func ToJSON(tasks []model.Task, folders map[string]model.Folder, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(tasks),
	}

	for _, t := range tasks {
		folderName := ""
		folderID := ""
		if t.FolderID != nil {
			folderID = *t.FolderID
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

		export.Tasks = append(export.Tasks, jsonTask{
			ID:           t.ID,
			Title:        t.Title,
			Folder:       folderName,
			FolderID:     folderID,
			Completed:    t.Completed,
			Pomodoros:    t.Pomodoros,
			Estimated:    t.EstimatedPomodoros,
			DurationMin:  t.DurationMinutes,
			TimeSpentSec: t.TimeSpentSeconds,
			TimeSpent:    formatDuration(t.TimeSpentSeconds),
			ScheduledFor: scheduled,
			CreatedAt:    t.CreatedAt.Local().Format(time.RFC3339),
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
