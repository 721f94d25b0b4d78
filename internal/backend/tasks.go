package backend

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tomadori/focusdeck/internal/model"
)

const taskColumns = `id, user_id, title, completed, pomodoros, estimated_pomodoros, duration,
	scheduled_for, folder_id, time_spent, started_at, notified, reminder_enabled, reminder_time, created_at`

func (s *Store) InsertTask(t model.Task) error {
	_, err := s.db.Exec(
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, boolInt(t.Completed), t.Pomodoros, t.EstimatedPomodoros, t.DurationMinutes,
		timePtrStr(t.ScheduledFor), t.FolderID, t.TimeSpentSeconds, timePtrStr(t.StartedAt),
		boolInt(t.Notified), boolInt(t.ReminderEnabled), reminderVal(t), t.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	s.notifyTasksChanged()
	return nil
}

func (s *Store) GetTask(id string) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// ListTasks returns the user's tasks, newest first.
func (s *Store) ListTasks(userID string) ([]model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTask applies the non-nil fields of the patch to the stored row.
func (s *Store) UpdateTask(id string, patch model.TaskPatch) error {
	if patch.IsZero() {
		return nil
	}

	var sets []string
	var args []any
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Completed != nil {
		add("completed", boolInt(*patch.Completed))
	}
	if patch.EstimatedPomodoros != nil {
		add("estimated_pomodoros", *patch.EstimatedPomodoros)
	}
	if patch.DurationMinutes != nil {
		add("duration", *patch.DurationMinutes)
	}
	if patch.ScheduledFor != nil {
		add("scheduled_for", nullIfEmpty(*patch.ScheduledFor))
	}
	if patch.FolderID != nil {
		add("folder_id", nullIfEmpty(*patch.FolderID))
	}
	if patch.TimeSpentSeconds != nil {
		add("time_spent", *patch.TimeSpentSeconds)
	}
	if patch.StartedAt != nil {
		add("started_at", nullIfEmpty(*patch.StartedAt))
	}
	if patch.Notified != nil {
		add("notified", boolInt(*patch.Notified))
	}
	if patch.ReminderEnabled != nil {
		add("reminder_enabled", boolInt(*patch.ReminderEnabled))
	}
	if patch.ReminderMinutes != nil {
		add("reminder_time", *patch.ReminderMinutes)
	}

	args = append(args, id)
	_, err := s.db.Exec(`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update task %s: %w", id, err)
	}
	s.notifyTasksChanged()
	return nil
}

func (s *Store) DeleteTask(id string) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	s.notifyTasksChanged()
	return nil
}

// IncrementTaskPomodoro atomically bumps the task's pomodoro counter.
func (s *Store) IncrementTaskPomodoro(id string) error {
	_, err := s.db.Exec(`UPDATE tasks SET pomodoros = pomodoros + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("increment task pomodoro: %w", err)
	}
	s.notifyTasksChanged()
	return nil
}

// AddTaskTimeSpent atomically adds elapsed seconds to the task's
// accumulated time.
func (s *Store) AddTaskTimeSpent(id string, seconds int64) error {
	_, err := s.db.Exec(`UPDATE tasks SET time_spent = time_spent + ? WHERE id = ?`, seconds, id)
	if err != nil {
		return fmt.Errorf("add task time spent: %w", err)
	}
	s.notifyTasksChanged()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*model.Task, error) {
	t := &model.Task{}
	var completed, notified, reminderEnabled int
	var scheduledFor, folderID, startedAt sql.NullString
	var reminderTime sql.NullInt64
	var createdAt string

	err := row.Scan(&t.ID, &t.UserID, &t.Title, &completed, &t.Pomodoros, &t.EstimatedPomodoros,
		&t.DurationMinutes, &scheduledFor, &folderID, &t.TimeSpentSeconds, &startedAt,
		&notified, &reminderEnabled, &reminderTime, &createdAt)
	if err != nil {
		return nil, err
	}

	t.Completed = completed == 1
	t.Notified = notified == 1
	t.ReminderEnabled = reminderEnabled == 1
	if folderID.Valid {
		t.FolderID = &folderID.String
	}
	if reminderTime.Valid {
		t.ReminderMinutes = int(reminderTime.Int64)
	}
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if scheduledFor.Valid {
		if parsed, err := time.Parse(time.RFC3339, scheduledFor.String); err == nil {
			t.ScheduledFor = &parsed
		}
	}
	if startedAt.Valid {
		if parsed, err := time.Parse(time.RFC3339, startedAt.String); err == nil {
			t.StartedAt = &parsed
		}
	}
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timePtrStr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func reminderVal(t model.Task) any {
	if !t.ReminderEnabled {
		return nil
	}
	return t.ReminderMinutes
}
