// Package model holds the domain types shared by the backend store,
// the task repository and the TUI.
package model

import "time"

// Task is a single tracked task. TimeSpentSeconds only ever grows;
// StartedAt is set exactly while a running timed session is attributed
// to the task, and clearing it is always paired with folding the
// elapsed delta into TimeSpentSeconds.
type Task struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"userId,omitempty"`
	Title              string     `json:"title"`
	Completed          bool       `json:"completed"`
	Pomodoros          int        `json:"pomodoros"`
	EstimatedPomodoros int        `json:"estimatedPomodoros"`
	DurationMinutes    int        `json:"duration"`
	CreatedAt          time.Time  `json:"createdAt"`
	ScheduledFor       *time.Time `json:"scheduledFor,omitempty"`
	FolderID           *string    `json:"folderId,omitempty"`
	TimeSpentSeconds   int64      `json:"timeSpent"`
	StartedAt          *time.Time `json:"startedAt,omitempty"`
	Notified           bool       `json:"notified"`
	ReminderEnabled    bool       `json:"reminderEnabled"`
	ReminderMinutes    int        `json:"reminderTime,omitempty"`
}

// Folder groups tasks. The folder reference on a task is weak: deleting
// a folder clears FolderID on member tasks, it never deletes them.
type Folder struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats is the per-user aggregate. All counters are monotonically
// increasing except CurrentStreakDays, which may reset to zero.
type Stats struct {
	FocusTimeMinutes  int `json:"focusTime"`
	CompletedTasks    int `json:"completedTasks"`
	TotalPomodoros    int `json:"totalPomodoros"`
	CurrentStreakDays int `json:"currentStreak"`
}

// User is the identity the remote collections are scoped by.
type User struct {
	ID          string
	Email       string
	DisplayName string
	AvatarID    string
	CreatedAt   time.Time
}

// TaskPatch is a partial update applied to a stored task. Nil fields
// are left untouched. ScheduledFor, StartedAt and FolderID use the
// empty string to clear the column.
type TaskPatch struct {
	Title              *string
	Completed          *bool
	EstimatedPomodoros *int
	DurationMinutes    *int
	ScheduledFor       *string // normalized ISO-8601 instant
	FolderID           *string
	TimeSpentSeconds   *int64
	StartedAt          *string // normalized ISO-8601 instant
	Notified           *bool
	ReminderEnabled    *bool
	ReminderMinutes    *int
}

// IsZero reports whether the patch carries no changes.
func (p TaskPatch) IsZero() bool {
	return p.Title == nil && p.Completed == nil && p.EstimatedPomodoros == nil &&
		p.DurationMinutes == nil && p.ScheduledFor == nil && p.FolderID == nil &&
		p.TimeSpentSeconds == nil && p.StartedAt == nil && p.Notified == nil &&
		p.ReminderEnabled == nil && p.ReminderMinutes == nil
}
