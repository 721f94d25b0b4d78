package repo

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	fderrors "github.com/tomadori/focusdeck/internal/errors"
	"github.com/tomadori/focusdeck/internal/model"
	"github.com/tomadori/focusdeck/internal/timestamp"
)

const (
	defaultDurationMinutes = 25
	defaultReminderMinutes = 15
)

// Tasks returns a snapshot of the task mirror.
func (s *Service) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Task returns the mirrored task with the given id.
func (s *Service) Task(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// AddTaskParams are the user-supplied fields for a new task.
// ScheduledFor accepts a time.Time, an epoch-millisecond number or a
// parsable string, and goes through strict normalization.
type AddTaskParams struct {
	Title              string
	EstimatedPomodoros int
	DurationMinutes    int
	ScheduledFor       any
	FolderID           string
	ReminderEnabled    bool
	ReminderMinutes    int
}

// AddTask creates a task local-first: the mirror is updated before the
// remote write completes so the UI never blocks, and a failed remote
// write is logged and swallowed — the next successful refresh
// reconciles.
func (s *Service) AddTask(p AddTaskParams) (model.Task, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return model.Task{}, fderrors.ErrEmptyTitle
	}

	scheduled, err := timestamp.Normalize(p.ScheduledFor)
	if err != nil {
		return model.Task{}, fmt.Errorf("scheduled time: %w", err)
	}

	if p.EstimatedPomodoros < 1 {
		p.EstimatedPomodoros = 1
	}
	if p.DurationMinutes < 1 {
		p.DurationMinutes = defaultDurationMinutes
	}
	if p.ReminderMinutes < 1 {
		p.ReminderMinutes = defaultReminderMinutes
	}

	userID, _ := s.userID()
	task := model.Task{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Title:              title,
		EstimatedPomodoros: p.EstimatedPomodoros,
		DurationMinutes:    p.DurationMinutes,
		CreatedAt:          s.clock.Now().UTC(),
		ReminderEnabled:    p.ReminderEnabled,
		ReminderMinutes:    p.ReminderMinutes,
	}
	if scheduled != "" {
		at, _ := timestamp.Parse(scheduled)
		task.ScheduledFor = &at
	}
	if p.FolderID != "" {
		fid := p.FolderID
		task.FolderID = &fid
	}

	// Local state is authoritative for this session; newest first.
	s.mu.Lock()
	s.tasks = append([]model.Task{task}, s.tasks...)
	s.persistLocked()
	s.mu.Unlock()

	if s.synced() {
		if err := s.remote.InsertTask(task); err != nil {
			s.log.Warn().Err(err).Str("task_id", task.ID).Msg("remote insert failed, keeping local copy")
		}
	}

	if task.ScheduledFor != nil && task.ReminderEnabled {
		s.notifier.Notify(fmt.Sprintf(
			"Task scheduled for %s. You'll be notified %d minutes before.",
			humanize.Time(*task.ScheduledFor), task.ReminderMinutes))
	}

	return task, nil
}

// ToggleTask flips the completed flag. Unknown ids are a silent no-op.
// Remote failure aborts the flip: completion state may be shared
// across devices, so the remote is authoritative here. The returned
// bool is the new completed state.
func (s *Service) ToggleTask(id string) (bool, error) {
	task, ok := s.Task(id)
	if !ok {
		return false, nil
	}
	completed := !task.Completed

	if s.synced() {
		if err := s.remote.UpdateTask(id, model.TaskPatch{Completed: &completed}); err != nil {
			return false, fmt.Errorf("toggle task: %w", err)
		}
	}

	s.mutateTask(id, func(t *model.Task) { t.Completed = completed })
	return completed, nil
}

// RemoveTask hard-deletes a task, remote first.
func (s *Service) RemoveTask(id string) error {
	if s.synced() {
		if err := s.remote.DeleteTask(id); err != nil {
			return fmt.Errorf("remove task: %w", err)
		}
	}

	s.mu.Lock()
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.persistLocked()
	s.mu.Unlock()
	return nil
}

// TaskUpdate is a partial edit. ScheduledFor and StartedAt accept the
// same raw forms as AddTaskParams and are rejected when they fail
// normalization; the Clear flags null the column instead.
type TaskUpdate struct {
	Title              *string
	Completed          *bool
	EstimatedPomodoros *int
	DurationMinutes    *int
	ScheduledFor       any
	ClearScheduledFor  bool
	FolderID           *string // empty string clears
	TimeSpentSeconds   *int64
	StartedAt          any
	ClearStartedAt     bool
	Notified           *bool
	ReminderEnabled    *bool
	ReminderMinutes    *int
}

// UpdateTask applies a partial edit remote-first.
func (s *Service) UpdateTask(id string, u TaskUpdate) error {
	patch := model.TaskPatch{
		Title:              u.Title,
		Completed:          u.Completed,
		EstimatedPomodoros: u.EstimatedPomodoros,
		DurationMinutes:    u.DurationMinutes,
		FolderID:           u.FolderID,
		TimeSpentSeconds:   u.TimeSpentSeconds,
		Notified:           u.Notified,
		ReminderEnabled:    u.ReminderEnabled,
		ReminderMinutes:    u.ReminderMinutes,
	}

	if u.ScheduledFor != nil {
		norm, err := timestamp.Normalize(u.ScheduledFor)
		if err != nil {
			return fmt.Errorf("scheduled time: %w", err)
		}
		patch.ScheduledFor = &norm
	} else if u.ClearScheduledFor {
		empty := ""
		patch.ScheduledFor = &empty
	}

	if u.StartedAt != nil {
		norm, err := timestamp.Normalize(u.StartedAt)
		if err != nil {
			return fmt.Errorf("start time: %w", err)
		}
		patch.StartedAt = &norm
	} else if u.ClearStartedAt {
		empty := ""
		patch.StartedAt = &empty
	}

	if patch.IsZero() {
		return nil
	}

	if s.synced() {
		if err := s.remote.UpdateTask(id, patch); err != nil {
			return fmt.Errorf("update task: %w", err)
		}
	}

	s.mutateTask(id, func(t *model.Task) { applyPatch(t, patch) })
	return nil
}

// StartTask records the instant a timed session begins for the task.
func (s *Service) StartTask(id string) error {
	now := s.clock.Now().UTC()
	startedAt := now.Format(time.RFC3339)

	if s.synced() {
		if err := s.remote.UpdateTask(id, model.TaskPatch{StartedAt: &startedAt}); err != nil {
			return fmt.Errorf("start task: %w", err)
		}
	}

	s.mutateTask(id, func(t *model.Task) { t.StartedAt = &now })
	return nil
}

// FinishTask ends the running session attributed to the task: the
// elapsed wall-clock delta is added to the remote time-spent counter
// atomically, then StartedAt is cleared locally with the same delta
// folded into the mirror. A task without a running session is a no-op.
func (s *Service) FinishTask(id string) error {
	task, ok := s.Task(id)
	if !ok || task.StartedAt == nil {
		return nil
	}

	elapsed := int64(s.clock.Now().Sub(*task.StartedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}

	if s.synced() {
		if err := s.remote.AddTaskTimeSpent(id, elapsed); err != nil {
			return fmt.Errorf("finish task: %w", err)
		}
	}

	s.mutateTask(id, func(t *model.Task) {
		t.StartedAt = nil
		t.TimeSpentSeconds += elapsed
	})
	return nil
}

// AddTimeSpent folds a known interval (a completed work phase) into
// the task's accumulated time.
func (s *Service) AddTimeSpent(id string, seconds int64) error {
	if s.synced() {
		if err := s.remote.AddTaskTimeSpent(id, seconds); err != nil {
			return fmt.Errorf("add time spent: %w", err)
		}
	}
	s.mutateTask(id, func(t *model.Task) { t.TimeSpentSeconds += seconds })
	return nil
}

// IncrementPomodoro bumps the task's pomodoro counter, remote-first.
func (s *Service) IncrementPomodoro(id string) error {
	if s.synced() {
		if err := s.remote.IncrementTaskPomodoro(id); err != nil {
			return fmt.Errorf("increment pomodoro: %w", err)
		}
	}
	s.mutateTask(id, func(t *model.Task) { t.Pomodoros++ })
	return nil
}

func (s *Service) mutateTask(id string, fn func(*model.Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			fn(&s.tasks[i])
			break
		}
	}
	s.persistLocked()
}

func applyPatch(t *model.Task, p model.TaskPatch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.EstimatedPomodoros != nil {
		t.EstimatedPomodoros = *p.EstimatedPomodoros
	}
	if p.DurationMinutes != nil {
		t.DurationMinutes = *p.DurationMinutes
	}
	if p.ScheduledFor != nil {
		if *p.ScheduledFor == "" {
			t.ScheduledFor = nil
		} else if at, err := timestamp.Parse(*p.ScheduledFor); err == nil {
			t.ScheduledFor = &at
		}
	}
	if p.FolderID != nil {
		if *p.FolderID == "" {
			t.FolderID = nil
		} else {
			fid := *p.FolderID
			t.FolderID = &fid
		}
	}
	if p.TimeSpentSeconds != nil {
		t.TimeSpentSeconds = *p.TimeSpentSeconds
	}
	if p.StartedAt != nil {
		if *p.StartedAt == "" {
			t.StartedAt = nil
		} else if at, err := timestamp.Parse(*p.StartedAt); err == nil {
			t.StartedAt = &at
		}
	}
	if p.Notified != nil {
		t.Notified = *p.Notified
	}
	if p.ReminderEnabled != nil {
		t.ReminderEnabled = *p.ReminderEnabled
	}
	if p.ReminderMinutes != nil {
		t.ReminderMinutes = *p.ReminderMinutes
	}
}
