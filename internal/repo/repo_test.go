package repo

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	fderrors "github.com/tomadori/focusdeck/internal/errors"
	"github.com/tomadori/focusdeck/internal/model"
)

// fakeRemote is an in-memory Remote with fault injection.
type fakeRemote struct {
	tasks   map[string]model.Task
	folders map[string]model.Folder

	failNext error
	inserted []string
	updated  []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		tasks:   make(map[string]model.Task),
		folders: make(map[string]model.Folder),
	}
}

func (f *fakeRemote) fail() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeRemote) ListTasks(userID string) ([]model.Task, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	var out []model.Task
	for _, t := range f.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeRemote) InsertTask(t model.Task) error {
	if err := f.fail(); err != nil {
		return err
	}
	f.tasks[t.ID] = t
	f.inserted = append(f.inserted, t.ID)
	return nil
}

func (f *fakeRemote) UpdateTask(id string, patch model.TaskPatch) error {
	if err := f.fail(); err != nil {
		return err
	}
	f.updated = append(f.updated, id)
	t := f.tasks[id]
	applyPatch(&t, patch)
	f.tasks[id] = t
	return nil
}

func (f *fakeRemote) DeleteTask(id string) error {
	if err := f.fail(); err != nil {
		return err
	}
	delete(f.tasks, id)
	return nil
}

func (f *fakeRemote) IncrementTaskPomodoro(id string) error {
	if err := f.fail(); err != nil {
		return err
	}
	t := f.tasks[id]
	t.Pomodoros++
	f.tasks[id] = t
	return nil
}

func (f *fakeRemote) AddTaskTimeSpent(id string, seconds int64) error {
	if err := f.fail(); err != nil {
		return err
	}
	t := f.tasks[id]
	t.TimeSpentSeconds += seconds
	f.tasks[id] = t
	return nil
}

func (f *fakeRemote) ListFolders(userID string) ([]model.Folder, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	var out []model.Folder
	for _, fo := range f.folders {
		out = append(out, fo)
	}
	return out, nil
}

func (f *fakeRemote) InsertFolder(fo model.Folder) error {
	if err := f.fail(); err != nil {
		return err
	}
	f.folders[fo.ID] = fo
	return nil
}

func (f *fakeRemote) UpdateFolder(id, name, color string) error {
	if err := f.fail(); err != nil {
		return err
	}
	fo := f.folders[id]
	fo.Name = name
	fo.Color = color
	f.folders[id] = fo
	return nil
}

func (f *fakeRemote) DeleteFolder(id string) error {
	if err := f.fail(); err != nil {
		return err
	}
	delete(f.folders, id)
	return nil
}

func (f *fakeRemote) Subscribe() <-chan struct{} {
	return make(chan struct{})
}

type fixedIdentity struct{ id string }

func (f fixedIdentity) CurrentUserID() (string, bool) {
	return f.id, f.id != ""
}

// stepClock is a mutable fake clock.
type stepClock struct{ now time.Time }

func (c *stepClock) Now() time.Time          { return c.now }
func (c *stepClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type recordingNotifier struct {
	messages []string
	upcoming []model.Task
}

func (n *recordingNotifier) Notify(text string) {
	n.messages = append(n.messages, text)
}

func (n *recordingNotifier) NotifyUpcoming(task model.Task, startsIn time.Duration) {
	n.upcoming = append(n.upcoming, task)
}

func newTestService(t *testing.T) (*Service, *fakeRemote, *stepClock, *recordingNotifier) {
	t.Helper()
	remote := newFakeRemote()
	clk := &stepClock{now: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)}
	notifier := &recordingNotifier{}
	svc := New(Config{
		Remote:   remote,
		Identity: fixedIdentity{id: "u1"},
		Clock:    clk,
		Logger:   zerolog.Nop(),
		Notifier: notifier,
	})
	return svc, remote, clk, notifier
}

// ============================================================
// AddTask
// ============================================================

func TestAddTask(t *testing.T) {
	svc, remote, _, _ := newTestService(t)

	task, err := svc.AddTask(AddTaskParams{Title: "  Write report  ", EstimatedPomodoros: 3, DurationMinutes: 45})
	if err != nil {
		t.Fatal(err)
	}
	if task.Title != "Write report" {
		t.Fatalf("title = %q, want trimmed", task.Title)
	}
	if task.UserID != "u1" {
		t.Fatalf("user = %q", task.UserID)
	}
	if len(svc.Tasks()) != 1 {
		t.Fatal("task should be in the mirror")
	}
	if len(remote.inserted) != 1 || remote.inserted[0] != task.ID {
		t.Fatalf("remote inserts = %v", remote.inserted)
	}
}

func TestAddTaskEmptyTitle(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if _, err := svc.AddTask(AddTaskParams{Title: "   "}); !errors.Is(err, fderrors.ErrEmptyTitle) {
		t.Fatalf("got %v, want ErrEmptyTitle", err)
	}
}

func TestAddTaskDefaults(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	task, err := svc.AddTask(AddTaskParams{Title: "Quick"})
	if err != nil {
		t.Fatal(err)
	}
	if task.EstimatedPomodoros != 1 {
		t.Fatalf("estimated = %d, want 1", task.EstimatedPomodoros)
	}
	if task.DurationMinutes != defaultDurationMinutes {
		t.Fatalf("duration = %d, want %d", task.DurationMinutes, defaultDurationMinutes)
	}
	if task.ReminderMinutes != defaultReminderMinutes {
		t.Fatalf("lead = %d, want %d", task.ReminderMinutes, defaultReminderMinutes)
	}
}

func TestAddTaskBadSchedule(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if _, err := svc.AddTask(AddTaskParams{Title: "X", ScheduledFor: "not a date"}); err == nil {
		t.Fatal("expected error for garbage schedule")
	}
	if len(svc.Tasks()) != 0 {
		t.Fatal("rejected task must not reach the mirror")
	}
}

func TestAddTaskScheduleForms(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	at := time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC)
	forms := []any{at, "2026-03-20T09:00:00Z", at.UnixMilli()}
	for _, form := range forms {
		task, err := svc.AddTask(AddTaskParams{Title: "X", ScheduledFor: form})
		if err != nil {
			t.Fatalf("form %v: %v", form, err)
		}
		if task.ScheduledFor == nil || !task.ScheduledFor.Equal(at) {
			t.Fatalf("form %v: scheduled = %v, want %v", form, task.ScheduledFor, at)
		}
	}
}

func TestAddTaskLocalFirstSurvivesRemoteFailure(t *testing.T) {
	svc, remote, _, _ := newTestService(t)
	remote.failNext = errors.New("store down")

	task, err := svc.AddTask(AddTaskParams{Title: "Offline"})
	if err != nil {
		t.Fatalf("remote failure must be swallowed, got %v", err)
	}
	if _, ok := svc.Task(task.ID); !ok {
		t.Fatal("task must be kept locally")
	}
	if len(remote.tasks) != 0 {
		t.Fatal("remote write should have failed")
	}
}

func TestAddTaskScheduledReminderNotifies(t *testing.T) {
	svc, _, clk, notifier := newTestService(t)

	_, err := svc.AddTask(AddTaskParams{
		Title:           "Standup",
		ScheduledFor:    clk.now.Add(2 * time.Hour),
		ReminderEnabled: true,
		ReminderMinutes: 10,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("messages = %v, want one scheduling note", notifier.messages)
	}
}

// ============================================================
// Toggle, update, remove
// ============================================================

func TestToggleTask(t *testing.T) {
	svc, remote, _, _ := newTestService(t)
	task, _ := svc.AddTask(AddTaskParams{Title: "X"})

	done, err := svc.ToggleTask(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !done {
		t.Fatal("first toggle should complete the task")
	}
	got, _ := svc.Task(task.ID)
	if !got.Completed {
		t.Fatal("mirror should show completed")
	}
	if !remote.tasks[task.ID].Completed {
		t.Fatal("remote should show completed")
	}

	done, err = svc.ToggleTask(task.ID)
	if err != nil || done {
		t.Fatalf("second toggle should uncomplete, got %v/%v", done, err)
	}
}

func TestToggleTaskUnknownID(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	done, err := svc.ToggleTask("ghost")
	if err != nil || done {
		t.Fatalf("unknown id should be a silent no-op, got %v/%v", done, err)
	}
}

func TestToggleTaskRemoteFailureAborts(t *testing.T) {
	svc, remote, _, _ := newTestService(t)
	task, _ := svc.AddTask(AddTaskParams{Title: "X"})

	remote.failNext = errors.New("store down")
	if _, err := svc.ToggleTask(task.ID); err == nil {
		t.Fatal("expected error from failing remote")
	}
	got, _ := svc.Task(task.ID)
	if got.Completed {
		t.Fatal("mirror must not flip past a failed remote write")
	}
}

func TestUpdateTaskClearSchedule(t *testing.T) {
	svc, _, clk, _ := newTestService(t)
	task, _ := svc.AddTask(AddTaskParams{Title: "X", ScheduledFor: clk.now.Add(time.Hour)})

	if err := svc.UpdateTask(task.ID, TaskUpdate{ClearScheduledFor: true}); err != nil {
		t.Fatal(err)
	}
	got, _ := svc.Task(task.ID)
	if got.ScheduledFor != nil {
		t.Fatalf("schedule should be cleared, got %v", got.ScheduledFor)
	}
}

func TestUpdateTaskEmptyIsNoop(t *testing.T) {
	svc, remote, _, _ := newTestService(t)
	task, _ := svc.AddTask(AddTaskParams{Title: "X"})

	if err := svc.UpdateTask(task.ID, TaskUpdate{}); err != nil {
		t.Fatal(err)
	}
	if len(remote.updated) != 0 {
		t.Fatalf("empty update must not reach the remote, got %v", remote.updated)
	}
}

func TestUpdateTaskBadSchedule(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	task, _ := svc.AddTask(AddTaskParams{Title: "X"})

	if err := svc.UpdateTask(task.ID, TaskUpdate{ScheduledFor: "garbage"}); err == nil {
		t.Fatal("expected normalization error")
	}
}

func TestRemoveTask(t *testing.T) {
	svc, remote, _, _ := newTestService(t)
	task, _ := svc.AddTask(AddTaskParams{Title: "X"})

	if err := svc.RemoveTask(task.ID); err != nil {
		t.Fatal(err)
	}
	if len(svc.Tasks()) != 0 {
		t.Fatal("task should be gone from the mirror")
	}
	if len(remote.tasks) != 0 {
		t.Fatal("task should be gone from the remote")
	}
}

func TestRemoveTaskRemoteFailureAborts(t *testing.T) {
	svc, remote, _, _ := newTestService(t)
	task, _ := svc.AddTask(AddTaskParams{Title: "X"})

	remote.failNext = errors.New("store down")
	if err := svc.RemoveTask(task.ID); err == nil {
		t.Fatal("expected error from failing remote")
	}
	if len(svc.Tasks()) != 1 {
		t.Fatal("mirror must keep the task past a failed remote delete")
	}
}

// ============================================================
// Timed sessions
// ============================================================

func TestStartFinishTaskAccruesElapsed(t *testing.T) {
	svc, remote, clk, _ := newTestService(t)
	task, _ := svc.AddTask(AddTaskParams{Title: "X"})

	if err := svc.StartTask(task.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := svc.Task(task.ID)
	if got.StartedAt == nil {
		t.Fatal("start should stamp the session")
	}

	clk.advance(90 * time.Second)
	if err := svc.FinishTask(task.ID); err != nil {
		t.Fatal(err)
	}

	got, _ = svc.Task(task.ID)
	if got.StartedAt != nil {
		t.Fatal("finish should clear the session stamp")
	}
	if got.TimeSpentSeconds != 90 {
		t.Fatalf("time spent = %d, want 90", got.TimeSpentSeconds)
	}
	if remote.tasks[task.ID].TimeSpentSeconds != 90 {
		t.Fatalf("remote time spent = %d, want 90", remote.tasks[task.ID].TimeSpentSeconds)
	}
}

func TestFinishTaskWithoutSessionIsNoop(t *testing.T) {
	svc, _, clk, _ := newTestService(t)
	task, _ := svc.AddTask(AddTaskParams{Title: "X"})

	clk.advance(time.Hour)
	if err := svc.FinishTask(task.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := svc.Task(task.ID)
	if got.TimeSpentSeconds != 0 {
		t.Fatalf("no session means no accrual, got %d", got.TimeSpentSeconds)
	}
}

func TestIncrementPomodoroAndAddTimeSpent(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	task, _ := svc.AddTask(AddTaskParams{Title: "X"})

	if err := svc.IncrementPomodoro(task.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddTimeSpent(task.ID, 1500); err != nil {
		t.Fatal(err)
	}

	got, _ := svc.Task(task.ID)
	if got.Pomodoros != 1 || got.TimeSpentSeconds != 1500 {
		t.Fatalf("got %d/%d", got.Pomodoros, got.TimeSpentSeconds)
	}
}

// ============================================================
// Folders
// ============================================================

func TestAddFolder(t *testing.T) {
	svc, remote, _, _ := newTestService(t)

	folder, err := svc.AddFolder("Work", "#FF0000")
	if err != nil {
		t.Fatal(err)
	}
	if len(svc.Folders()) != 1 {
		t.Fatal("folder should be in the mirror")
	}
	if _, ok := remote.folders[folder.ID]; !ok {
		t.Fatal("folder should be in the remote")
	}
}

func TestAddFolderEmptyName(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if _, err := svc.AddFolder("  ", "#FF0000"); !errors.Is(err, fderrors.ErrEmptyTitle) {
		t.Fatalf("got %v, want ErrEmptyTitle", err)
	}
}

func TestAddFolderRemoteFailureAborts(t *testing.T) {
	svc, remote, _, _ := newTestService(t)
	remote.failNext = errors.New("store down")

	if _, err := svc.AddFolder("Work", "#FF0000"); err == nil {
		t.Fatal("expected error from failing remote")
	}
	if len(svc.Folders()) != 0 {
		t.Fatal("mirror must not gain a folder the remote refused")
	}
}

func TestRemoveFolderOrphansTasks(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	folder, _ := svc.AddFolder("Work", "#FF0000")
	task, _ := svc.AddTask(AddTaskParams{Title: "X", FolderID: folder.ID})

	if err := svc.RemoveFolder(folder.ID); err != nil {
		t.Fatal(err)
	}
	if len(svc.Folders()) != 0 {
		t.Fatal("folder should be gone")
	}
	got, ok := svc.Task(task.ID)
	if !ok {
		t.Fatal("task must survive its folder")
	}
	if got.FolderID != nil {
		t.Fatalf("folder ref should be cleared, got %v", *got.FolderID)
	}
}

// ============================================================
// Reminders
// ============================================================

func TestCheckUpcomingFiresOnce(t *testing.T) {
	svc, _, clk, notifier := newTestService(t)
	task, _ := svc.AddTask(AddTaskParams{
		Title:           "Standup",
		ScheduledFor:    clk.now.Add(10 * time.Minute),
		ReminderEnabled: true,
		ReminderMinutes: 15,
	})
	notifier.messages = nil

	svc.CheckUpcoming()
	if len(notifier.upcoming) != 1 || notifier.upcoming[0].ID != task.ID {
		t.Fatalf("upcoming = %v, want one prompt for the task", notifier.upcoming)
	}

	// The notified flag suppresses repeats.
	svc.CheckUpcoming()
	if len(notifier.upcoming) != 1 {
		t.Fatalf("prompt fired %d times, want once", len(notifier.upcoming))
	}
}

func TestCheckUpcomingOutsideWindow(t *testing.T) {
	svc, _, clk, notifier := newTestService(t)
	if _, err := svc.AddTask(AddTaskParams{
		Title:           "Far off",
		ScheduledFor:    clk.now.Add(2 * time.Hour),
		ReminderEnabled: true,
		ReminderMinutes: 15,
	}); err != nil {
		t.Fatal(err)
	}

	svc.CheckUpcoming()
	if len(notifier.upcoming) != 0 {
		t.Fatalf("task outside its lead window must not prompt, got %v", notifier.upcoming)
	}
}

func TestCheckUpcomingSkipsDisabledAndCompleted(t *testing.T) {
	svc, _, clk, notifier := newTestService(t)

	if _, err := svc.AddTask(AddTaskParams{
		Title:        "No reminder",
		ScheduledFor: clk.now.Add(10 * time.Minute),
	}); err != nil {
		t.Fatal(err)
	}
	done, _ := svc.AddTask(AddTaskParams{
		Title:           "Already done",
		ScheduledFor:    clk.now.Add(10 * time.Minute),
		ReminderEnabled: true,
	})
	if _, err := svc.ToggleTask(done.ID); err != nil {
		t.Fatal(err)
	}

	svc.CheckUpcoming()
	if len(notifier.upcoming) != 0 {
		t.Fatalf("got %v, want no prompts", notifier.upcoming)
	}
}

// ============================================================
// Cache and refresh
// ============================================================

func TestCacheRoundTrip(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), CacheFileName)
	remote := newFakeRemote()
	clk := &stepClock{now: time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)}

	svc := New(Config{
		Remote:    remote,
		Identity:  fixedIdentity{id: "u1"},
		Clock:     clk,
		Logger:    zerolog.Nop(),
		CachePath: cachePath,
	})
	task, err := svc.AddTask(AddTaskParams{Title: "Persisted"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddFolder("Work", "#FF0000"); err != nil {
		t.Fatal(err)
	}

	fresh := New(Config{
		Identity:  fixedIdentity{id: "u1"},
		Clock:     clk,
		Logger:    zerolog.Nop(),
		CachePath: cachePath,
	})
	if err := fresh.loadCache(); err != nil {
		t.Fatal(err)
	}

	got, ok := fresh.Task(task.ID)
	if !ok || got.Title != "Persisted" {
		t.Fatalf("rehydrated task = %+v ok = %v", got, ok)
	}
	if len(fresh.Folders()) != 1 {
		t.Fatal("folders should rehydrate too")
	}
}

func TestLoadCacheMissingFile(t *testing.T) {
	svc := New(Config{
		Logger:    zerolog.Nop(),
		CachePath: filepath.Join(t.TempDir(), CacheFileName),
	})
	if err := svc.loadCache(); err != nil {
		t.Fatalf("missing cache file is not an error, got %v", err)
	}
}

func TestRefreshReplacesMirror(t *testing.T) {
	svc, remote, clk, _ := newTestService(t)

	remote.tasks["r1"] = model.Task{ID: "r1", UserID: "u1", Title: "From remote", CreatedAt: clk.now}
	remote.folders["f1"] = model.Folder{ID: "f1", UserID: "u1", Name: "Remote folder", CreatedAt: clk.now}

	if err := svc.Refresh(); err != nil {
		t.Fatal(err)
	}
	if _, ok := svc.Task("r1"); !ok {
		t.Fatal("refresh should adopt remote tasks")
	}
	if len(svc.Folders()) != 1 {
		t.Fatal("refresh should adopt remote folders")
	}
}

func TestRefreshSignedOutIsNoop(t *testing.T) {
	remote := newFakeRemote()
	remote.tasks["r1"] = model.Task{ID: "r1", Title: "X"}
	svc := New(Config{Remote: remote, Identity: fixedIdentity{}, Logger: zerolog.Nop()})

	if err := svc.Refresh(); err != nil {
		t.Fatal(err)
	}
	if len(svc.Tasks()) != 0 {
		t.Fatal("signed-out refresh must not touch the mirror")
	}
}
