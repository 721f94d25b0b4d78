package pomodoro

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomadori/focusdeck/internal/model"
)

// fakeTasks records every TaskSink call in order.
type fakeTasks struct {
	tasks map[string]model.Task

	started     []string
	finished    []string
	incremented []string
	timeSpent   map[string]int64
}

func newFakeTasks(tasks ...model.Task) *fakeTasks {
	f := &fakeTasks{
		tasks:     make(map[string]model.Task),
		timeSpent: make(map[string]int64),
	}
	for _, t := range tasks {
		f.tasks[t.ID] = t
	}
	return f
}

func (f *fakeTasks) Task(id string) (model.Task, bool) {
	t, ok := f.tasks[id]
	return t, ok
}

func (f *fakeTasks) StartTask(id string) error {
	f.started = append(f.started, id)
	return nil
}

func (f *fakeTasks) FinishTask(id string) error {
	f.finished = append(f.finished, id)
	return nil
}

func (f *fakeTasks) IncrementPomodoro(id string) error {
	f.incremented = append(f.incremented, id)
	return nil
}

func (f *fakeTasks) AddTimeSpent(id string, seconds int64) error {
	f.timeSpent[id] += seconds
	return nil
}

type fakeStats struct {
	focusMinutes []int
	pomodoros    []int
}

func (f *fakeStats) IncrementFocusTime(minutes int) error {
	f.focusMinutes = append(f.focusMinutes, minutes)
	return nil
}

func (f *fakeStats) IncrementPomodoros(workMinutes int) error {
	f.pomodoros = append(f.pomodoros, workMinutes)
	return nil
}

func newTestTimer(tasks ...model.Task) (*Timer, *fakeTasks, *fakeStats) {
	ft := newFakeTasks(tasks...)
	fs := &fakeStats{}
	return New(ft, fs, zerolog.Nop()), ft, fs
}

func tickN(t *Timer, n int) []Event {
	var events []Event
	for i := 0; i < n; i++ {
		if ev := t.Tick(); ev != EventNone {
			events = append(events, ev)
		}
	}
	return events
}

// ============================================================
// Defaults and selection
// ============================================================

func TestNewDefaults(t *testing.T) {
	timer, _, _ := newTestTimer()
	st := timer.Snapshot()

	if st.Running || st.Paused || st.Break {
		t.Fatalf("fresh timer should be idle, got %+v", st)
	}
	if st.TimeLeft != DefaultWorkSeconds {
		t.Fatalf("time left = %d, want %d", st.TimeLeft, DefaultWorkSeconds)
	}
	if st.WorkDuration != DefaultWorkSeconds || st.BreakDuration != DefaultBreakSeconds {
		t.Fatalf("durations = %d/%d", st.WorkDuration, st.BreakDuration)
	}
	if st.TaskID != "" {
		t.Fatalf("fresh timer should be standalone, got task %q", st.TaskID)
	}
}

func TestSelectTaskSizesInterval(t *testing.T) {
	timer, _, _ := newTestTimer(model.Task{ID: "t1", Title: "Write report", DurationMinutes: 45})
	timer.SelectTask("t1")

	st := timer.Snapshot()
	if st.TaskID != "t1" {
		t.Fatalf("task = %q, want t1", st.TaskID)
	}
	if st.WorkDuration != 45*60 || st.TimeLeft != 45*60 {
		t.Fatalf("durations = %d/%d, want %d", st.WorkDuration, st.TimeLeft, 45*60)
	}
}

func TestSelectTaskUnknownIgnored(t *testing.T) {
	timer, _, _ := newTestTimer()
	timer.SelectTask("ghost")

	if st := timer.Snapshot(); st.TaskID != "" {
		t.Fatalf("unknown task should not select, got %q", st.TaskID)
	}
}

func TestSelectTaskEmptyDeselects(t *testing.T) {
	timer, _, _ := newTestTimer(model.Task{ID: "t1", DurationMinutes: 45})
	timer.SelectTask("t1")
	timer.SelectTask("")

	st := timer.Snapshot()
	if st.TaskID != "" {
		t.Fatalf("task = %q, want none", st.TaskID)
	}
	if st.WorkDuration != DefaultWorkSeconds {
		t.Fatalf("work duration = %d, want default", st.WorkDuration)
	}
}

func TestSelectTaskWhileRunningIgnored(t *testing.T) {
	timer, _, _ := newTestTimer(model.Task{ID: "t1", DurationMinutes: 45})
	timer.Start()
	timer.SelectTask("t1")

	if st := timer.Snapshot(); st.TaskID != "" {
		t.Fatalf("selection while running should be refused, got %q", st.TaskID)
	}
}

// ============================================================
// Start, pause, tick
// ============================================================

func TestStartOpensTaskSession(t *testing.T) {
	timer, ft, _ := newTestTimer(model.Task{ID: "t1", DurationMinutes: 25})
	timer.SelectTask("t1")
	timer.Start()

	if len(ft.started) != 1 || ft.started[0] != "t1" {
		t.Fatalf("started = %v, want [t1]", ft.started)
	}
	if !timer.Snapshot().Running {
		t.Fatal("timer should be running")
	}
}

func TestStartStandaloneOpensNoSession(t *testing.T) {
	timer, ft, _ := newTestTimer()
	timer.Start()

	if len(ft.started) != 0 {
		t.Fatalf("standalone start should not touch tasks, got %v", ft.started)
	}
}

func TestTickWhileIdle(t *testing.T) {
	timer, _, _ := newTestTimer()
	if ev := timer.Tick(); ev != EventNone {
		t.Fatalf("idle tick = %v, want none", ev)
	}
	if st := timer.Snapshot(); st.TimeLeft != DefaultWorkSeconds {
		t.Fatalf("idle tick must not count down, left = %d", st.TimeLeft)
	}
}

func TestPauseFreezesCountdown(t *testing.T) {
	timer, _, _ := newTestTimer()
	timer.Start()
	tickN(timer, 10)
	timer.Pause()
	tickN(timer, 10)

	if st := timer.Snapshot(); st.TimeLeft != DefaultWorkSeconds-10 {
		t.Fatalf("left = %d, want %d", st.TimeLeft, DefaultWorkSeconds-10)
	}

	timer.Resume()
	tickN(timer, 5)
	if st := timer.Snapshot(); st.TimeLeft != DefaultWorkSeconds-15 {
		t.Fatalf("left after resume = %d, want %d", st.TimeLeft, DefaultWorkSeconds-15)
	}
}

// ============================================================
// Work interval completion
// ============================================================

func TestWorkCompletionAwardsOnce(t *testing.T) {
	timer, ft, fs := newTestTimer(model.Task{ID: "t1", DurationMinutes: 25})
	timer.SelectTask("t1")
	timer.Start()

	events := tickN(timer, DefaultWorkSeconds)
	if len(events) != 1 || events[0] != EventWorkComplete {
		t.Fatalf("events = %v, want exactly one work completion", events)
	}

	if len(fs.focusMinutes) != 1 || fs.focusMinutes[0] != 25 {
		t.Fatalf("focus minutes = %v, want [25]", fs.focusMinutes)
	}
	if len(fs.pomodoros) != 1 || fs.pomodoros[0] != 25 {
		t.Fatalf("pomodoros = %v, want [25]", fs.pomodoros)
	}
	if len(ft.incremented) != 1 || ft.incremented[0] != "t1" {
		t.Fatalf("incremented = %v, want [t1]", ft.incremented)
	}
	if ft.timeSpent["t1"] != int64(DefaultWorkSeconds) {
		t.Fatalf("time spent = %d, want %d", ft.timeSpent["t1"], DefaultWorkSeconds)
	}

	st := timer.Snapshot()
	if !st.Break {
		t.Fatal("timer should be on break after work completion")
	}
	if st.TimeLeft != DefaultBreakSeconds {
		t.Fatalf("break left = %d, want %d", st.TimeLeft, DefaultBreakSeconds)
	}
	if st.TaskID != "t1" {
		t.Fatal("task selection survives into the break")
	}
}

func TestStandaloneWorkCompletionSkipsTaskBookkeeping(t *testing.T) {
	timer, ft, fs := newTestTimer()
	timer.Start()

	tickN(timer, DefaultWorkSeconds)

	if len(fs.focusMinutes) != 1 {
		t.Fatalf("focus increments = %d, want 1", len(fs.focusMinutes))
	}
	if len(ft.incremented) != 0 || len(ft.timeSpent) != 0 {
		t.Fatalf("standalone completion must not touch tasks: %v %v", ft.incremented, ft.timeSpent)
	}
}

func TestBreakCompletionRollsIntoWork(t *testing.T) {
	timer, _, fs := newTestTimer()
	timer.Start()
	tickN(timer, DefaultWorkSeconds)

	events := tickN(timer, DefaultBreakSeconds)
	if len(events) != 1 || events[0] != EventBreakComplete {
		t.Fatalf("events = %v, want exactly one break completion", events)
	}

	st := timer.Snapshot()
	if st.Break {
		t.Fatal("timer should be back in a work phase")
	}
	if st.TimeLeft != DefaultWorkSeconds {
		t.Fatalf("left = %d, want %d", st.TimeLeft, DefaultWorkSeconds)
	}
	if len(fs.focusMinutes) != 1 {
		t.Fatal("break completion must not award stats")
	}
}

// ============================================================
// Skip
// ============================================================

func TestSkipWorkFinalizesTaskWithoutStats(t *testing.T) {
	timer, ft, fs := newTestTimer(model.Task{ID: "t1", DurationMinutes: 25})
	timer.SelectTask("t1")
	timer.Start()
	tickN(timer, 100)
	timer.Skip()

	if len(ft.finished) != 1 || ft.finished[0] != "t1" {
		t.Fatalf("finished = %v, want [t1]", ft.finished)
	}
	if len(ft.incremented) != 1 || ft.incremented[0] != "t1" {
		t.Fatalf("incremented = %v, want [t1]", ft.incremented)
	}
	if len(fs.focusMinutes) != 0 || len(fs.pomodoros) != 0 {
		t.Fatal("skipped work must not award global stats")
	}

	st := timer.Snapshot()
	if !st.Break || st.TimeLeft != DefaultBreakSeconds {
		t.Fatalf("skip should enter a full break, got %+v", st)
	}
}

func TestSkipBreakIsSilent(t *testing.T) {
	timer, ft, fs := newTestTimer(model.Task{ID: "t1", DurationMinutes: 25})
	timer.SelectTask("t1")
	timer.Start()
	tickN(timer, 25*60) // into the break

	ft.finished = nil
	ft.incremented = nil
	timer.Skip()

	if len(ft.finished) != 0 || len(ft.incremented) != 0 {
		t.Fatal("break skip must not touch the task")
	}
	if len(fs.focusMinutes) != 1 {
		t.Fatal("break skip must not award stats")
	}
	st := timer.Snapshot()
	if st.Break || st.TimeLeft != 25*60 {
		t.Fatalf("break skip should restore the work interval, got %+v", st)
	}
}

// ============================================================
// Reset and finish
// ============================================================

func TestResetRestoresDefaults(t *testing.T) {
	timer, ft, _ := newTestTimer(model.Task{ID: "t1", DurationMinutes: 45})
	timer.SelectTask("t1")
	timer.Start()
	tickN(timer, 50)
	timer.Reset()

	if len(ft.finished) != 1 || ft.finished[0] != "t1" {
		t.Fatalf("reset should finalize the session, finished = %v", ft.finished)
	}
	st := timer.Snapshot()
	if st.Running || st.Paused || st.Break || st.TaskID != "" {
		t.Fatalf("reset should return to idle standalone, got %+v", st)
	}
	if st.TimeLeft != DefaultWorkSeconds || st.WorkDuration != DefaultWorkSeconds {
		t.Fatalf("reset should restore defaults, got %d/%d", st.TimeLeft, st.WorkDuration)
	}
}

func TestResetStandalone(t *testing.T) {
	timer, ft, _ := newTestTimer()
	timer.Start()
	tickN(timer, 50)
	timer.Reset()

	if len(ft.finished) != 0 {
		t.Fatalf("standalone reset must not touch tasks, got %v", ft.finished)
	}
	if st := timer.Snapshot(); st.Running || st.TimeLeft != DefaultWorkSeconds {
		t.Fatalf("got %+v", st)
	}
}

func TestFinishClosesSession(t *testing.T) {
	timer, ft, _ := newTestTimer(model.Task{ID: "t1", DurationMinutes: 45})
	timer.SelectTask("t1")
	timer.Start()
	tickN(timer, 30)
	timer.Finish()

	if len(ft.finished) != 1 || ft.finished[0] != "t1" {
		t.Fatalf("finished = %v, want [t1]", ft.finished)
	}
	st := timer.Snapshot()
	if st.Running || st.TaskID != "" || st.TimeLeft != DefaultWorkSeconds {
		t.Fatalf("finish should return to idle defaults, got %+v", st)
	}
}

func TestFinishStandaloneIsNoop(t *testing.T) {
	timer, ft, _ := newTestTimer()
	timer.Start()
	timer.Finish()

	if len(ft.finished) != 0 {
		t.Fatalf("standalone finish must not touch tasks, got %v", ft.finished)
	}
	if !timer.Snapshot().Running {
		t.Fatal("standalone finish must not stop the timer")
	}
}

// ============================================================
// Duration settings
// ============================================================

func TestSetDurationsWhileIdle(t *testing.T) {
	timer, _, _ := newTestTimer()
	timer.SetWorkDuration(50)
	timer.SetBreakDuration(10)

	st := timer.Snapshot()
	if st.WorkDuration != 50*60 || st.TimeLeft != 50*60 {
		t.Fatalf("work = %d left = %d, want %d", st.WorkDuration, st.TimeLeft, 50*60)
	}
	if st.BreakDuration != 10*60 {
		t.Fatalf("break = %d, want %d", st.BreakDuration, 10*60)
	}
}

func TestSetDurationsWhileRunningIgnored(t *testing.T) {
	timer, _, _ := newTestTimer()
	timer.Start()
	timer.SetWorkDuration(50)

	if st := timer.Snapshot(); st.WorkDuration != DefaultWorkSeconds {
		t.Fatalf("running timer should refuse duration change, got %d", st.WorkDuration)
	}
}

func TestSetDurationRejectsNonPositive(t *testing.T) {
	timer, _, _ := newTestTimer()
	timer.SetWorkDuration(0)
	timer.SetBreakDuration(-5)

	st := timer.Snapshot()
	if st.WorkDuration != DefaultWorkSeconds || st.BreakDuration != DefaultBreakSeconds {
		t.Fatalf("non-positive durations should be refused, got %d/%d", st.WorkDuration, st.BreakDuration)
	}
}
