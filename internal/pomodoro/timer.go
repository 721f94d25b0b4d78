// Package pomodoro implements the countdown state machine driving
// work/break cycles. The driver calls Tick once per wall-clock second;
// all phase transitions and their side effects happen on the tick that
// crosses zero. Transitions themselves cannot fail — only the remote
// side effects can, and those never corrupt timer state.
package pomodoro

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomadori/focusdeck/internal/model"
)

const (
	// DefaultWorkSeconds is the classic 25-minute work interval.
	DefaultWorkSeconds = 25 * 60
	// DefaultBreakSeconds is the 5-minute break interval.
	DefaultBreakSeconds = 5 * 60
)

// TaskSink is the task bookkeeping the timer drives.
type TaskSink interface {
	Task(id string) (model.Task, bool)
	StartTask(id string) error
	FinishTask(id string) error
	IncrementPomodoro(id string) error
	AddTimeSpent(id string, seconds int64) error
}

// StatsSink receives the global counters awarded on natural work
// interval completion.
type StatsSink interface {
	IncrementFocusTime(minutes int) error
	IncrementPomodoros(workMinutes int) error
}

// Event reports what a Tick did, so the driver can surface it.
type Event int

const (
	EventNone Event = iota
	// EventWorkComplete fires on the tick that finishes a work
	// interval; the side-effect bundle has already been applied.
	EventWorkComplete
	// EventBreakComplete fires on the tick that finishes a break.
	EventBreakComplete
)

// State is a snapshot of the timer for rendering.
type State struct {
	Running       bool
	Paused        bool
	Break         bool
	TimeLeft      int
	WorkDuration  int
	BreakDuration int
	TaskID        string // "" means a standalone, untasked timer
}

// Timer is the countdown engine. Safe for concurrent use.
type Timer struct {
	tasks TaskSink
	stats StatsSink
	log   zerolog.Logger

	mu            sync.Mutex
	running       bool
	paused        bool
	isBreak       bool
	timeLeft      int
	workDuration  int
	breakDuration int
	taskID        string
}

func New(tasks TaskSink, stats StatsSink, logger zerolog.Logger) *Timer {
	return &Timer{
		tasks:         tasks,
		stats:         stats,
		log:           logger,
		timeLeft:      DefaultWorkSeconds,
		workDuration:  DefaultWorkSeconds,
		breakDuration: DefaultBreakSeconds,
	}
}

// Snapshot returns the current timer state.
func (t *Timer) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{
		Running:       t.running,
		Paused:        t.paused,
		Break:         t.isBreak,
		TimeLeft:      t.timeLeft,
		WorkDuration:  t.workDuration,
		BreakDuration: t.breakDuration,
		TaskID:        t.taskID,
	}
}

// SelectTask attributes the next session to the given task, sizing the
// work interval from the task's duration. An empty id deselects and
// restores the default interval. Selection is only legal while idle.
func (t *Timer) SelectTask(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}

	if id == "" {
		t.taskID = ""
		t.workDuration = DefaultWorkSeconds
		t.timeLeft = DefaultWorkSeconds
		t.paused = false
		t.isBreak = false
		return
	}

	task, ok := t.tasks.Task(id)
	if !ok {
		return
	}
	t.taskID = id
	t.workDuration = task.DurationMinutes * 60
	t.timeLeft = t.workDuration
	t.paused = false
	t.isBreak = false
}

// Start begins a work interval. If a task is selected, its running
// session is opened in the repository.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return
	}

	if t.taskID != "" {
		if err := t.tasks.StartTask(t.taskID); err != nil {
			t.log.Warn().Err(err).Str("task_id", t.taskID).Msg("start task session")
		}
	}
	t.running = true
	t.paused = false
	t.isBreak = false
}

// Pause freezes the countdown without altering timeLeft or phase.
func (t *Timer) Pause() {
	t.mu.Lock()
	t.paused = true
	t.mu.Unlock()
}

// Resume continues a paused countdown.
func (t *Timer) Resume() {
	t.mu.Lock()
	t.paused = false
	t.mu.Unlock()
}

// Tick advances the countdown by one second. On the tick that reaches
// zero from a work phase the completion side effects fire exactly
// once, then the break begins; a finished break rolls straight into
// the next work interval with no side effects.
func (t *Timer) Tick() Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || t.paused || t.timeLeft <= 0 {
		return EventNone
	}

	if t.timeLeft > 1 {
		t.timeLeft--
		return EventNone
	}

	// Last tick of the phase.
	if !t.isBreak {
		t.completeWorkLocked()
		t.isBreak = true
		t.timeLeft = t.breakDuration
		return EventWorkComplete
	}
	t.isBreak = false
	t.timeLeft = t.workDuration
	return EventBreakComplete
}

// completeWorkLocked applies the pomodoro-completion side-effect
// bundle. Each call is an independent remote operation; partial
// failure is logged and accepted, never rolled back.
func (t *Timer) completeWorkLocked() {
	minutes := t.workDuration / 60
	if err := t.stats.IncrementFocusTime(minutes); err != nil {
		t.log.Warn().Err(err).Msg("increment focus time")
	}
	if err := t.stats.IncrementPomodoros(minutes); err != nil {
		t.log.Warn().Err(err).Msg("increment total pomodoros")
	}
	if t.taskID != "" {
		if err := t.tasks.IncrementPomodoro(t.taskID); err != nil {
			t.log.Warn().Err(err).Str("task_id", t.taskID).Msg("increment task pomodoro")
		}
		if err := t.tasks.AddTimeSpent(t.taskID, int64(t.workDuration)); err != nil {
			t.log.Warn().Err(err).Str("task_id", t.taskID).Msg("add task time spent")
		}
	}
}

// Skip forces the phase transition early. Skipping out of a work phase
// finalizes the selected task's elapsed-time bookkeeping but awards no
// global stats: only naturally completed work intervals count.
func (t *Timer) Skip() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isBreak {
		t.isBreak = false
		t.timeLeft = t.workDuration
		return
	}

	if t.taskID != "" {
		if err := t.tasks.FinishTask(t.taskID); err != nil {
			t.log.Warn().Err(err).Str("task_id", t.taskID).Msg("finish task on skip")
		}
		if err := t.tasks.IncrementPomodoro(t.taskID); err != nil {
			t.log.Warn().Err(err).Str("task_id", t.taskID).Msg("increment task pomodoro on skip")
		}
	}
	t.isBreak = true
	t.timeLeft = t.breakDuration
}

// Reset abandons the session from any state. A selected task has its
// elapsed time finalized before the selection is cleared.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.taskID != "" {
		if err := t.tasks.FinishTask(t.taskID); err != nil {
			t.log.Warn().Err(err).Str("task_id", t.taskID).Msg("finish task on reset")
		}
	}
	t.running = false
	t.paused = false
	t.isBreak = false
	t.taskID = ""
	t.workDuration = DefaultWorkSeconds
	t.timeLeft = DefaultWorkSeconds
}

// Finish completes the selected task's session early. A no-op for the
// standalone timer.
func (t *Timer) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.taskID == "" {
		return
	}
	if err := t.tasks.FinishTask(t.taskID); err != nil {
		t.log.Warn().Err(err).Str("task_id", t.taskID).Msg("finish task")
	}
	t.running = false
	t.paused = false
	t.isBreak = false
	t.taskID = ""
	t.workDuration = DefaultWorkSeconds
	t.timeLeft = DefaultWorkSeconds
}

// SetWorkDuration changes the work interval length. Only meaningful
// while idle; the countdown is reset to the new length.
func (t *Timer) SetWorkDuration(minutes int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || minutes < 1 {
		return
	}
	t.workDuration = minutes * 60
	t.timeLeft = t.workDuration
}

// SetBreakDuration changes the break interval length. Only meaningful
// while idle.
func (t *Timer) SetBreakDuration(minutes int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || minutes < 1 {
		return
	}
	t.breakDuration = minutes * 60
}
