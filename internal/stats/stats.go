// Package stats maintains the per-user aggregate counters. Every
// mutation goes through a remote atomic increment first; the local
// mirror only applies the same delta after the remote write succeeds,
// so the mirror can lag the store but never run ahead of it.
package stats

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomadori/focusdeck/internal/clock"
	"github.com/tomadori/focusdeck/internal/model"
)

// Remote is the slice of the backend contract the aggregator needs.
type Remote interface {
	FetchStats(userID string) (model.Stats, error)
	IncrementFocusTime(userID string, minutes int) error
	IncrementCompletedTasks(userID string) error
	IncrementTotalPomodoros(userID string) error
	IncrementStreak(userID string) error
	ResetStreak(userID string) error

	ActivityDate(userID string) (string, error)
	SetActivityDate(userID, date string) error
	LogPomodoro(userID string, completedAt time.Time, minutes int) error
}

// Identity supplies the user the counters belong to.
type Identity interface {
	CurrentUserID() (string, bool)
}

// Aggregator mirrors the remote counters. Without a signed-in user all
// operations are no-ops: stats only exist for an identified user.
type Aggregator struct {
	remote Remote
	ident  Identity
	clock  clock.Clock
	log    zerolog.Logger

	mu      sync.Mutex
	current model.Stats
}

type Config struct {
	Remote   Remote
	Identity Identity
	Clock    clock.Clock
	Logger   zerolog.Logger
}

func New(cfg Config) *Aggregator {
	a := &Aggregator{
		remote: cfg.Remote,
		ident:  cfg.Identity,
		clock:  cfg.Clock,
		log:    cfg.Logger,
	}
	if a.clock == nil {
		a.clock = clock.RealClock{}
	}
	return a
}

// Snapshot returns the mirrored counters.
func (a *Aggregator) Snapshot() model.Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

// Fetch loads the counters from the remote store, creating the row
// lazily on first fetch.
func (a *Aggregator) Fetch() error {
	userID, ok := a.userID()
	if !ok {
		return nil
	}
	st, err := a.remote.FetchStats(userID)
	if err != nil {
		return fmt.Errorf("fetch stats: %w", err)
	}
	a.mu.Lock()
	a.current = st
	a.mu.Unlock()
	return nil
}

// IncrementFocusTime adds completed work minutes to the focus counter.
func (a *Aggregator) IncrementFocusTime(minutes int) error {
	userID, ok := a.userID()
	if !ok {
		return nil
	}
	if err := a.remote.IncrementFocusTime(userID, minutes); err != nil {
		return fmt.Errorf("increment focus time: %w", err)
	}
	a.mu.Lock()
	a.current.FocusTimeMinutes += minutes
	a.mu.Unlock()
	return nil
}

func (a *Aggregator) IncrementCompletedTasks() error {
	userID, ok := a.userID()
	if !ok {
		return nil
	}
	if err := a.remote.IncrementCompletedTasks(userID); err != nil {
		return fmt.Errorf("increment completed tasks: %w", err)
	}
	a.mu.Lock()
	a.current.CompletedTasks++
	a.mu.Unlock()
	return nil
}

// IncrementPomodoros bumps the lifetime pomodoro counter and records
// the completion in the daily activity log.
func (a *Aggregator) IncrementPomodoros(workMinutes int) error {
	userID, ok := a.userID()
	if !ok {
		return nil
	}
	if err := a.remote.IncrementTotalPomodoros(userID); err != nil {
		return fmt.Errorf("increment pomodoros: %w", err)
	}
	a.mu.Lock()
	a.current.TotalPomodoros++
	a.mu.Unlock()

	now := a.clock.Now()
	if err := a.remote.LogPomodoro(userID, now, workMinutes); err != nil {
		a.log.Warn().Err(err).Msg("log pomodoro")
	}
	if err := a.RecordActivity(now); err != nil {
		a.log.Warn().Err(err).Msg("record streak activity")
	}
	return nil
}

func (a *Aggregator) IncrementStreak() error {
	userID, ok := a.userID()
	if !ok {
		return nil
	}
	if err := a.remote.IncrementStreak(userID); err != nil {
		return fmt.Errorf("increment streak: %w", err)
	}
	a.mu.Lock()
	a.current.CurrentStreakDays++
	a.mu.Unlock()
	return nil
}

func (a *Aggregator) ResetStreak() error {
	userID, ok := a.userID()
	if !ok {
		return nil
	}
	if err := a.remote.ResetStreak(userID); err != nil {
		return fmt.Errorf("reset streak: %w", err)
	}
	a.mu.Lock()
	a.current.CurrentStreakDays = 0
	a.mu.Unlock()
	return nil
}

// RecordActivity reconciles the daily streak against the given
// instant. Activity on consecutive calendar days extends the streak;
// a gap resets it before counting today. Repeat activity on the same
// day is a no-op.
func (a *Aggregator) RecordActivity(now time.Time) error {
	userID, ok := a.userID()
	if !ok {
		return nil
	}

	today := now.UTC().Format(time.DateOnly)
	last, err := a.remote.ActivityDate(userID)
	if err != nil {
		return err
	}
	if last == today {
		return nil
	}

	yesterday := now.UTC().AddDate(0, 0, -1).Format(time.DateOnly)
	if last != yesterday && last != "" {
		if err := a.ResetStreak(); err != nil {
			return err
		}
	}
	if err := a.IncrementStreak(); err != nil {
		return err
	}
	return a.remote.SetActivityDate(userID, today)
}

func (a *Aggregator) userID() (string, bool) {
	if a.ident == nil {
		return "", false
	}
	return a.ident.CurrentUserID()
}
