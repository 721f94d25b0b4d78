// Package repo owns the canonical in-memory task and folder lists and
// mediates every mutation through the remote backend. Reads are served
// from the mirror and never block; writes follow per-operation
// policies: task creation is local-first with best-effort remote sync,
// everything that touches shared counters is remote-first.
package repo

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomadori/focusdeck/internal/clock"
	"github.com/tomadori/focusdeck/internal/model"
)

// Remote is the slice of the backend contract the repository needs.
type Remote interface {
	ListTasks(userID string) ([]model.Task, error)
	InsertTask(t model.Task) error
	UpdateTask(id string, patch model.TaskPatch) error
	DeleteTask(id string) error
	IncrementTaskPomodoro(id string) error
	AddTaskTimeSpent(id string, seconds int64) error

	ListFolders(userID string) ([]model.Folder, error)
	InsertFolder(f model.Folder) error
	UpdateFolder(id, name, color string) error
	DeleteFolder(id string) error

	Subscribe() <-chan struct{}
}

// Identity supplies the user id remote reads and writes are scoped by.
// When no user is signed in the repository degrades to local-only
// operation: mutations apply to the mirror and the cache, nothing is
// synced.
type Identity interface {
	CurrentUserID() (string, bool)
}

// Notifier receives user-facing prompts raised by the repository.
type Notifier interface {
	// Notify shows a transient informational message.
	Notify(text string)
	// NotifyUpcoming shows a dismissible "starting soon" prompt that
	// offers starting the task immediately.
	NotifyUpcoming(task model.Task, startsIn time.Duration)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string)                            {}
func (nopNotifier) NotifyUpcoming(model.Task, time.Duration) {}

// reminderInterval is how often scheduled tasks are scanned.
const reminderInterval = 60 * time.Second

// Config carries the repository's collaborators. Zero-value optional
// fields get safe defaults.
type Config struct {
	Remote    Remote
	Identity  Identity
	Clock     clock.Clock
	Logger    zerolog.Logger
	Notifier  Notifier
	CachePath string // "" disables the local durable cache
}

// Service is the task repository. All exported methods are safe for
// concurrent use.
type Service struct {
	remote    Remote
	ident     Identity
	clock     clock.Clock
	log       zerolog.Logger
	notifier  Notifier
	cachePath string

	mu      sync.Mutex
	tasks   []model.Task
	folders []model.Folder

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(cfg Config) *Service {
	s := &Service{
		remote:    cfg.Remote,
		ident:     cfg.Identity,
		clock:     cfg.Clock,
		log:       cfg.Logger,
		notifier:  cfg.Notifier,
		cachePath: cfg.CachePath,
		stopCh:    make(chan struct{}),
	}
	if s.clock == nil {
		s.clock = clock.RealClock{}
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	return s
}

// Start rehydrates the mirror from the local cache, kicks off a
// background refresh from the remote store, and launches the reminder
// scanner and the change-notification listener.
func (s *Service) Start(ctx context.Context) {
	if err := s.loadCache(); err != nil {
		s.log.Warn().Err(err).Msg("rehydrate cache")
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Refresh(); err != nil {
			s.log.Warn().Err(err).Msg("initial refresh")
		}
	}()

	s.wg.Add(1)
	go s.reminderLoop(ctx)

	if s.remote != nil {
		s.wg.Add(1)
		go s.watchChanges(ctx)
	}
}

// Stop terminates the background loops and waits for them.
func (s *Service) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

func (s *Service) reminderLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(reminderInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.CheckUpcoming()
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		}
	}
}

// watchChanges triggers a full re-fetch whenever the backend reports a
// change to the tasks collection. A re-fetch that races a local edit is
// last-write-wins on the mirror; see DESIGN.md.
func (s *Service) watchChanges(ctx context.Context) {
	defer s.wg.Done()
	ch := s.remote.Subscribe()
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
			if err := s.Refresh(); err != nil {
				s.log.Warn().Err(err).Msg("refresh on change notification")
			}
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		}
	}
}

// Refresh replaces the mirror with the remote state. A no-op without a
// signed-in user: the local mirror is all there is.
func (s *Service) Refresh() error {
	userID, ok := s.userID()
	if !ok || s.remote == nil {
		return nil
	}

	tasks, err := s.remote.ListTasks(userID)
	if err != nil {
		return err
	}
	folders, err := s.remote.ListFolders(userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.tasks = tasks
	s.folders = folders
	s.persistLocked()
	s.mu.Unlock()
	return nil
}

func (s *Service) userID() (string, bool) {
	if s.ident == nil {
		return "", false
	}
	return s.ident.CurrentUserID()
}

func (s *Service) synced() bool {
	_, ok := s.userID()
	return ok && s.remote != nil
}
