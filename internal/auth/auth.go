// Package auth tracks the signed-in user. Accounts are local rows in
// the backing store keyed by email; there are no passwords, the tool
// trusts whoever owns the machine. The signed-in user scopes every
// task, folder and stats operation.
package auth

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomadori/focusdeck/internal/clock"
	fderrors "github.com/tomadori/focusdeck/internal/errors"
	"github.com/tomadori/focusdeck/internal/model"
)

// Avatars is the selectable avatar set.
var Avatars = []string{"earth", "mars", "jupiter"}

// DefaultAvatar is assigned at sign-up.
const DefaultAvatar = "earth"

// Remote is the slice of the backend contract the auth service needs.
type Remote interface {
	CreateUser(u model.User) error
	GetUserByEmail(email string) (*model.User, error)
	UpdateUserProfile(id, displayName, avatarID string) error
}

// Service holds the current session. Safe for concurrent use.
type Service struct {
	remote Remote
	clock  clock.Clock
	log    zerolog.Logger

	mu      sync.Mutex
	current *model.User
}

type Config struct {
	Remote Remote
	Clock  clock.Clock
	Logger zerolog.Logger
}

func New(cfg Config) *Service {
	s := &Service{
		remote: cfg.Remote,
		clock:  cfg.Clock,
		log:    cfg.Logger,
	}
	if s.clock == nil {
		s.clock = clock.RealClock{}
	}
	return s
}

// SignUp creates an account and signs it in. The email must not be in
// use; the display name falls back to the email's local part.
func (s *Service) SignUp(email, displayName string) (model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return model.User{}, fmt.Errorf("sign up: %w", fderrors.ErrEmptyTitle)
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName, _, _ = strings.Cut(email, "@")
	}

	u := model.User{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: displayName,
		AvatarID:    DefaultAvatar,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.remote.CreateUser(u); err != nil {
		return model.User{}, fmt.Errorf("sign up: %w", err)
	}

	s.mu.Lock()
	s.current = &u
	s.mu.Unlock()
	s.log.Info().Str("user_id", u.ID).Msg("signed up")
	return u, nil
}

// SignIn opens a session for an existing account.
func (s *Service) SignIn(email string) (model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.remote.GetUserByEmail(email)
	if err != nil {
		return model.User{}, fmt.Errorf("sign in: %w", err)
	}

	s.mu.Lock()
	s.current = u
	s.mu.Unlock()
	s.log.Info().Str("user_id", u.ID).Msg("signed in")
	return *u, nil
}

// SignOut drops the session.
func (s *Service) SignOut() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Current returns the signed-in user, if any.
func (s *Service) Current() (model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return model.User{}, false
	}
	return *s.current, true
}

// CurrentUserID implements the identity contract the repository and
// stats services consume.
func (s *Service) CurrentUserID() (string, bool) {
	u, ok := s.Current()
	return u.ID, ok
}

// UpdateProfile changes the signed-in user's display name and avatar.
func (s *Service) UpdateProfile(displayName, avatarID string) error {
	if !validAvatar(avatarID) {
		return fmt.Errorf("update profile: %w", fderrors.ErrUnknownAvatar)
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return fmt.Errorf("update profile: %w", fderrors.ErrEmptyTitle)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return fmt.Errorf("update profile: %w", fderrors.ErrNotSignedIn)
	}
	if err := s.remote.UpdateUserProfile(s.current.ID, displayName, avatarID); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	s.current.DisplayName = displayName
	s.current.AvatarID = avatarID
	return nil
}

func validAvatar(id string) bool {
	for _, a := range Avatars {
		if a == id {
			return true
		}
	}
	return false
}
