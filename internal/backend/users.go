package backend

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	fderrors "github.com/tomadori/focusdeck/internal/errors"
	"github.com/tomadori/focusdeck/internal/model"
)

func (s *Store) CreateUser(u model.User) error {
	_, err := s.db.Exec(
		`INSERT INTO users (id, email, display_name, avatar_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.DisplayName, u.AvatarID, u.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("create user: %w", fderrors.ErrEmailTaken)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(id string) (*model.User, error) {
	return s.getUser(`SELECT id, email, display_name, avatar_id, created_at FROM users WHERE id = ?`, id)
}

func (s *Store) GetUserByEmail(email string) (*model.User, error) {
	return s.getUser(`SELECT id, email, display_name, avatar_id, created_at FROM users WHERE email = ?`, email)
}

func (s *Store) getUser(query, arg string) (*model.User, error) {
	u := &model.User{}
	var createdAt string
	err := s.db.QueryRow(query, arg).Scan(&u.ID, &u.Email, &u.DisplayName, &u.AvatarID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fderrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return u, nil
}

func (s *Store) UpdateUserProfile(id, displayName, avatarID string) error {
	_, err := s.db.Exec(
		`UPDATE users SET display_name = ?, avatar_id = ? WHERE id = ?`,
		displayName, avatarID, id,
	)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return nil
}
