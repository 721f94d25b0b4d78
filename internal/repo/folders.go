package repo

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	fderrors "github.com/tomadori/focusdeck/internal/errors"
	"github.com/tomadori/focusdeck/internal/model"
)

// Folders returns a snapshot of the folder mirror.
func (s *Service) Folders() []model.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Folder, len(s.folders))
	copy(out, s.folders)
	return out
}

// AddFolder creates a folder, remote-first.
func (s *Service) AddFolder(name, color string) (model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Folder{}, fderrors.ErrEmptyTitle
	}

	userID, _ := s.userID()
	folder := model.Folder{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Color:     color,
		CreatedAt: s.clock.Now().UTC(),
	}

	if s.synced() {
		if err := s.remote.InsertFolder(folder); err != nil {
			return model.Folder{}, fmt.Errorf("add folder: %w", err)
		}
	}

	s.mu.Lock()
	s.folders = append(s.folders, folder)
	s.persistLocked()
	s.mu.Unlock()
	return folder, nil
}

// RemoveFolder deletes the folder and clears the reference on member
// tasks. The tasks themselves always survive.
func (s *Service) RemoveFolder(id string) error {
	if s.synced() {
		if err := s.remote.DeleteFolder(id); err != nil {
			return fmt.Errorf("remove folder: %w", err)
		}
	}

	s.mu.Lock()
	kept := s.folders[:0]
	for _, f := range s.folders {
		if f.ID != id {
			kept = append(kept, f)
		}
	}
	s.folders = kept
	for i := range s.tasks {
		if s.tasks[i].FolderID != nil && *s.tasks[i].FolderID == id {
			s.tasks[i].FolderID = nil
		}
	}
	s.persistLocked()
	s.mu.Unlock()
	return nil
}

// UpdateFolder renames or recolors a folder, remote-first.
func (s *Service) UpdateFolder(id, name, color string) error {
	if s.synced() {
		if err := s.remote.UpdateFolder(id, name, color); err != nil {
			return fmt.Errorf("update folder: %w", err)
		}
	}

	s.mu.Lock()
	for i := range s.folders {
		if s.folders[i].ID == id {
			s.folders[i].Name = name
			s.folders[i].Color = color
			break
		}
	}
	s.persistLocked()
	s.mu.Unlock()
	return nil
}
