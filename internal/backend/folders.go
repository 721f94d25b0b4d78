package backend

import (
	"fmt"
	"time"

	"github.com/tomadori/focusdeck/internal/model"
)

func (s *Store) InsertFolder(f model.Folder) error {
	_, err := s.db.Exec(
		`INSERT INTO folders (id, user_id, name, color, created_at) VALUES (?, ?, ?, ?, ?)`,
		f.ID, f.UserID, f.Name, f.Color, f.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert folder: %w", err)
	}
	return nil
}

// ListFolders returns the user's folders, oldest first.
func (s *Store) ListFolders(userID string) ([]model.Folder, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, name, color, created_at FROM folders WHERE user_id = ? ORDER BY created_at, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []model.Folder
	for rows.Next() {
		var f model.Folder
		var createdAt string
		if err := rows.Scan(&f.ID, &f.UserID, &f.Name, &f.Color, &createdAt); err != nil {
			return nil, err
		}
		f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

func (s *Store) UpdateFolder(id, name, color string) error {
	_, err := s.db.Exec(`UPDATE folders SET name = ?, color = ? WHERE id = ?`, name, color, id)
	if err != nil {
		return fmt.Errorf("update folder %s: %w", id, err)
	}
	return nil
}

// DeleteFolder removes the folder and clears the reference on member
// tasks. Tasks are never deleted with their folder.
func (s *Store) DeleteFolder(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("delete folder %s: %w", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE tasks SET folder_id = NULL WHERE folder_id = ?`, id); err != nil {
		return fmt.Errorf("orphan folder tasks: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM folders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete folder %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete folder %s: %w", id, err)
	}
	s.notifyTasksChanged()
	return nil
}
