package repo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tomadori/focusdeck/internal/model"
)

// CacheFileName is the fixed name of the local durable cache holding
// the task and folder lists between sessions.
const CacheFileName = "task-storage.json"

type cacheState struct {
	Tasks   []model.Task   `json:"tasks"`
	Folders []model.Folder `json:"folders"`
}

// loadCache rehydrates the mirror from the local cache file. A missing
// file is not an error: first run, or the cache was disabled.
func (s *Service) loadCache() error {
	if s.cachePath == "" {
		return nil
	}

	data, err := os.ReadFile(s.cachePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cache: %w", err)
	}

	var state cacheState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("decode cache: %w", err)
	}

	s.mu.Lock()
	s.tasks = state.Tasks
	s.folders = state.Folders
	s.mu.Unlock()
	return nil
}

// persistLocked writes the mirror to the cache file. Callers hold
// s.mu. Failures are logged, never surfaced: the cache is an
// optimization, not a source of truth.
func (s *Service) persistLocked() {
	if s.cachePath == "" {
		return
	}

	data, err := json.MarshalIndent(cacheState{Tasks: s.tasks, Folders: s.folders}, "", "  ")
	if err != nil {
		s.log.Warn().Err(err).Msg("encode cache")
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.cachePath), 0o755); err != nil {
		s.log.Warn().Err(err).Msg("create cache directory")
		return
	}
	if err := os.WriteFile(s.cachePath, data, 0o644); err != nil {
		s.log.Warn().Err(err).Msg("write cache")
	}
}

// DefaultCachePath returns ~/.config/focusdeck/task-storage.json
func DefaultCachePath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "focusdeck", CacheFileName), nil
}
