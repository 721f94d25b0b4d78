// Package logging configures the process-wide zerolog logger. Output
// goes to a rotating file because the terminal belongs to the TUI.
package logging

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New opens a rotating log file at path and returns a logger writing
// to it. Verbose lowers the level to debug.
func New(path string, verbose bool) (zerolog.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), err
	}

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logger, nil
}

// DefaultLogPath returns ~/.config/focusdeck/focusdeck.log
func DefaultLogPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "focusdeck", "focusdeck.log"), nil
}
