package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tomadori/focusdeck/internal/auth"
	"github.com/tomadori/focusdeck/internal/backend"
	"github.com/tomadori/focusdeck/internal/logging"
	"github.com/tomadori/focusdeck/internal/pomodoro"
	"github.com/tomadori/focusdeck/internal/repo"
	"github.com/tomadori/focusdeck/internal/stats"
	"github.com/tomadori/focusdeck/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		dbPath  = flag.String("db", "", "path to the database file")
		logPath = flag.String("log", "", "path to the log file")
		verbose = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	if *dbPath == "" {
		p, err := backend.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		*dbPath = p
	}
	if *logPath == "" {
		p, err := logging.DefaultLogPath()
		if err != nil {
			return fmt.Errorf("resolve log path: %w", err)
		}
		*logPath = p
	}

	logger, err := logging.New(*logPath, *verbose)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	store, err := backend.New(*dbPath, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	authSvc := auth.New(auth.Config{Remote: store, Logger: logger})

	cachePath, err := repo.DefaultCachePath()
	if err != nil {
		logger.Warn().Err(err).Msg("resolve cache path, cache disabled")
		cachePath = ""
	}

	notifier := tui.NewNotifier()
	repoSvc := repo.New(repo.Config{
		Remote:    store,
		Identity:  authSvc,
		Logger:    logger,
		Notifier:  notifier,
		CachePath: cachePath,
	})
	statsSvc := stats.New(stats.Config{Remote: store, Identity: authSvc, Logger: logger})
	timer := pomodoro.New(repoSvc, statsSvc, logger)

	app := tui.NewApp(tui.Config{
		Repo:    repoSvc,
		Stats:   statsSvc,
		Timer:   timer,
		Auth:    authSvc,
		Backend: store,
		Logger:  logger,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	notifier.SetProgram(p)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repoSvc.Start(ctx)
	defer repoSvc.Stop()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
