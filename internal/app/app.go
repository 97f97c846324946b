package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/andy/focusclock/internal/clock"
	"github.com/andy/focusclock/internal/config"
	"github.com/andy/focusclock/internal/crypto"
	"github.com/andy/focusclock/internal/db"
	"github.com/andy/focusclock/internal/domain"
	"github.com/andy/focusclock/internal/repository"
	"github.com/andy/focusclock/internal/service"
	"golang.org/x/term"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger
	Clock  clock.Clock

	// Repositories
	SnapshotRepo repository.SnapshotRepository
	SessionRepo  repository.SessionRepository

	// Services
	SessionService service.SessionService

	logFile io.Closer
}

// CountdownOptions customises a countdown opened through the App
type CountdownOptions struct {
	Label string

	// CatchUp enables completion notices for countdowns that expired while the
	// program was not running. The config value applies when false.
	CatchUp bool

	// OnComplete runs after the session has been recorded
	OnComplete service.CompletionFunc
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config
// 2. Opening the log file
// 3. Getting encryption key from keyring
// 4. Opening database and running migrations
// 5. Creating repositories and services
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	logger, logFile, err := NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	keyring := crypto.NewKeyring()

	password, err := keyring.GetKey()
	if err != nil {
		// No key exists, prompt user to set one
		fmt.Println("Setting up database encryption for the first time...")
		password, err = promptForPassword()
		if err != nil {
			closeQuietly(logFile)
			return nil, fmt.Errorf("failed to set password: %w", err)
		}

		if err := keyring.SetKey(password); err != nil {
			closeQuietly(logFile)
			return nil, fmt.Errorf("failed to store encryption key: %w", err)
		}
	}

	database, err := db.Open(cfg.Database.Path, password)
	if err != nil {
		closeQuietly(logFile)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.RunMigrations(); err != nil {
		database.Close()
		closeQuietly(logFile)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	var snapshotRepo repository.SnapshotRepository
	switch cfg.Store.Backend {
	case config.StoreFile:
		snapshotRepo = repository.NewFileSnapshotRepo(cfg.Store.FilePath)
	default:
		snapshotRepo = repository.NewSnapshotRepo(database)
	}
	sessionRepo := repository.NewSessionRepo(database)

	logger.Debug("app initialised",
		slog.String("store", cfg.Store.Backend),
		slog.String("database", cfg.Database.Path),
	)

	return &App{
		Config:         cfg,
		DB:             database,
		Logger:         logger,
		Clock:          clock.Real{},
		SnapshotRepo:   snapshotRepo,
		SessionRepo:    sessionRepo,
		SessionService: service.NewSessionService(sessionRepo),
		logFile:        logFile,
	}, nil
}

// NewLogger builds the structured logger described by cfg. An empty path
// discards all records.
func NewLogger(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Path == "" {
		return slog.New(slog.DiscardHandler), nil, nil
	}

	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, err
	}

	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(handler), f, nil
}

// OpenCountdown builds a countdown engine for the configured default
// duration, wires completion into the session history and restores whatever
// snapshot the store holds.
func (a *App) OpenCountdown(ctx context.Context, opts CountdownOptions) (*service.Countdown, error) {
	onComplete := func(c domain.Completion) {
		a.recordCompletion(c)
		if opts.OnComplete != nil {
			opts.OnComplete(c)
		}
	}

	countdown, err := service.NewCountdown(a.SnapshotRepo,
		int64(a.Config.Timer.DefaultDuration/time.Second),
		service.WithClock(a.Clock),
		service.WithLogger(a.Logger),
		service.WithLabel(opts.Label),
		service.WithCatchUp(opts.CatchUp || a.Config.Timer.CatchUp),
		service.WithOnComplete(onComplete),
	)
	if err != nil {
		return nil, err
	}

	snap, err := a.SnapshotRepo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if err := countdown.Restore(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to restore countdown: %w", err)
	}

	return countdown, nil
}

func (a *App) recordCompletion(c domain.Completion) {
	// The engine may be completing from inside a cancelled request context;
	// history writes get their own short deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := a.SessionService.Record(ctx, c); err != nil {
		a.Logger.Error("failed to record session",
			slog.String("countdown_id", c.CountdownID),
			slog.String("error", err.Error()),
		)
	}
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	var err error
	if a.DB != nil {
		err = a.DB.Close()
	}
	closeQuietly(a.logFile)
	return err
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

// promptForPassword prompts user for a new database password (first run)
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your focus history will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	// Read password securely (no echo)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}
