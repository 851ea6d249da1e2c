package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"wordsmith/internal/autocomplete"
	"wordsmith/internal/config"
	wserrors "wordsmith/internal/errors"
	"wordsmith/internal/kvstore"
	"wordsmith/internal/seal"
	"wordsmith/internal/slogutil"
)

var (
	engineOnce   sync.Once
	sharedEngine *autocomplete.Engine
	engineErr    error

	logCloser io.Closer
)

// loadConfig reads and validates the configuration under dataDir.
func loadConfig(dataDir string) (*config.Config, error) {
	cfg, err := config.LoadConfig(dataDir)
	if err != nil {
		return nil, wserrors.New(wserrors.ConfigInvalid, "failed to load config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, wserrors.New(wserrors.ConfigInvalid, err.Error(), err)
	}
	return cfg, nil
}

// newLogger builds the process logger. Explicit -v/-q flags win over the
// configured level. A configured log file receives the same records.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slogutil.LevelFromString(cfg.Logging.Level)
	if verbosity > 0 || quiet {
		level = slogutil.LevelFromVerbosity(verbosity, quiet)
	}
	format := slogutil.Format(cfg.Logging.Format)
	logger := slogutil.New(os.Stderr, format, level)
	if cfg.Logging.File == "" {
		return logger
	}

	file, err := slogutil.OpenLogFile(cfg.Logging.File, cfg.Logging.MaxSize, cfg.Logging.MaxBackups)
	if err != nil {
		logger.Warn("Failed to open log file", "path", cfg.Logging.File, "error", err)
		return logger
	}
	logCloser = file
	// The file always records at least info so a quiet CLI still leaves a trail.
	fileLevel := level
	if fileLevel > slog.LevelInfo {
		fileLevel = slog.LevelInfo
	}
	fileLogger := slogutil.New(file, slogutil.JSONFormat, fileLevel)
	return slog.New(slogutil.NewTeeHandler(logger.Handler(), fileLogger.Handler()))
}

func closeLogs() {
	if logCloser != nil {
		_ = logCloser.Close()
	}
}

// openStore opens the configured key-value backend.
func openStore(cfg *config.Config, dataDir string, logger *slog.Logger) (kvstore.Store, error) {
	if cfg.Storage.Backend == "memory" {
		return kvstore.NewMemoryStore(), nil
	}
	dir := cfg.Storage.Path
	if dir == "" {
		dir = config.Dir(dataDir)
	}
	store, err := kvstore.OpenSQLite(dir, logger)
	if err != nil {
		return nil, wserrors.New(wserrors.StorageUnavailable, "failed to open storage", err)
	}
	return store, nil
}

// resolveDictionary turns a relative dictionary path into one under the
// config directory when a file exists there. URLs and absolute paths pass
// through unchanged.
func resolveDictionary(src, dataDir string) string {
	if src == "" || strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") || filepath.IsAbs(src) {
		return src
	}
	candidate := filepath.Join(config.Dir(dataDir), src)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return src
}

// engineSetup selects what getEngine loads.
type engineSetup struct {
	// dictionary loads the configured word list during Start
	dictionary bool
}

// getEngine returns a shared Engine, started and ready for queries.
// The engine is lazily initialized on first use.
func getEngine(ctx context.Context, setup engineSetup) (*autocomplete.Engine, *config.Config, *slog.Logger, error) {
	dataDir := resolveDataDir()
	cfg, err := loadConfig(dataDir)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := newLogger(cfg)

	engineOnce.Do(func() {
		store, err := openStore(cfg, dataDir, logger)
		if err != nil {
			engineErr = err
			return
		}
		sealer, err := seal.New(seal.Scheme(cfg.Crypto.Scheme), cfg.Crypto.Passphrase)
		if err != nil {
			_ = store.Close()
			engineErr = wserrors.New(wserrors.ConfigInvalid, "failed to create sealer", err)
			return
		}

		var source string
		if setup.dictionary {
			source = resolveDictionary(cfg.Dictionary.Source, dataDir)
		}
		engine := autocomplete.New(autocomplete.Options{
			Store:            store,
			Codec:            sealer,
			Threshold:        cfg.Habit.Threshold,
			DictionarySource: source,
			HTTPClient:       &http.Client{Timeout: time.Duration(cfg.Dictionary.TimeoutSeconds) * time.Second},
			Logger:           logger,
		})

		report := engine.Start(ctx)
		logger.Debug("Session started",
			"promoted", len(report.Promoted),
			"dictionaryError", report.DictionaryError,
		)
		sharedEngine = engine
	})

	return sharedEngine, cfg, logger, engineErr
}

// mustGetEngine returns the shared Engine or exits on error.
func mustGetEngine(ctx context.Context, setup engineSetup) (*autocomplete.Engine, *config.Config, *slog.Logger) {
	engine, cfg, logger, err := getEngine(ctx, setup)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing engine: %v\n", err)
		os.Exit(1)
	}
	return engine, cfg, logger
}

// newContext returns a context cancelled on SIGINT or SIGTERM.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
