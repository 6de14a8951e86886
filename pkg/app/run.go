// Package app provides the shared entry point of the relaybot binary.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/flemzord/relaybot/internal/config"
	"github.com/flemzord/relaybot/internal/core"
	"github.com/flemzord/relaybot/internal/security"
	"github.com/flemzord/relaybot/internal/telemetry"
	"github.com/joho/godotenv"
)

const telemetryShutdownTimeout = 5 * time.Second

// RunParams configures the main application loop.
type RunParams struct {
	// ConfigPath is an explicit path to the YAML configuration file.
	// If empty, ResolveConfigPath is called automatically.
	ConfigPath string

	// Version, Commit, and Date are injected at build time via ldflags.
	Version string
	Commit  string
	Date    string

	// DataDir overrides the default persistent data directory.
	DataDir string

	// LogLevel sets the minimum log level. Defaults to slog.LevelInfo.
	LogLevel slog.Level

	// LogOutput receives the logs. Defaults to os.Stderr.
	LogOutput io.Writer

	// EnvFile is loaded before the configuration. Defaults to ".env";
	// a missing file is not an error.
	EnvFile string
}

// NewLogger returns the text logger used by every command. When r is
// non-nil, messages and attributes are passed through it.
func NewLogger(w io.Writer, level slog.Level, r *security.Redactor) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	var h slog.Handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	if r != nil {
		h = security.NewHandler(h, r)
	}
	return slog.New(h)
}

// Run starts the relay and blocks until SIGINT or SIGTERM.
func Run(params RunParams) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return RunContext(ctx, params)
}

// RunContext loads the configuration, starts every module and the relay,
// and blocks until ctx is done. Modules are then stopped in reverse order.
func RunContext(ctx context.Context, params RunParams) error {
	redactor := security.NewRedactor()
	logger := NewLogger(params.LogOutput, params.LogLevel, redactor)

	envFile := params.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
	} else {
		logger.Info("environment loaded", "path", envFile)
	}

	cfgPath := params.ConfigPath
	if cfgPath == "" {
		resolved, err := ResolveConfigPath()
		if err != nil {
			return err
		}
		cfgPath = resolved
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry, params.Version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	dataDir := params.DataDir
	if dataDir == "" {
		dataDir = DefaultDataDir()
	}
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	appCtx := core.NewAppContext(logger, dataDir)
	appCtx = appCtx.WithModuleConfigs(cfg.Modules)
	appCtx.RegisterService("config.path", cfgPath)
	appCtx.RegisterService(security.ServiceName, redactor)

	application := core.NewApp(appCtx)
	ids := config.Resolve(cfg)
	if err := application.LoadModules(ids); err != nil {
		return err
	}

	// Wire the relay between LoadModules and Start: discover transports,
	// build the engine and its ingress, and point every transport at it.
	if _, err := wireRelay(application, appCtx, ids, cfg.Relay, logger); err != nil {
		application.Stop()
		return err
	}

	if err := application.Start(); err != nil {
		return err
	}
	logger.Info("relaybot started",
		"version", params.Version,
		"config", cfgPath,
		"data_dir", dataDir,
	)

	<-ctx.Done()
	logger.Info("shutdown requested")
	application.Stop()
	logger.Info("shutdown complete")
	return nil
}

// ResolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/relaybot/relaybot.yaml → ~/.config/relaybot/relaybot.yaml → ./relaybot.yaml
func ResolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "relaybot", "relaybot.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "relaybot", "relaybot.yaml"))
	}

	candidates = append(candidates, "relaybot.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}

// DefaultDataDir returns the default persistent data directory.
// Uses $XDG_DATA_HOME/relaybot if set, otherwise ~/.local/share/relaybot.
func DefaultDataDir() string {
	if dir, ok := os.LookupEnv("XDG_DATA_HOME"); ok {
		return filepath.Join(dir, "relaybot")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "relaybot")
}
