// Package commands implements the CLI subcommands for the notifysmoke binary.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dwsmith1983/notifysmoke/internal/config"
	"github.com/dwsmith1983/notifysmoke/internal/provider"
	"github.com/dwsmith1983/notifysmoke/internal/provider/firestore"
	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// GlobalFlags are the persistent flags shared by every subcommand.
type GlobalFlags struct {
	ConfigPath string
	LogFormat  string
	LogLevel   string
	ProjectID  string
	Emulator   string
	Production bool
}

// loadConfig reads the config file and layers the global flags on top.
func loadConfig(g *GlobalFlags) (*types.ProjectConfig, error) {
	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if g.ProjectID != "" {
		cfg.Firestore.ProjectID = g.ProjectID
	}
	if g.Emulator != "" {
		cfg.Firestore.Emulator = g.Emulator
	}
	if g.Production {
		cfg.Firestore.Production = true
	}
	if g.LogFormat != "" {
		cfg.Logging.Format = types.LogFormat(g.LogFormat)
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	config.Finalize(cfg)
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// newProvider creates the Firestore provider from an explicit config.
func newProvider(cfg *types.ProjectConfig, logger *slog.Logger) (provider.Provider, error) {
	prov, err := firestore.New(cfg.Firestore)
	if err != nil {
		return nil, err
	}
	prov.SetLogger(logger)
	return prov, nil
}

// newLogger builds the structured logger; text by default, JSON for log shipping.
func newLogger(cfg types.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == types.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
