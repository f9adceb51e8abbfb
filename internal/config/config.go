// Package config handles loading and validation of notifysmoke.yaml project configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// DefaultFile is the config file looked up in the working directory when no
// path is given.
const DefaultFile = "notifysmoke.yaml"

// Environment overrides, applied over the file.
const (
	EnvFirestoreEmulator = "FIRESTORE_EMULATOR_HOST"
	EnvFunctionsEmulator = "FIREBASE_FUNCTIONS_EMULATOR_HOST"
	EnvProjectID         = "FIREBASE_PROJECT_ID"
	EnvUID               = "NOTIFYSMOKE_UID"
	EnvWait              = "NOTIFYSMOKE_WAIT"
	EnvStrict            = "NOTIFYSMOKE_STRICT"
	EnvCredentials       = "GOOGLE_APPLICATION_CREDENTIALS"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load builds the configuration from defaults, the YAML file, a .env file
// beside it, and the process environment, in increasing precedence.
// An empty path falls back to DefaultFile, which may be absent.
func Load(path string) (*types.ProjectConfig, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// No file: defaults plus environment.
	default:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	Finalize(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Defaults returns the configuration used when nothing is set: the local
// emulator suite and the default test user.
func Defaults() *types.ProjectConfig {
	return &types.ProjectConfig{
		Firestore: &types.FirestoreConfig{
			ProjectID:         types.DefaultProjectID,
			Emulator:          types.DefaultEmulatorHost,
			FunctionsEmulator: types.DefaultFunctionsEmulator,
		},
		Smoke: types.SmokeConfig{
			UID:  types.DefaultUID,
			Wait: types.DefaultWait,
		},
		Server:  &types.ServerConfig{Addr: types.DefaultServerAddr},
		Logging: types.LoggingConfig{Format: types.LogFormatText, Level: "info"},
	}
}

// loadDotEnv sets variables from a .env file without overriding ones
// already present in the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *types.ProjectConfig) error {
	if cfg.Firestore == nil {
		cfg.Firestore = &types.FirestoreConfig{}
	}
	if v := os.Getenv(EnvFirestoreEmulator); v != "" {
		cfg.Firestore.Emulator = v
	}
	if v := os.Getenv(EnvFunctionsEmulator); v != "" {
		cfg.Firestore.FunctionsEmulator = v
	}
	if v := os.Getenv(EnvProjectID); v != "" {
		cfg.Firestore.ProjectID = v
	}
	if v := os.Getenv(EnvUID); v != "" {
		cfg.Smoke.UID = v
	}
	if v := os.Getenv(EnvWait); v != "" {
		cfg.Smoke.Wait = v
	}
	if v := os.Getenv(EnvStrict); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvStrict, err)
		}
		cfg.Smoke.Strict = b
	}
	return nil
}

// Finalize fills derived values. It is safe to call again after flags have
// been applied.
func Finalize(cfg *types.ProjectConfig) {
	if cfg.Firestore != nil && cfg.Firestore.Production {
		cfg.Firestore.Emulator = ""
		cfg.Firestore.FunctionsEmulator = ""
	}
	if cfg.Smoke.UID == "" {
		cfg.Smoke.UID = types.DefaultUID
	}
	if cfg.Smoke.Wait == "" {
		cfg.Smoke.Wait = types.DefaultWait
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = types.LogFormatText
	}
	if cfg.Server == nil {
		cfg.Server = &types.ServerConfig{}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = types.DefaultServerAddr
	}
	for i := range cfg.Reports {
		if cfg.Reports[i].Type == types.ReportPubSub && cfg.Reports[i].ProjectID == "" && cfg.Firestore != nil {
			cfg.Reports[i].ProjectID = cfg.Firestore.ProjectID
		}
	}
}

// Validate checks a fully merged configuration.
func Validate(cfg *types.ProjectConfig) error {
	if cfg.Firestore == nil {
		return fmt.Errorf("firestore config is required")
	}
	if err := validate.Struct(cfg.Firestore); err != nil {
		return fmt.Errorf("firestore: %w", err)
	}
	if cfg.Firestore.Production && cfg.Firestore.CredentialsFile == "" && os.Getenv(EnvCredentials) == "" {
		return fmt.Errorf("firestore.credentialsFile or %s is required in production", EnvCredentials)
	}
	if _, err := ParseWait(cfg.Smoke.Wait); err != nil {
		return err
	}
	switch cfg.Logging.Format {
	case types.LogFormatText, types.LogFormatJSON:
	default:
		return fmt.Errorf("unknown logging.format %q", cfg.Logging.Format)
	}
	return nil
}

// ParseWait parses the settle wait, e.g. "3s".
func ParseWait(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing smoke.wait: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("smoke.wait must not be negative")
	}
	return d, nil
}
