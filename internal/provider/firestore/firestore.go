// Package firestore implements the Provider interface on Cloud Firestore through the Firebase Admin SDK.
package firestore

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/dwsmith1983/notifysmoke/internal/provider"
	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// Compile-time interface satisfaction check.
var _ provider.Provider = (*FirestoreProvider)(nil)

// Emulator environment variables read by the Google client libraries.
const (
	envFirestoreEmulator = "FIRESTORE_EMULATOR_HOST"
	envFunctionsEmulator = "FIREBASE_FUNCTIONS_EMULATOR_HOST"
)

// FirestoreProvider implements the Provider interface backed by Firestore.
type FirestoreProvider struct {
	cfg    types.FirestoreConfig
	app    *firebase.App
	client *firestore.Client
	logger *slog.Logger
}

// New creates a new FirestoreProvider. The client is not dialed until Start.
func New(cfg *types.FirestoreConfig) (*FirestoreProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("firestore config is required")
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firestore projectId is required")
	}
	return &FirestoreProvider{
		cfg:    *cfg,
		logger: slog.Default(),
	}, nil
}

// SetLogger overrides the default logger.
func (p *FirestoreProvider) SetLogger(l *slog.Logger) {
	if l != nil {
		p.logger = l
	}
}

// Start applies the emulator settings and then builds the Firebase app and
// Firestore client. The Google libraries read the emulator hosts from the
// environment at client construction, so the order here matters.
func (p *FirestoreProvider) Start(ctx context.Context) error {
	if p.client != nil {
		return nil
	}
	if err := applyEmulatorEnv(&p.cfg); err != nil {
		return err
	}

	var opts []option.ClientOption
	if p.cfg.CredentialsFile != "" && (p.cfg.Production || !p.cfg.UsesEmulator()) {
		opts = append(opts, option.WithCredentialsFile(p.cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: p.cfg.ProjectID}, opts...)
	if err != nil {
		return fmt.Errorf("initializing Firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("creating Firestore client: %w", err)
	}

	p.app = app
	p.client = client
	p.logger.Debug("firestore client ready",
		"projectId", p.cfg.ProjectID,
		"emulator", p.cfg.Emulator,
	)
	return nil
}

// Stop closes the Firestore client. Calling Stop on a provider that was never
// started is a no-op.
func (p *FirestoreProvider) Stop(_ context.Context) error {
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	p.app = nil
	return err
}

// Ping checks connectivity by reading a non-existent document.
func (p *FirestoreProvider) Ping(ctx context.Context) error {
	if p.client == nil {
		return fmt.Errorf("firestore client not started")
	}
	_, err := p.client.Collection(types.SightingsCollection).Doc("__ping__").Get(ctx)
	// NotFound is fine — it means connectivity works.
	if isNotFound(err) {
		return nil
	}
	return err
}

// applyEmulatorEnv makes the process environment match cfg. A host left
// over from the shell or a .env file would otherwise route a production
// client to the emulator and drop its credentials.
func applyEmulatorEnv(cfg *types.FirestoreConfig) error {
	firestoreHost, functionsHost := cfg.Emulator, cfg.FunctionsEmulator
	if cfg.Production {
		firestoreHost, functionsHost = "", ""
	}
	if err := setEnv(envFirestoreEmulator, firestoreHost); err != nil {
		return err
	}
	return setEnv(envFunctionsEmulator, functionsHost)
}

func setEnv(key, value string) error {
	if value == "" {
		if err := os.Unsetenv(key); err != nil {
			return fmt.Errorf("unsetting %s: %w", key, err)
		}
		return nil
	}
	if err := os.Setenv(key, value); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}
