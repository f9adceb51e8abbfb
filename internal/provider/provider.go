// Package provider defines the document store interface used by notifysmoke.
package provider

import (
	"context"

	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// Provider is the document store a smoke run talks to. The Firestore
// implementation is the only production backend; tests use testutil.MockProvider.
type Provider interface {
	// Stimulus: users/{uid}/sightings/{sightingID}
	PutUserSighting(ctx context.Context, uid, sightingID string, sighting types.Sighting) error

	// Derived documents written by the trigger functions. A missing document
	// is returned with Exists=false and a nil error.
	GetMirror(ctx context.Context, sightingID string) (*types.Document, error)
	GetAlert(ctx context.Context, sightingID string) (*types.Document, error)

	// Lifecycle
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Ping(ctx context.Context) error
}
