package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// PutUserSighting writes the sighting under the user's sub-collection,
// replacing any existing document with the same id.
func (p *FirestoreProvider) PutUserSighting(ctx context.Context, uid, sightingID string, sighting types.Sighting) error {
	if p.client == nil {
		return fmt.Errorf("firestore client not started")
	}
	if _, err := p.userSightingRef(uid, sightingID).Set(ctx, sighting); err != nil {
		return fmt.Errorf("writing %s: %w", types.UserSightingPath(uid, sightingID), err)
	}
	return nil
}

// GetMirror reads the global copy of a sighting.
func (p *FirestoreProvider) GetMirror(ctx context.Context, sightingID string) (*types.Document, error) {
	if p.client == nil {
		return nil, fmt.Errorf("firestore client not started")
	}
	return p.getDocument(ctx, p.mirrorRef(sightingID), types.MirrorPath(sightingID))
}

// GetAlert reads the alert generated for a sighting.
func (p *FirestoreProvider) GetAlert(ctx context.Context, sightingID string) (*types.Document, error) {
	if p.client == nil {
		return nil, fmt.Errorf("firestore client not started")
	}
	return p.getDocument(ctx, p.alertRef(sightingID), types.AlertPath(sightingID))
}

func (p *FirestoreProvider) getDocument(ctx context.Context, ref *firestore.DocumentRef, path string) (*types.Document, error) {
	snap, err := ref.Get(ctx)
	if isNotFound(err) {
		return &types.Document{Path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &types.Document{
		Path:   path,
		Exists: snap.Exists(),
		Data:   snap.Data(),
	}, nil
}
