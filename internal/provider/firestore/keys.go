package firestore

import (
	"cloud.google.com/go/firestore"

	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

// userSightingRef returns users/{uid}/sightings/{sightingID}.
func (p *FirestoreProvider) userSightingRef(uid, sightingID string) *firestore.DocumentRef {
	return p.client.Collection(types.UsersCollection).Doc(uid).
		Collection(types.SightingsCollection).Doc(sightingID)
}

// mirrorRef returns sightings/{sightingID}.
func (p *FirestoreProvider) mirrorRef(sightingID string) *firestore.DocumentRef {
	return p.client.Collection(types.SightingsCollection).Doc(sightingID)
}

// alertRef returns alerts/{sightingID}.
func (p *FirestoreProvider) alertRef(sightingID string) *firestore.DocumentRef {
	return p.client.Collection(types.AlertsCollection).Doc(sightingID)
}
