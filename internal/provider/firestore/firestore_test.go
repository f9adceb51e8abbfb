//go:build integration

package firestore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwsmith1983/notifysmoke/internal/testutil"
	"github.com/dwsmith1983/notifysmoke/pkg/types"
)

func setupTestProvider(t *testing.T) *FirestoreProvider {
	t.Helper()
	host := testutil.RequireEmulator(t)

	prov, err := New(&types.FirestoreConfig{
		ProjectID: testutil.EmulatorProjectID,
		Emulator:  host,
	})
	require.NoError(t, err)
	require.NoError(t, prov.Start(context.Background()))
	t.Cleanup(func() {
		_ = prov.Stop(context.Background())
	})
	return prov
}

func TestPutUserSighting_RoundTrip(t *testing.T) {
	prov := setupTestProvider(t)
	ctx := context.Background()
	id := fmt.Sprintf("%d", time.Now().UnixMilli())

	s := testutil.NewSighting(time.Now())
	require.NoError(t, prov.PutUserSighting(ctx, "it_user", id, s))

	snap, err := prov.userSightingRef("it_user", id).Get(ctx)
	require.NoError(t, err)
	data := snap.Data()
	assert.Equal(t, "parkingEnforcer", data["type"])
	assert.Equal(t, int64(1), data["occurrences"])
	assert.Equal(t, "active", data["status"])

	created, ok := data["createdAt"].(time.Time)
	require.True(t, ok, "createdAt should be a server timestamp")
	assert.False(t, created.IsZero())
}

func TestGetMirrorAndAlert_Missing(t *testing.T) {
	prov := setupTestProvider(t)
	ctx := context.Background()
	id := fmt.Sprintf("missing-%d", time.Now().UnixNano())

	mirror, err := prov.GetMirror(ctx, id)
	require.NoError(t, err)
	assert.False(t, mirror.Exists)
	assert.Equal(t, "sightings/"+id, mirror.Path)

	alert, err := prov.GetAlert(ctx, id)
	require.NoError(t, err)
	assert.False(t, alert.Exists)
	assert.Equal(t, "alerts/"+id, alert.Path)
}

func TestGetAlert_Present(t *testing.T) {
	prov := setupTestProvider(t)
	ctx := context.Background()
	id := fmt.Sprintf("alert-%d", time.Now().UnixNano())

	_, err := prov.alertRef(id).Set(ctx, map[string]interface{}{
		"title":  "Parking enforcer nearby",
		"active": true,
		"type":   "parkingEnforcer",
		"status": "active",
	})
	require.NoError(t, err)

	doc, err := prov.GetAlert(ctx, id)
	require.NoError(t, err)
	require.True(t, doc.Exists)
	sum := types.SummarizeAlert(doc.Data)
	assert.Equal(t, "Parking enforcer nearby", sum.Title)
	assert.Equal(t, true, sum.Active)
}

func TestPing(t *testing.T) {
	prov := setupTestProvider(t)
	assert.NoError(t, prov.Ping(context.Background()))
}
