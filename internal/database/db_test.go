package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/vehicalc/pkg/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	empty, err := db.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	want := models.Ledger{
		"alice": {models.Jan: 15, models.Dec: 2.5},
		"bob":   {models.Feb: 7},
	}
	require.NoError(t, db.SaveLedger(ctx, want))

	got, err := db.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Saving a smaller table replaces rather than merges.
	require.NoError(t, db.SaveLedger(ctx, models.Ledger{"bob": {models.Feb: 9}}))
	got, err = db.LoadLedger(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.Ledger{"bob": {models.Feb: 9}}, got)
}

func TestLedgerPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data.db")

	db, err := New(path)
	require.NoError(t, err)
	require.NoError(t, db.SaveLedger(ctx, models.Ledger{"alice": {models.Mar: 1.25}}))
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.LoadLedger(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, got["alice"][models.Mar], 1e-9)
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	require.NoError(t, db.CreateUser(ctx, "alice", "hash-1"))
	assert.ErrorIs(t, db.CreateUser(ctx, "alice", "hash-2"), ErrUserExists)

	hash, err := db.GetPasswordHash(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "hash-1", hash)

	_, err = db.GetPasswordHash(ctx, "bob")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestEvents(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	fuelEvent := models.EmissionEvent{
		ID: "ev-1", Username: "alice", Vehicle: "car", Fuel: "gasoline", FuelEfficiency: 10,
		Distance: 100, Month: models.Jan, Strategy: "fuel", KgCO2: 23.1, CreatedAt: base,
	}
	distanceEvent := models.EmissionEvent{
		ID: "ev-2", Username: "alice", Vehicle: "van", Distance: 50, Month: models.Feb,
		Strategy: "distance", KgCO2: 10.5, CreatedAt: base.Add(time.Minute),
	}
	other := models.EmissionEvent{
		ID: "ev-3", Username: "bob", Vehicle: "motorcycle", Distance: 50, Month: models.Feb,
		Strategy: "urban", KgCO2: 12.6, CreatedAt: base.Add(2 * time.Minute),
	}
	for _, ev := range []models.EmissionEvent{fuelEvent, distanceEvent, other} {
		ev := ev
		require.NoError(t, db.InsertEvent(ctx, &ev))
	}

	events, err := db.ListEvents(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "ev-2", events[0].ID, "newest first")
	assert.Equal(t, "ev-1", events[1].ID)
	assert.Equal(t, "gasoline", events[1].Fuel)
	assert.InDelta(t, 10.0, events[1].FuelEfficiency, 1e-9)
	assert.InDelta(t, 23.1, events[1].KgCO2, 1e-9)
	assert.Equal(t, models.Jan, events[1].Month)
	assert.True(t, events[1].CreatedAt.Equal(base))
	assert.False(t, events[1].Published)
	assert.Empty(t, events[0].Fuel)
	assert.Zero(t, events[0].FuelEfficiency)

	unpublished, err := db.ListUnpublishedEvents(ctx)
	require.NoError(t, err)
	require.Len(t, unpublished, 3)
	assert.Equal(t, "ev-1", unpublished[0].ID, "oldest first")

	require.NoError(t, db.MarkPublished(ctx, "ev-1"))
	unpublished, err = db.ListUnpublishedEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, unpublished, 2)

	events, err = db.ListEvents(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, events[1].Published)
}
