package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hupe1980/freightmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "negotiations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// The record survives a write/read cycle. Timestamps are stored at second
// granularity, so comparisons truncate accordingly.
func TestSQLiteStore_RoundTrip(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	n := core.NewNegotiation("load-1", "driver-1", 2000, 1800, 3, time.Now().UTC().Add(time.Hour))
	n.CurrentOffer = 2100
	counter := 1850.0
	n.CounterOffer = &counter
	n.Round = 2
	n.AppendOffer(core.ActorAgent, 2100, "opening")
	n.AppendOffer(core.ActorBroker, 1850, "counter")
	require.NoError(t, s.Create(ctx, n))

	got, err := s.Get(ctx, n.ID)
	require.NoError(t, err)

	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, n.LoadID, got.LoadID)
	assert.Equal(t, n.DriverID, got.DriverID)
	assert.Equal(t, n.Status, got.Status)
	assert.Equal(t, n.TargetRate, got.TargetRate)
	assert.Equal(t, n.FloorRate, got.FloorRate)
	assert.Equal(t, n.CurrentOffer, got.CurrentOffer)
	require.NotNil(t, got.CounterOffer)
	assert.Equal(t, counter, *got.CounterOffer)
	assert.Equal(t, n.Round, got.Round)
	assert.Equal(t, n.Version, got.Version)
	assert.Equal(t, n.ExpiresAt.Truncate(time.Second), got.ExpiresAt)

	require.Len(t, got.OfferHistory, 2)
	assert.Equal(t, n.OfferHistory[0].ID, got.OfferHistory[0].ID)
	assert.Equal(t, core.ActorBroker, got.OfferHistory[1].Actor)
	assert.Equal(t, 1850.0, got.OfferHistory[1].Amount)
}

func TestSQLiteStore_NilCounterOffer(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	n := core.NewNegotiation("load-1", "driver-1", 2000, 1800, 3, time.Now().UTC().Add(time.Hour))
	require.NoError(t, s.Create(ctx, n))

	got, err := s.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CounterOffer)
}

func TestSQLiteStore_CreateDuplicate(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	n := core.NewNegotiation("load-1", "driver-1", 2000, 1800, 3, time.Now().UTC().Add(time.Hour))
	require.NoError(t, s.Create(ctx, n))
	assert.ErrorIs(t, s.Create(ctx, n), core.ErrAlreadyExists)
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	s := newSQLiteStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteStore_PutIfVersion(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	n := core.NewNegotiation("load-1", "driver-1", 2000, 1800, 3, time.Now().UTC().Add(time.Hour))
	require.NoError(t, s.Create(ctx, n))

	n.Status = core.StatusOfferSent
	n.CurrentOffer = 2100
	n.AppendOffer(core.ActorAgent, 2100, "opening")
	require.NoError(t, s.PutIfVersion(ctx, n, 1))
	assert.Equal(t, int64(2), n.Version)

	got, err := s.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusOfferSent, got.Status)
	assert.Equal(t, int64(2), got.Version)
	assert.Len(t, got.OfferHistory, 1)
}

func TestSQLiteStore_PutIfVersionConflict(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	n := core.NewNegotiation("load-1", "driver-1", 2000, 1800, 3, time.Now().UTC().Add(time.Hour))
	require.NoError(t, s.Create(ctx, n))

	stale := n.Clone()
	n.Status = core.StatusOfferSent
	require.NoError(t, s.PutIfVersion(ctx, n, 1))

	stale.Status = core.StatusRejected
	require.ErrorIs(t, s.PutIfVersion(ctx, stale, 1), core.ErrConcurrencyConflict)

	got, err := s.Get(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusOfferSent, got.Status)
}

func TestSQLiteStore_PutIfVersionNotFound(t *testing.T) {
	s := newSQLiteStore(t)
	n := core.NewNegotiation("load-1", "driver-1", 2000, 1800, 3, time.Now().UTC().Add(time.Hour))
	err := s.PutIfVersion(context.Background(), n, 1)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLiteStore_Scan(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	fresh := core.NewNegotiation("load-1", "driver-1", 2000, 1800, 3, now.Add(time.Hour))
	stale := core.NewNegotiation("load-2", "driver-2", 2000, 1800, 3, now.Add(-time.Hour))
	done := core.NewNegotiation("load-3", "driver-3", 2000, 1800, 3, now.Add(-time.Hour))
	done.Status = core.StatusAccepted
	for _, n := range []*core.Negotiation{fresh, stale, done} {
		require.NoError(t, s.Create(ctx, n))
	}

	all, err := s.Scan(ctx, core.ScanFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	open, err := s.Scan(ctx, core.ScanFilter{
		Statuses: []core.Status{core.StatusInitiated, core.StatusOfferSent},
	})
	require.NoError(t, err)
	assert.Len(t, open, 2)

	expired, err := s.Scan(ctx, core.ScanFilter{
		Statuses:      []core.Status{core.StatusInitiated, core.StatusOfferSent},
		ExpiresBefore: now,
	})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.ID, expired[0].ID)
}
