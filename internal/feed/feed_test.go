package feed

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oancholarevelo/floodtrack/internal/domain"
	"github.com/oancholarevelo/floodtrack/internal/observability"
)

type fakeSource[T any] struct {
	ch chan []T
}

func newFakeSource[T any]() *fakeSource[T] {
	return &fakeSource[T]{ch: make(chan []T, 4)}
}

func (f *fakeSource[T]) Updates() <-chan []T { return f.ch }
func (f *fakeSource[T]) Close()              { close(f.ch) }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCacheMirrorsLatestSnapshot(t *testing.T) {
	src := newFakeSource[domain.FloodReport]()
	cache := NewCache(src, domain.CollectionFloodReports, testLogger(), observability.NewMetricsForTesting())
	defer cache.Close()

	assert.Empty(t, cache.Snapshot(), "cache starts empty")

	src.ch <- []domain.FloodReport{{ID: "r1"}}
	src.ch <- []domain.FloodReport{{ID: "r1"}, {ID: "r2"}}

	require.Eventually(t, func() bool { return len(cache.Snapshot()) == 2 },
		time.Second, time.Millisecond)

	snap := cache.Snapshot()
	assert.Equal(t, "r1", snap[0].ID)
	assert.Equal(t, "r2", snap[1].ID)
}

func TestCacheSnapshotIsACopy(t *testing.T) {
	src := newFakeSource[domain.AidPost]()
	cache := NewCache(src, domain.CollectionAidRequests, testLogger(), observability.NewMetricsForTesting())
	defer cache.Close()

	src.ch <- []domain.AidPost{{ID: "a1", Title: "water"}}
	require.Eventually(t, func() bool { return len(cache.Snapshot()) == 1 },
		time.Second, time.Millisecond)

	snap := cache.Snapshot()
	snap[0].Title = "mutated"
	assert.Equal(t, "water", cache.Snapshot()[0].Title)
}

func TestFloodFeedRanksNearestFirst(t *testing.T) {
	viewer := domain.GeoPoint{Latitude: 14.7739, Longitude: 121.1390}
	reports := []domain.FloodReport{
		{ID: "far", Location: domain.GeoPoint{Latitude: 14.6939, Longitude: 121.1169}},
		{ID: "near", Location: domain.GeoPoint{Latitude: 14.7740, Longitude: 121.1391}},
	}

	entries := FloodFeed(reports, viewer)

	require.Len(t, entries, 2)
	assert.Equal(t, "near", entries[0].Item.ID)
	assert.Equal(t, "far", entries[1].Item.ID)
	assert.True(t, entries[0].HasDistance)
	assert.Less(t, entries[0].DistanceKm, entries[1].DistanceKm)
}

func TestFloodFeedPinsSOSAboveNearerReports(t *testing.T) {
	viewer := domain.GeoPoint{Latitude: 14.7739, Longitude: 121.1390}
	reports := []domain.FloodReport{
		// Roughly 1km and 5km north of the viewer.
		{ID: "near", Location: domain.GeoPoint{Latitude: 14.7829, Longitude: 121.1390}},
		{ID: "sos", IsSOS: true, Location: domain.GeoPoint{Latitude: 14.8189, Longitude: 121.1390}},
	}

	entries := FloodFeed(reports, viewer)

	require.Len(t, entries, 2)
	assert.Equal(t, "sos", entries[0].Item.ID, "SOS outranks distance")
	assert.Equal(t, "near", entries[1].Item.ID)
	assert.Greater(t, entries[0].DistanceKm, entries[1].DistanceKm,
		"the pin overrides the sort, it does not rewrite distances")
}

func TestFloodFeedFlagsPendingDeletion(t *testing.T) {
	viewer := domain.GeoPoint{Latitude: 14.7739, Longitude: 121.1390}
	reports := []domain.FloodReport{
		{ID: "live", Status: domain.StatusActive, Location: viewer},
		{ID: "flagged", Status: domain.StatusPendingDeletion, Location: viewer},
	}

	entries := FloodFeed(reports, viewer)

	require.Len(t, entries, 2, "pending_deletion items stay visible")
	for _, e := range entries {
		switch e.Item.ID {
		case "live":
			assert.True(t, e.View.Editable)
			assert.True(t, e.View.Deletable)
			assert.False(t, e.View.PendingReview)
		case "flagged":
			assert.False(t, e.View.Editable)
			assert.False(t, e.View.Deletable)
			assert.True(t, e.View.PendingReview)
		}
	}
}

func TestSafeAreaFeedViewState(t *testing.T) {
	viewer := domain.GeoPoint{Latitude: 14.7169, Longitude: 121.1244}
	areas := []domain.SafeArea{
		{ID: "gym", Name: "Covered Court", Status: domain.StatusFull, Location: viewer},
	}

	entries := SafeAreaFeed(areas, viewer)

	require.Len(t, entries, 1)
	assert.True(t, entries[0].View.Editable, "Full is an operational state, not terminal")
	assert.True(t, entries[0].View.Deletable)
	assert.InDelta(t, 0, entries[0].DistanceKm, 1e-9)
}

func TestAidFeedPinsSOS(t *testing.T) {
	posts := []domain.AidPost{
		{ID: "newest", Status: domain.StatusActive},
		{ID: "sos", Status: domain.StatusActive, IsSOS: true},
		{ID: "older", Status: domain.StatusHelped},
	}

	entries := AidFeed(domain.CollectionAidRequests, posts)

	require.Len(t, entries, 3)
	assert.Equal(t, "sos", entries[0].Item.ID, "SOS outranks recency")
	assert.Equal(t, "newest", entries[1].Item.ID)
	assert.Equal(t, "older", entries[2].Item.ID)

	assert.False(t, entries[0].HasDistance, "aid posts carry no coordinates")
	assert.True(t, entries[2].View.Fulfilled)
	assert.False(t, entries[2].View.Editable)
}
