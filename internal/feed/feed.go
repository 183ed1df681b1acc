// Package feed maintains live in-memory views of the monitored collections
// and renders them for a viewer. Each cache mirrors one collection through a
// snapshot subscription; rendering applies proximity ranking, SOS pinning,
// and lifecycle view state at request time, so nothing derived is ever
// written back to the store.
package feed

import (
	"log/slog"
	"sync"

	"github.com/oancholarevelo/floodtrack/internal/domain"
	"github.com/oancholarevelo/floodtrack/internal/observability"
)

// Source delivers full result-set snapshots for one collection. Close
// releases the underlying listener and closes the updates channel.
type Source[T any] interface {
	Updates() <-chan []T
	Close()
}

// Cache mirrors the latest snapshot of one collection.
type Cache[T any] struct {
	src  Source[T]
	name string

	mu    sync.RWMutex
	items []T
	done  chan struct{}
}

// NewCache starts mirroring src. The cache serves an empty snapshot until the
// first update arrives.
func NewCache[T any](src Source[T], col domain.Collection, logger *slog.Logger, metrics *observability.Metrics) *Cache[T] {
	c := &Cache[T]{
		src:  src,
		name: string(col),
		done: make(chan struct{}),
	}

	go func() {
		defer close(c.done)
		for items := range src.Updates() {
			c.mu.Lock()
			c.items = items
			c.mu.Unlock()

			metrics.FeedSnapshots.WithLabelValues(c.name).Inc()
			logger.Debug("feed snapshot applied", "collection", c.name, "count", len(items))
		}
	}()

	return c
}

// Snapshot returns a copy of the latest mirrored items.
func (c *Cache[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Close stops the subscription and waits for the mirror goroutine to drain.
func (c *Cache[T]) Close() {
	c.src.Close()
	<-c.done
}

// Entry is one rendered feed row.
type Entry[T any] struct {
	Item        T                `json:"item"`
	DistanceKm  float64          `json:"distanceKm,omitempty"`
	HasDistance bool             `json:"hasDistance"`
	View        domain.ViewState `json:"view"`
}

// FloodFeed renders flood reports nearest-first relative to the viewer.
// SOS-flagged reports pin to the top regardless of distance; within each
// group the distance order is kept.
func FloodFeed(reports []domain.FloodReport, viewer domain.GeoPoint) []Entry[domain.FloodReport] {
	ranked := domain.RankByDistance(viewer, reports, func(r domain.FloodReport) (domain.GeoPoint, bool) {
		return r.Location, true
	})
	ranked = domain.PinEmergency(ranked, func(r domain.Ranked[domain.FloodReport]) bool {
		return r.Item.IsSOS
	})
	return annotate(domain.CollectionFloodReports, ranked, func(r domain.FloodReport) domain.Status {
		return r.Status
	})
}

// SafeAreaFeed renders evacuation centers nearest-first relative to the
// viewer.
func SafeAreaFeed(areas []domain.SafeArea, viewer domain.GeoPoint) []Entry[domain.SafeArea] {
	ranked := domain.RankByDistance(viewer, areas, func(a domain.SafeArea) (domain.GeoPoint, bool) {
		return a.Location, true
	})
	return annotate(domain.CollectionSafeAreas, ranked, func(a domain.SafeArea) domain.Status {
		return a.Status
	})
}

// AidFeed renders aid requests or offers. Aid posts carry free-text locations
// rather than coordinates, so the store's newest-first order is kept and SOS
// posts are pinned to the top.
func AidFeed(col domain.Collection, posts []domain.AidPost) []Entry[domain.AidPost] {
	pinned := domain.PinEmergency(posts, func(p domain.AidPost) bool { return p.IsSOS })

	entries := make([]Entry[domain.AidPost], len(pinned))
	for i, p := range pinned {
		entries[i] = Entry[domain.AidPost]{
			Item: p,
			View: domain.ViewStateFor(col, p.Status),
		}
	}
	return entries
}

func annotate[T any](col domain.Collection, ranked []domain.Ranked[T], status func(T) domain.Status) []Entry[T] {
	entries := make([]Entry[T], len(ranked))
	for i, r := range ranked {
		entries[i] = Entry[T]{
			Item:        r.Item,
			DistanceKm:  r.DistanceKm,
			HasDistance: r.HasDistance,
			View:        domain.ViewStateFor(col, status(r.Item)),
		}
	}
	return entries
}
