package firestore

import (
	"context"
	"log/slog"

	fs "cloud.google.com/go/firestore"

	"github.com/oancholarevelo/floodtrack/internal/domain"
)

// Subscription streams full-snapshot updates for one collection query. Every
// store change delivers the complete current result set, never a delta, so
// consumers re-derive their view from scratch each time. Close unregisters
// the listener and releases the underlying connection; leaking subscriptions
// leaks listeners.
type Subscription[T any] struct {
	updates chan []T
	stop    func()
}

// Updates returns the snapshot channel. It is closed after Close, or if the
// listener fails.
func (s *Subscription[T]) Updates() <-chan []T { return s.updates }

// Close unregisters the listener. Safe to call more than once.
func (s *Subscription[T]) Close() { s.stop() }

// watch runs a snapshot listener for q, decoding each document and delivering
// the full result set. The channel holds only the latest snapshot: if the
// consumer lags, stale intermediate snapshots are dropped in its favor.
func watch[T any](ctx context.Context, logger *slog.Logger, name string, q fs.Query, decode func(*fs.DocumentSnapshot) (T, error)) *Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	it := q.Snapshots(ctx)

	sub := &Subscription[T]{
		updates: make(chan []T, 1),
		stop: func() {
			cancel()
			it.Stop()
		},
	}

	go func() {
		defer close(sub.updates)
		for {
			snap, err := it.Next()
			if err != nil {
				if ctx.Err() == nil {
					logger.Error("snapshot listener failed", "collection", name, "error", err)
				}
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Error("read snapshot documents", "collection", name, "error", err)
				continue
			}

			items := make([]T, 0, len(docs))
			for _, d := range docs {
				item, err := decode(d)
				if err != nil {
					logger.Warn("skipping undecodable document",
						"collection", name, "id", d.Ref.ID, "error", err)
					continue
				}
				items = append(items, item)
			}

			select {
			case sub.updates <- items:
			default:
				select {
				case <-sub.updates:
				default:
				}
				sub.updates <- items
			}
		}
	}()

	return sub
}

// WatchFloodReports subscribes to the full flood_reports collection.
// pending_deletion items stay in the stream; the view layer renders them
// flagged rather than hiding them.
func (c *Client) WatchFloodReports(ctx context.Context) *Subscription[domain.FloodReport] {
	col := c.fs.Collection(string(domain.CollectionFloodReports))
	return watch(ctx, c.logger, string(domain.CollectionFloodReports), col.Query, decodeFloodReport)
}

// WatchSafeAreas subscribes to the full evacuation_centers collection.
func (c *Client) WatchSafeAreas(ctx context.Context) *Subscription[domain.SafeArea] {
	col := c.fs.Collection(string(domain.CollectionSafeAreas))
	return watch(ctx, c.logger, string(domain.CollectionSafeAreas), col.Query, decodeSafeArea)
}

// WatchAidPosts subscribes to aid_requests or aid_offers, newest first as the
// store delivers them; proximity and SOS ordering are applied downstream.
func (c *Client) WatchAidPosts(ctx context.Context, col domain.Collection) *Subscription[domain.AidPost] {
	q := c.fs.Collection(string(col)).OrderBy("createdAt", fs.Desc)
	decode := func(snap *fs.DocumentSnapshot) (domain.AidPost, error) {
		return decodeAidPost(col, snap)
	}
	return watch(ctx, c.logger, string(col), q, decode)
}

func decodeFloodReport(snap *fs.DocumentSnapshot) (domain.FloodReport, error) {
	var r domain.FloodReport
	if err := snap.DataTo(&r); err != nil {
		return domain.FloodReport{}, err
	}
	r.ID = snap.Ref.ID
	r.Status = domain.NormalizeStatus(domain.CollectionFloodReports, r.Status)
	return r, nil
}

func decodeSafeArea(snap *fs.DocumentSnapshot) (domain.SafeArea, error) {
	var a domain.SafeArea
	if err := snap.DataTo(&a); err != nil {
		return domain.SafeArea{}, err
	}
	a.ID = snap.Ref.ID
	a.Status = domain.NormalizeStatus(domain.CollectionSafeAreas, a.Status)
	return a, nil
}

func decodeAidPost(col domain.Collection, snap *fs.DocumentSnapshot) (domain.AidPost, error) {
	var p domain.AidPost
	if err := snap.DataTo(&p); err != nil {
		return domain.AidPost{}, err
	}
	p.ID = snap.Ref.ID
	p.Status = domain.NormalizeStatus(col, p.Status)
	return p, nil
}
