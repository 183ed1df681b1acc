package firestore

import (
	"context"
	"fmt"
	"time"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/oancholarevelo/floodtrack/internal/domain"
)

// staleDoc is the slice of fields staleness evaluation needs.
type staleDoc struct {
	CreatedAt time.Time  `firestore:"createdAt"`
	UpdatedAt *time.Time `firestore:"updatedAt"`
}

// StaleCandidates returns the IDs of documents in col whose status is in the
// active-equivalent set and whose effective freshness timestamp is older than
// cutoff. Status filtering happens server-side; the freshness comparison is
// client-side because it coalesces updatedAt over createdAt.
func (c *Client) StaleCandidates(ctx context.Context, col domain.Collection, statuses []domain.Status, cutoff time.Time) ([]string, error) {
	raw := make([]string, len(statuses))
	for i, s := range statuses {
		raw[i] = string(s)
	}

	iter := c.fs.Collection(string(col)).Where("status", "in", raw).Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query stale candidates %s: %w", col, err)
		}

		var doc staleDoc
		if err := snap.DataTo(&doc); err != nil {
			c.logger.Warn("skipping undecodable document",
				"collection", string(col), "id", snap.Ref.ID, "error", err)
			continue
		}
		if domain.EffectiveFreshness(doc.CreatedAt, doc.UpdatedAt).Before(cutoff) {
			ids = append(ids, snap.Ref.ID)
		}
	}
	return ids, nil
}

// MarkPendingDeletion transitions every listed document to pending_deletion
// in one atomic batch: either the whole batch commits or none of it does.
func (c *Client) MarkPendingDeletion(ctx context.Context, col domain.Collection, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	batch := c.fs.Batch()
	for _, id := range ids {
		ref := c.fs.Collection(string(col)).Doc(id)
		batch.Update(ref, []fs.Update{{Path: "status", Value: string(domain.StatusPendingDeletion)}})
	}

	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("commit sweep batch %s: %w", col, err)
	}
	return nil
}
