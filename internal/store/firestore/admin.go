package firestore

import (
	"context"
	"fmt"

	fs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/oancholarevelo/floodtrack/internal/domain"
)

// ListPendingDeletion returns every document in col that the sweeper or a
// user has marked pending_deletion, summarized for the review queue.
func (c *Client) ListPendingDeletion(ctx context.Context, col domain.Collection) ([]domain.ReviewItem, error) {
	it := c.fs.Collection(string(col)).
		Where("status", "==", string(domain.StatusPendingDeletion)).
		Documents(ctx)
	defer it.Stop()

	var items []domain.ReviewItem
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list pending deletion in %s: %w", col, err)
		}

		item, err := reviewItem(col, snap)
		if err != nil {
			c.logger.Warn("skipping undecodable document",
				"collection", string(col), "id", snap.Ref.ID, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func reviewItem(col domain.Collection, snap *fs.DocumentSnapshot) (domain.ReviewItem, error) {
	switch col {
	case domain.CollectionFloodReports:
		r, err := decodeFloodReport(snap)
		if err != nil {
			return domain.ReviewItem{}, err
		}
		return domain.ReviewItem{
			Collection: col,
			ID:         r.ID,
			Title:      fmt.Sprintf("%s flood report", r.Level),
			CreatedAt:  r.CreatedAt,
		}, nil
	case domain.CollectionSafeAreas:
		a, err := decodeSafeArea(snap)
		if err != nil {
			return domain.ReviewItem{}, err
		}
		return domain.ReviewItem{Collection: col, ID: a.ID, Title: a.Name, CreatedAt: a.CreatedAt}, nil
	default:
		p, err := decodeAidPost(col, snap)
		if err != nil {
			return domain.ReviewItem{}, err
		}
		return domain.ReviewItem{Collection: col, ID: p.ID, Title: p.Title, CreatedAt: p.CreatedAt}, nil
	}
}
