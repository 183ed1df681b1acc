package firestore

import (
	"context"
	"fmt"

	fs "cloud.google.com/go/firestore"

	"github.com/oancholarevelo/floodtrack/internal/domain"
)

// AddFloodReport creates an active flood report at the pinned location.
// createdAt is assigned by the server clock; the SOS flag is stored only
// when set.
func (c *Client) AddFloodReport(ctx context.Context, level domain.FloodLevel, loc domain.GeoPoint, sos bool) (string, error) {
	data := map[string]any{
		"level":     string(level),
		"status":    string(domain.StatusActive),
		"location":  map[string]any{"latitude": loc.Latitude, "longitude": loc.Longitude},
		"createdAt": fs.ServerTimestamp,
	}
	if sos {
		data["isSOS"] = true
	}

	ref, _, err := c.fs.Collection(string(domain.CollectionFloodReports)).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("add flood report: %w", err)
	}
	return ref.ID, nil
}

// UpdateFloodLevel changes a report's water level and refreshes updatedAt,
// resetting its staleness clock.
func (c *Client) UpdateFloodLevel(ctx context.Context, id string, level domain.FloodLevel) error {
	_, err := c.fs.Collection(string(domain.CollectionFloodReports)).Doc(id).Update(ctx, []fs.Update{
		{Path: "level", Value: string(level)},
		{Path: "updatedAt", Value: fs.ServerTimestamp},
	})
	if err != nil {
		return fmt.Errorf("update flood level: %w", err)
	}
	return nil
}

// AddSafeArea creates a safe area at the pinned location.
func (c *Client) AddSafeArea(ctx context.Context, name string, capacity *int, status domain.Status, loc domain.GeoPoint) (string, error) {
	data := map[string]any{
		"name":      name,
		"status":    string(status),
		"location":  map[string]any{"latitude": loc.Latitude, "longitude": loc.Longitude},
		"createdAt": fs.ServerTimestamp,
	}
	if capacity != nil {
		data["capacity"] = *capacity
	}

	ref, _, err := c.fs.Collection(string(domain.CollectionSafeAreas)).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("add safe area: %w", err)
	}
	return ref.ID, nil
}

// UpdateSafeArea edits a safe area's details and operational status and
// refreshes updatedAt.
func (c *Client) UpdateSafeArea(ctx context.Context, id, name string, capacity *int, status domain.Status) error {
	updates := []fs.Update{
		{Path: "name", Value: name},
		{Path: "status", Value: string(status)},
		{Path: "updatedAt", Value: fs.ServerTimestamp},
	}
	if capacity != nil {
		updates = append(updates, fs.Update{Path: "capacity", Value: *capacity})
	} else {
		updates = append(updates, fs.Update{Path: "capacity", Value: fs.Delete})
	}

	_, err := c.fs.Collection(string(domain.CollectionSafeAreas)).Doc(id).Update(ctx, updates)
	if err != nil {
		return fmt.Errorf("update safe area: %w", err)
	}
	return nil
}

// AddAidPost creates an aid request or offer. col must be aid_requests or
// aid_offers; offerType is stored only when set.
func (c *Client) AddAidPost(ctx context.Context, col domain.Collection, post domain.AidPost) (string, error) {
	data := map[string]any{
		"title":     post.Title,
		"location":  post.Location,
		"details":   post.Details,
		"status":    string(domain.StatusActive),
		"createdAt": fs.ServerTimestamp,
	}
	if post.OfferType != "" {
		data["offerType"] = string(post.OfferType)
	}
	if post.IsSOS {
		data["isSOS"] = true
	}

	ref, _, err := c.fs.Collection(string(col)).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("add aid post: %w", err)
	}
	return ref.ID, nil
}

// SetStatus writes a single item's new lifecycle status. touch refreshes
// updatedAt for content-modifying transitions; the sweeper's expiry path
// leaves updatedAt alone so the original freshness stays on record.
func (c *Client) SetStatus(ctx context.Context, col domain.Collection, id string, status domain.Status, touch bool) error {
	updates := []fs.Update{{Path: "status", Value: string(status)}}
	if touch {
		updates = append(updates, fs.Update{Path: "updatedAt", Value: fs.ServerTimestamp})
	}

	_, err := c.fs.Collection(string(col)).Doc(id).Update(ctx, updates)
	if err != nil {
		return fmt.Errorf("set status %s/%s: %w", col, id, err)
	}
	return nil
}

// GetStatus reads a single item's current status, normalized for legacy
// documents written without one.
func (c *Client) GetStatus(ctx context.Context, col domain.Collection, id string) (domain.Status, error) {
	snap, err := c.fs.Collection(string(col)).Doc(id).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("get %s/%s: %w", col, id, err)
	}

	raw, err := snap.DataAt("status")
	if err != nil {
		// Legacy documents may lack the field entirely.
		return domain.NormalizeStatus(col, ""), nil
	}
	s, _ := raw.(string)
	return domain.NormalizeStatus(col, domain.Status(s)), nil
}

// Delete permanently removes a document. Reserved for the privileged review
// surface; user deletions go through SetStatus(pending_deletion).
func (c *Client) Delete(ctx context.Context, col domain.Collection, id string) error {
	_, err := c.fs.Collection(string(col)).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", col, id, err)
	}
	return nil
}
