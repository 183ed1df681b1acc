package domain

import "time"

// ReviewItem is one soft-deleted document awaiting an administrator's
// decision to delete it permanently.
type ReviewItem struct {
	Collection Collection `json:"collection"`
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	CreatedAt  time.Time  `json:"createdAt"`
}
