// Package domain models community flood-response content and the rules that
// govern it.
//
// # Content Families
//
// Four Firestore collections hold user-submitted content:
//
//	flood_reports       geotagged water-level reports (Ankle/Knee/Waist-deep)
//	evacuation_centers  safe areas with an operational status (Open/Full/Closed)
//	aid_requests        pleas for help with a free-text address
//	aid_offers          offers of help, typed (Food/Water, Transport, ...)
//
// # Lifecycle
//
// Every item carries a status drawn from a closed set per family. Deletion is
// soft: a user deletion request or the staleness sweep moves an item to
// pending_deletion, where it stays visible (flagged for review) but can no
// longer be edited or deleted by users. Only the admin review surface removes
// documents permanently. pending_deletion is one-way; no event leads back out.
//
// Staleness: an active-equivalent item whose effective freshness timestamp
// (updatedAt when set, else createdAt) is older than 2 days is expired to
// pending_deletion by the sweeper.
//
// # Proximity
//
// Distance is a presentation-time derivation, never persisted. Lists are
// re-ranked from scratch on every snapshot: haversine distance from a
// reference point (the user's live position, or the town's default
// coordinates), ascending, stable so arrival order breaks ties. Items flagged
// isSOS pin to the top of their list regardless of distance.
package domain
