package domain

import (
	"errors"
	"fmt"
	"time"
)

// StalenessWindow is how long an unresolved item stays live before the
// sweeper flags it for review.
const StalenessWindow = 48 * time.Hour

// Status is a content item's lifecycle state. The valid set is closed and
// family-specific; Transition is the only supported way to change it.
type Status string

const (
	// Shared across flood reports and aid posts.
	StatusActive Status = "active"

	// Flood reports.
	StatusSubsided Status = "subsided"

	// Safe area operational states.
	StatusOpen   Status = "Open"
	StatusFull   Status = "Full"
	StatusClosed Status = "Closed"

	// Aid posts.
	StatusHelped    Status = "helped"
	StatusHelpGiven Status = "help given"

	// Deletion axis, shared by every family. One-way: no event leads back
	// out; removal happens only through the privileged review surface.
	StatusPendingDeletion Status = "pending_deletion"
)

// Event is something that happens to a content item.
type Event string

const (
	EventResolve         Event = "resolve"          // flood subsided
	EventFulfill         Event = "fulfill"          // aid request answered
	EventConsume         Event = "consume"          // aid offer used up
	EventSetOpen         Event = "set_open"         // safe area operational edits
	EventSetFull         Event = "set_full"
	EventSetClosed       Event = "set_closed"
	EventRequestDeletion Event = "request_deletion" // user soft delete
	EventExpire          Event = "expire"           // sweeper staleness
)

// ErrInvalidTransition is returned when an event is not defined for the
// item's current state.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions is the (state, event) → state table per content family.
var transitions = map[Collection]map[Status]map[Event]Status{
	CollectionFloodReports: {
		StatusActive: {
			EventResolve:         StatusSubsided,
			EventRequestDeletion: StatusPendingDeletion,
			EventExpire:          StatusPendingDeletion,
		},
		StatusSubsided: {
			EventRequestDeletion: StatusPendingDeletion,
		},
	},
	CollectionSafeAreas: {
		StatusOpen: {
			EventSetOpen:         StatusOpen,
			EventSetFull:         StatusFull,
			EventSetClosed:       StatusClosed,
			EventRequestDeletion: StatusPendingDeletion,
			EventExpire:          StatusPendingDeletion,
		},
		StatusFull: {
			EventSetOpen:         StatusOpen,
			EventSetFull:         StatusFull,
			EventSetClosed:       StatusClosed,
			EventRequestDeletion: StatusPendingDeletion,
			EventExpire:          StatusPendingDeletion,
		},
		StatusClosed: {
			EventSetOpen:         StatusOpen,
			EventSetFull:         StatusFull,
			EventSetClosed:       StatusClosed,
			EventRequestDeletion: StatusPendingDeletion,
			EventExpire:          StatusPendingDeletion,
		},
	},
	CollectionAidRequests: {
		StatusActive: {
			EventFulfill:         StatusHelped,
			EventRequestDeletion: StatusPendingDeletion,
			EventExpire:          StatusPendingDeletion,
		},
		StatusHelped: {
			EventRequestDeletion: StatusPendingDeletion,
		},
	},
	CollectionAidOffers: {
		StatusActive: {
			EventConsume:         StatusHelpGiven,
			EventRequestDeletion: StatusPendingDeletion,
			EventExpire:          StatusPendingDeletion,
		},
		StatusHelpGiven: {
			EventRequestDeletion: StatusPendingDeletion,
		},
	},
}

// Transition applies an event to a status and returns the new status, or
// ErrInvalidTransition when the event is undefined for the current state.
func Transition(col Collection, from Status, ev Event) (Status, error) {
	if next, ok := transitions[col][from][ev]; ok {
		return next, nil
	}
	return "", fmt.Errorf("%w: %s %q on %q", ErrInvalidTransition, col, ev, from)
}

// ActiveEquivalentStatuses returns the statuses that count as live/unresolved
// for a collection. The sweeper queries these server-side.
func ActiveEquivalentStatuses(col Collection) []Status {
	if col == CollectionSafeAreas {
		return []Status{StatusOpen, StatusFull, StatusClosed}
	}
	return []Status{StatusActive}
}

// ActiveEquivalent reports whether a status counts as live for its family.
func ActiveEquivalent(col Collection, s Status) bool {
	for _, a := range ActiveEquivalentStatuses(col) {
		if s == a {
			return true
		}
	}
	return false
}

// NormalizeStatus fills in the default live status for legacy documents that
// were written without one.
func NormalizeStatus(col Collection, s Status) Status {
	if s != "" {
		return s
	}
	if col == CollectionSafeAreas {
		return StatusOpen
	}
	return StatusActive
}

// ViewState is the view-facing contract for one item: which controls are
// enabled and whether the pending-review banner shows. Every status remains
// visible in lists and on the map.
type ViewState struct {
	Editable      bool `json:"editable"`
	Deletable     bool `json:"deletable"`
	PendingReview bool `json:"pendingReview"`
	Fulfilled     bool `json:"fulfilled"`
}

// ViewStateFor derives the view-facing flags for an item's current status.
// pending_deletion disables edit and delete; terminal aid and flood states
// stay visible and can still be soft-deleted, but not edited.
func ViewStateFor(col Collection, s Status) ViewState {
	s = NormalizeStatus(col, s)
	switch s {
	case StatusPendingDeletion:
		return ViewState{PendingReview: true}
	case StatusSubsided:
		return ViewState{Deletable: true}
	case StatusHelped, StatusHelpGiven:
		return ViewState{Deletable: true, Fulfilled: true}
	default:
		return ViewState{Editable: true, Deletable: true}
	}
}

// EffectiveFreshness returns the timestamp staleness is measured from:
// updatedAt when present, else createdAt.
func EffectiveFreshness(createdAt time.Time, updatedAt *time.Time) time.Time {
	if updatedAt != nil && !updatedAt.IsZero() {
		return *updatedAt
	}
	return createdAt
}

// Stale reports whether an item's effective freshness timestamp has aged past
// the staleness window.
func Stale(createdAt time.Time, updatedAt *time.Time) bool {
	return clock.Now().Sub(EffectiveFreshness(createdAt, updatedAt)) > StalenessWindow
}

// StalenessCutoff returns the instant before which effective freshness makes
// an item stale, as of now.
func StalenessCutoff() time.Time {
	return clock.Now().Add(-StalenessWindow)
}
