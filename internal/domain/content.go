package domain

import "time"

// Collection identifies one of the monitored Firestore collections.
type Collection string

const (
	CollectionFloodReports Collection = "flood_reports"
	CollectionSafeAreas    Collection = "evacuation_centers"
	CollectionAidRequests  Collection = "aid_requests"
	CollectionAidOffers    Collection = "aid_offers"
)

// Collections lists every monitored collection, in sweep order.
func Collections() []Collection {
	return []Collection{
		CollectionFloodReports,
		CollectionSafeAreas,
		CollectionAidRequests,
		CollectionAidOffers,
	}
}

// FloodLevel is the reported water depth of a flood report.
type FloodLevel string

const (
	LevelAnkleDeep FloodLevel = "Ankle-deep"
	LevelKneeDeep  FloodLevel = "Knee-deep"
	LevelWaistDeep FloodLevel = "Waist-deep"
)

// ValidFloodLevel reports whether the value is one of the three depths.
func ValidFloodLevel(l FloodLevel) bool {
	switch l {
	case LevelAnkleDeep, LevelKneeDeep, LevelWaistDeep:
		return true
	}
	return false
}

// OfferType categorizes an aid offer.
type OfferType string

const (
	OfferFoodWater OfferType = "Food/Water"
	OfferTransport OfferType = "Transport"
	OfferShelter   OfferType = "Shelter"
	OfferVolunteer OfferType = "Volunteer"
	OfferOther     OfferType = "Other"
)

// ValidOfferType reports whether the value is a known aid category.
func ValidOfferType(t OfferType) bool {
	switch t {
	case OfferFoodWater, OfferTransport, OfferShelter, OfferVolunteer, OfferOther:
		return true
	}
	return false
}

// FloodReport is a geotagged water-level report. SOS-flagged reports pin to
// the top of the feed ahead of the distance sort.
type FloodReport struct {
	ID        string     `firestore:"-" json:"id"`
	Level     FloodLevel `firestore:"level" json:"level"`
	Location  GeoPoint   `firestore:"location" json:"location"`
	Status    Status     `firestore:"status" json:"status"`
	IsSOS     bool       `firestore:"isSOS,omitempty" json:"isSOS,omitempty"`
	CreatedAt time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt *time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// SafeArea is an evacuation center or other refuge.
type SafeArea struct {
	ID        string     `firestore:"-" json:"id"`
	Name      string     `firestore:"name" json:"name"`
	Location  GeoPoint   `firestore:"location" json:"location"`
	Capacity  *int       `firestore:"capacity,omitempty" json:"capacity,omitempty"`
	Status    Status     `firestore:"status" json:"status"`
	CreatedAt time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt *time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// AidPost is a community aid request or offer. Location is a free-text
// address; aid posts carry no coordinates unless they originate from an SOS.
type AidPost struct {
	ID        string     `firestore:"-" json:"id"`
	Title     string     `firestore:"title" json:"title"`
	Location  string     `firestore:"location" json:"location"`
	Details   string     `firestore:"details" json:"details"`
	OfferType OfferType  `firestore:"offerType,omitempty" json:"offerType,omitempty"`
	Status    Status     `firestore:"status" json:"status"`
	IsSOS     bool       `firestore:"isSOS,omitempty" json:"isSOS,omitempty"`
	CreatedAt time.Time  `firestore:"createdAt" json:"createdAt"`
	UpdatedAt *time.Time `firestore:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
