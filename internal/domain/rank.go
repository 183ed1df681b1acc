package domain

import "sort"

// Ranked pairs an item with its derived distance from the reference point.
// The distance exists only in memory; it is recomputed on every snapshot and
// never written back to the store.
type Ranked[T any] struct {
	Item        T       `json:"item"`
	DistanceKm  float64 `json:"distanceKm"`
	HasDistance bool    `json:"hasDistance"`
}

// RankByDistance annotates every item with its distance from ref and returns
// the collection sorted ascending by that distance. The sort is stable, so
// equal distances keep the arrival order of the underlying read and re-ranking
// an already-sorted list is a no-op. Items without coordinates carry no
// distance and sort after all located items.
func RankByDistance[T any](ref GeoPoint, items []T, locate func(T) (GeoPoint, bool)) []Ranked[T] {
	ranked := make([]Ranked[T], len(items))
	for i, item := range items {
		ranked[i] = Ranked[T]{Item: item}
		if p, ok := locate(item); ok {
			ranked[i].DistanceKm = Distance(ref, p)
			ranked[i].HasDistance = true
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.HasDistance != b.HasDistance {
			return a.HasDistance
		}
		if !a.HasDistance {
			return false
		}
		return a.DistanceKm < b.DistanceKm
	})
	return ranked
}

// PinEmergency moves flagged items to the front of the list, preserving the
// existing order within both groups. It layers the SOS override on top of
// whatever ordering the list already has; it never blends into it.
func PinEmergency[T any](items []T, flagged func(T) bool) []T {
	out := make([]T, 0, len(items))
	var rest []T
	for _, item := range items {
		if flagged(item) {
			out = append(out, item)
		} else {
			rest = append(rest, item)
		}
	}
	return append(out, rest...)
}
