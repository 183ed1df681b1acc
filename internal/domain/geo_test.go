package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	montalban := GeoPoint{Latitude: 14.7739, Longitude: 121.1390}
	sanMateo := GeoPoint{Latitude: 14.6939, Longitude: 121.1169}

	t.Run("symmetric", func(t *testing.T) {
		assert.Equal(t, Distance(montalban, sanMateo), Distance(sanMateo, montalban))
	})

	t.Run("identical points", func(t *testing.T) {
		p := GeoPoint{Latitude: 14.7169, Longitude: 121.1244}
		assert.InDelta(t, 0.0, Distance(p, p), 1e-9)
	})

	t.Run("neighboring towns", func(t *testing.T) {
		// Montalban and San Mateo centers are roughly 9 km apart.
		d := Distance(montalban, sanMateo)
		assert.InDelta(t, 9.2, d, 0.5)
	})

	t.Run("antipodal-ish sanity", func(t *testing.T) {
		manila := GeoPoint{Latitude: 14.5995, Longitude: 120.9842}
		quito := GeoPoint{Latitude: -0.1807, Longitude: -78.4678}
		d := Distance(manila, quito)
		assert.Greater(t, d, 15000.0)
		assert.Less(t, d, 2*math.Pi*earthRadiusKm/2)
	})

	t.Run("NaN propagates", func(t *testing.T) {
		bad := GeoPoint{Latitude: math.NaN(), Longitude: 121.0}
		assert.True(t, math.IsNaN(Distance(bad, montalban)))
	})
}

func TestTownCenter(t *testing.T) {
	tests := []struct {
		name     string
		town     string
		expected GeoPoint
	}{
		{"montalban", "montalban", GeoPoint{Latitude: 14.7739, Longitude: 121.1390}},
		{"sanmateo", "sanmateo", GeoPoint{Latitude: 14.6939, Longitude: 121.1169}},
		{"unknown falls back", "atlantis", GeoPoint{Latitude: 14.7739, Longitude: 121.1390}},
		{"empty falls back", "", GeoPoint{Latitude: 14.7739, Longitude: 121.1390}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TownCenter(tt.town))
		})
	}
}

func TestKnownTown(t *testing.T) {
	assert.True(t, KnownTown("montalban"))
	assert.True(t, KnownTown("sanmateo"))
	assert.False(t, KnownTown("Montalban"))
	assert.False(t, KnownTown(""))
}
