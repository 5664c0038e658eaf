package simulator

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

func TestMovementStaysWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	m := NewMovement(84.9, 179.9, rng)

	for i := 0; i < 500; i++ {
		lat, lon := m.Advance(time.Minute)
		if lat < -85 || lat > 85 {
			t.Fatalf("tick %d: latitude %v out of [-85,85]", i, lat)
		}
		if lon < -180 || lon > 180 {
			t.Fatalf("tick %d: longitude %v out of [-180,180]", i, lon)
		}
		if s := m.SpeedKmh(); s < 0 || s > 120 {
			t.Fatalf("tick %d: speed %v out of [0,120]", i, s)
		}
	}
}

func TestMovementDeterministicWithSeed(t *testing.T) {
	run := func() (float64, float64) {
		rng := rand.New(rand.NewSource(7))
		m := NewMovement(48.8566, 2.3522, rng)
		var lat, lon float64
		for i := 0; i < 50; i++ {
			lat, lon = m.Advance(time.Minute)
		}
		return lat, lon
	}

	lat1, lon1 := run()
	lat2, lon2 := run()
	if lat1 != lat2 || lon1 != lon2 {
		t.Fatalf("same seed diverged: (%v,%v) vs (%v,%v)", lat1, lon1, lat2, lon2)
	}
}

func TestStartNearCity(t *testing.T) {
	catalog := DefaultCatalog()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		lat, lon := StartNearCity(catalog, rng)

		near := false
		for _, c := range catalog.CityCenters {
			if math.Abs(lat-c.Latitude) <= 0.45+1e-9 && math.Abs(lon-c.Longitude) <= 0.45+1e-9 {
				near = true
				break
			}
		}
		if !near {
			t.Fatalf("start point (%v,%v) not within 0.45 degrees of any city center", lat, lon)
		}
	}
}

func TestMovementRoundsReportedCoordinates(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	m := NewMovement(40.7128, -74.0060, rng)

	lat, lon := m.Advance(time.Minute)
	if lat != round6(lat) || lon != round6(lon) {
		t.Fatalf("coordinates not rounded to 6 decimals: (%v,%v)", lat, lon)
	}
}
