package simulator

import (
	"math"
	"math/rand"
	"time"
)

// Movement model constants.
const (
	speedMinKmh = 0
	speedMaxKmh = 120

	// kmPerDegree is the flat-earth approximation used to turn travel
	// distance into coordinate deltas. Good enough for a telemetry feed;
	// this is not a routing engine.
	kmPerDegree = 111.0

	// jitterScale damps the per-axis random walk so a tick moves the
	// vehicle a plausible city-block distance rather than its full travel
	// distance in a straight line.
	jitterScale = 0.1
)

// Movement is the per-vehicle GPS/speed stochastic process. Each instance
// owns its position, speed and random source; instances are never shared
// between vehicles.
type Movement struct {
	latitude  float64
	longitude float64
	speedKmh  float64
	rng       *rand.Rand
}

// NewMovement places a movement model at the given coordinates with a
// plausible initial cruising speed.
func NewMovement(lat, lon float64, rng *rand.Rand) *Movement {
	return &Movement{
		latitude:  lat,
		longitude: lon,
		speedKmh:  30 + rng.Float64()*60,
		rng:       rng,
	}
}

// StartNearCity returns coordinates offset from a random catalog city by up
// to ±0.45 degrees per axis, roughly a 50 km radius.
func StartNearCity(c *Catalog, rng *rand.Rand) (lat, lon float64) {
	city := c.pickCity(rng)
	lat = city.Latitude + (rng.Float64()*0.9 - 0.45)
	lon = city.Longitude + (rng.Float64()*0.9 - 0.45)
	return lat, lon
}

// Advance moves the vehicle by one tick and returns the new position,
// rounded to six decimal places. Speed is perturbed by ±5 km/h and clamped
// to [0,120]; each axis gets an independent jitter multiplier, which
// deliberately does not preserve a heading: it approximates road-network
// wandering, not great-circle travel.
//
// Post-conditions, for every call sequence: speed ∈ [0,120],
// latitude ∈ [-85,85], longitude ∈ [-180,180].
func (m *Movement) Advance(elapsed time.Duration) (lat, lon float64) {
	m.speedKmh = clamp(m.speedKmh+(m.rng.Float64()*10-5), speedMinKmh, speedMaxKmh)

	distanceKm := m.speedKmh * elapsed.Seconds() / 3600
	distanceDeg := distanceKm / kmPerDegree

	m.latitude += distanceDeg * (m.rng.Float64()*2 - 1) * jitterScale
	m.longitude += distanceDeg * (m.rng.Float64()*2 - 1) * jitterScale

	m.latitude = clamp(m.latitude, -85, 85)
	m.longitude = clamp(m.longitude, -180, 180)

	return round6(m.latitude), round6(m.longitude)
}

// SpeedKmh returns the current speed.
func (m *Movement) SpeedKmh() float64 {
	return m.speedKmh
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
