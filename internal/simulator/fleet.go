package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fleetota-io/fleetota/internal/telemetry"
)

// Fleet is an ordered registry of simulated vehicles with identifiers 1..N.
// The registry itself is immutable after construction; concurrency control
// for ticking lives in TickAllParallel.
type Fleet struct {
	vehicles []*Vehicle
}

// NewFleet builds a fleet of size vehicles. When seed is non-zero each
// vehicle gets a deterministic generator derived from seed and its
// identifier, making whole runs reproducible; a zero seed falls back to
// time-based seeding.
func NewFleet(size int, manufacturer string, catalog *Catalog, seed int64) (*Fleet, error) {
	if size < 1 {
		return nil, fmt.Errorf("fleet size must be at least 1, got %d", size)
	}
	if errs := catalog.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog: %v", errs)
	}

	vehicles := make([]*Vehicle, 0, size)
	for id := 1; id <= size; id++ {
		s := seed
		if s == 0 {
			s = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(s + int64(id)))
		vehicles = append(vehicles, NewVehicle(id, manufacturer, catalog, rng))
	}
	return &Fleet{vehicles: vehicles}, nil
}

// Size returns the number of vehicles in the fleet.
func (f *Fleet) Size() int { return len(f.vehicles) }

// Vehicle returns the vehicle with the given identifier, or nil when the
// identifier is out of range.
func (f *Fleet) Vehicle(id int) *Vehicle {
	if id < 1 || id > len(f.vehicles) {
		return nil
	}
	return f.vehicles[id-1]
}

// Vehicles returns the registry in identifier order. The returned slice is
// shared; callers must not mutate it.
func (f *Fleet) Vehicles() []*Vehicle { return f.vehicles }

// TickAll advances every vehicle by elapsed and returns their snapshots in
// identifier order.
func (f *Fleet) TickAll(ctx context.Context, elapsed time.Duration) []*telemetry.Snapshot {
	snapshots := make([]*telemetry.Snapshot, len(f.vehicles))
	for i, v := range f.vehicles {
		snapshots[i] = v.Tick(ctx, elapsed)
	}
	return snapshots
}

// TickAllParallel advances vehicles concurrently with at most limit
// goroutines. Each vehicle is ticked by exactly one goroutine, so per-vehicle
// state needs no locking. Snapshots are still returned in identifier order.
func (f *Fleet) TickAllParallel(ctx context.Context, elapsed time.Duration, limit int) ([]*telemetry.Snapshot, error) {
	snapshots := make([]*telemetry.Snapshot, len(f.vehicles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, v := range f.vehicles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			snapshots[i] = v.Tick(ctx, elapsed)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// Summary aggregates fleet state for logging at shutdown or between
// iterations.
type Summary struct {
	Total      int
	ByStatus   map[telemetry.Status]int
	ByFirmware map[string]int
	AvgBattery float64
}

// Summarize computes a point-in-time summary of the fleet.
func (f *Fleet) Summarize() Summary {
	s := Summary{
		Total:      len(f.vehicles),
		ByStatus:   make(map[telemetry.Status]int),
		ByFirmware: make(map[string]int),
	}
	var batterySum float64
	for _, v := range f.vehicles {
		s.ByStatus[v.Status()]++
		s.ByFirmware[v.FirmwareVersion()]++
		batterySum += v.BatteryPercent()
	}
	if s.Total > 0 {
		s.AvgBattery = batterySum / float64(s.Total)
	}
	return s
}
