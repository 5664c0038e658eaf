package simulator

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fleetota-io/fleetota/internal/metrics"
	"github.com/fleetota-io/fleetota/internal/storage"
	"github.com/fleetota-io/fleetota/internal/telemetry"
	"github.com/fleetota-io/fleetota/pkg/log"
)

// SnapshotPublisher streams encoded snapshots to a side channel, typically
// an MQTT telemetry topic. Publish failures are logged by the runner and do
// not fail the iteration.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, vehicleID int, payload []byte) error
}

// RunnerConfig carries the runtime knobs of a simulation.
type RunnerConfig struct {
	TickInterval time.Duration
	// Duration bounds the whole run; zero runs until the context ends.
	Duration time.Duration
	// MaxConcurrentUploads bounds the per-iteration upload fan-out.
	MaxConcurrentUploads int
}

// Runner drives a fleet: on every tick it advances all vehicles, uploads
// the resulting snapshots to the blob store and optionally streams them.
type Runner struct {
	fleet     *Fleet
	store     storage.BlobStore
	publisher SnapshotPublisher
	cfg       RunnerConfig
	log       log.Logger

	totalUploaded int
	totalFailed   int

	now func() time.Time
}

// NewRunner wires a fleet to its outputs. publisher may be nil.
func NewRunner(fleet *Fleet, store storage.BlobStore, publisher SnapshotPublisher, cfg RunnerConfig, logger log.Logger) *Runner {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if cfg.MaxConcurrentUploads < 1 {
		cfg.MaxConcurrentUploads = 1
	}
	return &Runner{
		fleet:     fleet,
		store:     store,
		publisher: publisher,
		cfg:       cfg,
		log:       logger.WithName("runner"),
		now:       time.Now,
	}
}

// Run executes tick iterations until the configured duration elapses or the
// context is cancelled. The first iteration runs immediately. It returns nil
// on a completed run and the context error on cancellation.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("simulation starting",
		"fleet_size", r.fleet.Size(),
		"tick_interval", r.cfg.TickInterval,
		"duration", r.cfg.Duration,
	)

	if r.cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Duration)
		defer cancel()
	}

	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	for iteration := 1; ; iteration++ {
		if err := r.iterate(ctx, iteration); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return err
		}

		select {
		case <-ctx.Done():
			r.logSummary()
			return nil
		case <-ticker.C:
		}
	}

	r.logSummary()
	return nil
}

func (r *Runner) iterate(ctx context.Context, iteration int) error {
	snapshots, err := r.fleet.TickAllParallel(ctx, r.cfg.TickInterval, r.cfg.MaxConcurrentUploads)
	if err != nil {
		return err
	}

	uploaded, failed := r.upload(ctx, snapshots)
	r.totalUploaded += uploaded
	r.totalFailed += failed

	metrics.SimulationTicksTotal.Inc()
	r.log.Info("iteration complete",
		"iteration", iteration,
		"snapshots", len(snapshots),
		"uploaded", uploaded,
		"failed", failed,
		"total_uploaded", r.totalUploaded,
		"total_failed", r.totalFailed,
	)
	return ctx.Err()
}

// upload fans snapshot writes out over a bounded worker group. Individual
// failures are counted and logged; one slow or broken object never stops
// the fleet.
func (r *Runner) upload(ctx context.Context, snapshots []*telemetry.Snapshot) (uploaded, failed int) {
	var ok, bad atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(r.cfg.MaxConcurrentUploads)
	for _, snap := range snapshots {
		g.Go(func() error {
			payload, err := snap.Encode()
			if err != nil {
				r.log.Error(err, "failed to encode snapshot", "vehicle", snap.VehicleID)
				bad.Add(1)
				metrics.TelemetryUploadsTotal.WithLabelValues("failed").Inc()
				return nil
			}

			key := storage.SnapshotKey(snap.VehicleID, r.now())
			metadata := map[string]string{
				"vehicle-id": strconv.Itoa(snap.VehicleID),
				"vin":        snap.VIN,
			}
			if err := r.store.Put(ctx, key, payload, metadata); err != nil {
				r.log.Error(err, "failed to upload snapshot", "vehicle", snap.VehicleID, "key", key)
				bad.Add(1)
				metrics.TelemetryUploadsTotal.WithLabelValues("failed").Inc()
				return nil
			}
			ok.Add(1)
			metrics.TelemetryUploadsTotal.WithLabelValues("success").Inc()

			if r.publisher != nil {
				if err := r.publisher.PublishSnapshot(ctx, snap.VehicleID, payload); err != nil {
					r.log.Warn("failed to stream snapshot", "vehicle", snap.VehicleID, "err", err)
				}
			}
			return nil
		})
	}
	g.Wait()

	return int(ok.Load()), int(bad.Load())
}

func (r *Runner) logSummary() {
	s := r.fleet.Summarize()
	kv := []any{
		"vehicles", s.Total,
		"avg_battery", s.AvgBattery,
		"total_uploaded", r.totalUploaded,
		"total_failed", r.totalFailed,
	}
	for status, n := range s.ByStatus {
		kv = append(kv, "status_"+string(status), n)
	}
	for version, n := range s.ByFirmware {
		kv = append(kv, "firmware_"+version, n)
	}
	r.log.Info("simulation finished", kv...)
}
