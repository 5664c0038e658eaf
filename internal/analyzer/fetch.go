package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetota-io/fleetota/internal/storage"
	"github.com/fleetota-io/fleetota/internal/telemetry"
	"github.com/fleetota-io/fleetota/pkg/log"
)

// Fetcher pulls recent telemetry snapshots out of a blob store.
type Fetcher struct {
	store   storage.BlobStore
	window  time.Duration
	maxKeys int
	log     log.Logger

	now func() time.Time
}

// NewFetcher creates a fetcher reading snapshots no older than window,
// capped at maxKeys objects per analysis pass.
func NewFetcher(store storage.BlobStore, window time.Duration, maxKeys int, logger log.Logger) *Fetcher {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Fetcher{
		store:   store,
		window:  window,
		maxKeys: maxKeys,
		log:     logger.WithName("fetcher"),
		now:     time.Now,
	}
}

// Fetch lists the hour-bucketed prefixes covering the window, filters out
// objects older than the cutoff and decodes the rest. A snapshot that fails
// to download or decode is logged and skipped; one bad object must not sink
// the whole pass.
func (f *Fetcher) Fetch(ctx context.Context) ([]*telemetry.Snapshot, error) {
	end := f.now()
	cutoff := end.Add(-f.window)

	var infos []storage.ObjectInfo
	for _, prefix := range storage.HourPrefixes(end, f.window) {
		remaining := f.maxKeys - len(infos)
		if remaining <= 0 {
			break
		}
		batch, err := f.store.List(ctx, prefix, remaining)
		if err != nil {
			return nil, fmt.Errorf("list prefix %q: %w", prefix, err)
		}
		infos = append(infos, batch...)
	}

	snapshots := make([]*telemetry.Snapshot, 0, len(infos))
	skipped := 0
	for _, info := range infos {
		if info.LastModified.Before(cutoff) {
			continue
		}

		data, err := f.store.Get(ctx, info.Key)
		if err != nil {
			f.log.Warn("skipping unreadable object", "key", info.Key, "err", err)
			skipped++
			continue
		}
		snap, err := telemetry.Decode(data)
		if err != nil {
			f.log.Warn("skipping undecodable object", "key", info.Key, "err", err)
			skipped++
			continue
		}
		snapshots = append(snapshots, snap)
	}

	f.log.Debug("fetched snapshots", "listed", len(infos), "decoded", len(snapshots), "skipped", skipped)
	return snapshots, nil
}
