package analyzer

import (
	"sort"
	"strconv"

	"github.com/fleetota-io/fleetota/internal/telemetry"
)

// identityKey resolves the deduplication key for a snapshot: the numeric
// vehicle id when assigned, otherwise the VIN, otherwise the shared
// "unknown" key so malformed records collapse into a single entry instead of
// inflating fleet counts.
func identityKey(s *telemetry.Snapshot) string {
	if s.VehicleID > 0 {
		return strconv.Itoa(s.VehicleID)
	}
	if s.VIN != "" {
		return s.VIN
	}
	return "unknown"
}

// Latest reduces a batch of snapshots to the most recent one per vehicle.
// Timestamps use a fixed-width layout, so the byte-wise greatest string is
// the newest instant. Results are ordered by identity key for stable output.
func Latest(snapshots []*telemetry.Snapshot) []*telemetry.Snapshot {
	latest := make(map[string]*telemetry.Snapshot, len(snapshots))
	for _, s := range snapshots {
		key := identityKey(s)
		if cur, ok := latest[key]; !ok || s.Timestamp > cur.Timestamp {
			latest[key] = s
		}
	}

	keys := make([]string, 0, len(latest))
	for k := range latest {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*telemetry.Snapshot, 0, len(latest))
	for _, k := range keys {
		out = append(out, latest[k])
	}
	return out
}
