package storage

import (
	"fmt"
	"time"
)

// TelemetryPrefix is the root prefix for all telemetry objects.
const TelemetryPrefix = "telemetry"

// SnapshotKey returns the object key for a vehicle snapshot taken at ts:
//
//	telemetry/YYYYMMDD/HH/vehicle_<id>_<unix-millis>.json
//
// The date and hour segments are derived from UTC so that listings bucket
// consistently regardless of producer timezone.
func SnapshotKey(vehicleID int, ts time.Time) string {
	utc := ts.UTC()
	return fmt.Sprintf("%s/%s/%02d/vehicle_%d_%d.json",
		TelemetryPrefix, utc.Format("20060102"), utc.Hour(), vehicleID, utc.UnixMilli())
}

// HourPrefix returns the listing prefix for one UTC hour bucket.
func HourPrefix(ts time.Time) string {
	utc := ts.UTC()
	return fmt.Sprintf("%s/%s/%02d/", TelemetryPrefix, utc.Format("20060102"), utc.Hour())
}

// HourPrefixes returns the listing prefixes covering the window
// (end-window, end], oldest first. A window of one hour spans at most two
// hour buckets.
func HourPrefixes(end time.Time, window time.Duration) []string {
	if window <= 0 {
		return []string{HourPrefix(end)}
	}

	start := end.Add(-window).UTC().Truncate(time.Hour)
	endHour := end.UTC().Truncate(time.Hour)

	var prefixes []string
	for h := start; !h.After(endHour); h = h.Add(time.Hour) {
		prefixes = append(prefixes, HourPrefix(h))
	}
	return prefixes
}
