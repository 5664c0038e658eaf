// Package analyzer turns stored telemetry snapshots into an update
// eligibility report: it fetches the recent window, keeps the latest
// snapshot per vehicle, classifies each vehicle into exactly one bucket and
// aggregates fleet-level metrics.
package analyzer

import (
	"fmt"

	"github.com/fleetota-io/fleetota/internal/telemetry"
)

// Bucket is the eligibility classification of one vehicle. Every vehicle
// lands in exactly one bucket.
type Bucket string

const (
	BucketUpdating            Bucket = "UPDATE_IN_PROGRESS"
	BucketOffline             Bucket = "OFFLINE"
	BucketUpToDate            Bucket = "UP_TO_DATE"
	BucketInsufficientBattery Bucket = "INSUFFICIENT_BATTERY"
	BucketEligible            Bucket = "ELIGIBLE"
)

// Buckets lists all classification buckets in priority order.
var Buckets = []Bucket{
	BucketUpdating,
	BucketOffline,
	BucketUpToDate,
	BucketInsufficientBattery,
	BucketEligible,
}

// Policy holds the tunable classification rules. The zero value is not
// usable; construct via DefaultPolicy or load from configuration.
type Policy struct {
	// LatestVersion is the most recent firmware release; vehicles already
	// on it are up to date.
	LatestVersion string `json:"latest_version" mapstructure:"latest_version"`
	// MinBatteryPercent is the charge required to start an update.
	MinBatteryPercent float64 `json:"min_battery_percent" mapstructure:"min_battery_percent"`
	// CriticalVersions are firmware versions with known defects whose
	// eligible vehicles should be updated first.
	CriticalVersions []string `json:"critical_versions" mapstructure:"critical_versions"`
}

// DefaultPolicy returns the stock classification rules.
func DefaultPolicy() Policy {
	return Policy{
		LatestVersion:     "2.0.0",
		MinBatteryPercent: 50,
		CriticalVersions:  []string{"1.2.0", "1.2.1"},
	}
}

// Validate reports configuration mistakes that would make every
// classification wrong.
func (p Policy) Validate() error {
	if p.LatestVersion == "" {
		return fmt.Errorf("latest_version must not be empty")
	}
	if p.MinBatteryPercent < 0 || p.MinBatteryPercent > 100 {
		return fmt.Errorf("min_battery_percent %v out of [0,100]", p.MinBatteryPercent)
	}
	return nil
}

// Classify places a vehicle snapshot into its bucket. Rules apply in strict
// priority order; the first match wins:
//
//  1. status UPDATING            -> UPDATE_IN_PROGRESS
//  2. status OFFLINE             -> OFFLINE
//  3. firmware == latest         -> UP_TO_DATE
//  4. battery < minimum          -> INSUFFICIENT_BATTERY
//  5. otherwise                  -> ELIGIBLE
//
// An update in progress outranks everything, including being offline;
// up-to-date vehicles are never flagged for battery.
func (p Policy) Classify(s *telemetry.Snapshot) Bucket {
	switch {
	case s.Status == telemetry.StatusUpdating:
		return BucketUpdating
	case s.Status == telemetry.StatusOffline:
		return BucketOffline
	case s.Firmware.CurrentVersion == p.LatestVersion:
		return BucketUpToDate
	case s.Battery.Percent < p.MinBatteryPercent:
		return BucketInsufficientBattery
	default:
		return BucketEligible
	}
}

// IsCritical reports whether a firmware version is on the critical list.
func (p Policy) IsCritical(version string) bool {
	for _, v := range p.CriticalVersions {
		if v == version {
			return true
		}
	}
	return false
}
