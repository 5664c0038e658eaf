package analyzer

import (
	"sort"
	"time"

	"github.com/fleetota-io/fleetota/internal/metrics"
	"github.com/fleetota-io/fleetota/internal/telemetry"
)

// VehicleRef identifies one classified vehicle in a report.
type VehicleRef struct {
	Key             string `json:"key"`
	VIN             string `json:"vin"`
	FirmwareVersion string `json:"firmware_version"`
	BatteryPercent  float64 `json:"battery_percent"`
	Critical        bool   `json:"critical"`
}

// Report is the outcome of one analysis pass over the deduplicated fleet.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Total       int       `json:"total_vehicles"`

	Counts   map[Bucket]int          `json:"counts"`
	Vehicles map[Bucket][]VehicleRef `json:"vehicles"`

	// LowBattery counts vehicles blocked only by charge level; it equals
	// Counts[BucketInsufficientBattery] and exists as a named metric.
	LowBattery int `json:"low_battery_vehicles"`

	// FirmwareHistogram counts vehicles per installed firmware version.
	FirmwareHistogram map[string]int `json:"vehicles_by_firmware"`

	// EligibilityRate is eligible / total in percent; 0 for an empty fleet.
	EligibilityRate float64 `json:"update_eligibility_rate"`

	// CriticalEligible lists eligible vehicles still running a firmware
	// version from the critical list, in stable key order.
	CriticalEligible []VehicleRef `json:"critical_eligible"`
}

// BuildReport classifies each snapshot (assumed already deduplicated) and
// aggregates the fleet totals.
func BuildReport(policy Policy, snapshots []*telemetry.Snapshot, now time.Time) *Report {
	r := &Report{
		GeneratedAt:       now,
		Total:             len(snapshots),
		Counts:            make(map[Bucket]int, len(Buckets)),
		Vehicles:          make(map[Bucket][]VehicleRef, len(Buckets)),
		FirmwareHistogram: make(map[string]int),
	}
	for _, b := range Buckets {
		r.Counts[b] = 0
		r.Vehicles[b] = []VehicleRef{}
	}

	for _, s := range snapshots {
		bucket := policy.Classify(s)
		ref := VehicleRef{
			Key:             identityKey(s),
			VIN:             s.VIN,
			FirmwareVersion: s.Firmware.CurrentVersion,
			BatteryPercent:  s.Battery.Percent,
			Critical:        policy.IsCritical(s.Firmware.CurrentVersion),
		}

		r.Counts[bucket]++
		r.Vehicles[bucket] = append(r.Vehicles[bucket], ref)
		r.FirmwareHistogram[s.Firmware.CurrentVersion]++

		if bucket == BucketEligible && ref.Critical {
			r.CriticalEligible = append(r.CriticalEligible, ref)
		}
	}

	r.LowBattery = r.Counts[BucketInsufficientBattery]
	if r.Total > 0 {
		r.EligibilityRate = float64(r.Counts[BucketEligible]) / float64(r.Total) * 100
	}

	sort.Slice(r.CriticalEligible, func(i, j int) bool {
		return r.CriticalEligible[i].Key < r.CriticalEligible[j].Key
	})
	return r
}

// MetricNamespace is the namespace report samples are published under.
const MetricNamespace = "FleetOTA"

// Samples converts the report into metric samples, one per fleet aggregate
// plus one dimensioned sample per firmware version.
func (r *Report) Samples() []metrics.Sample {
	at := r.GeneratedAt
	samples := []metrics.Sample{
		{Name: "TotalVehicles", Value: float64(r.Total), Unit: metrics.UnitCount, Timestamp: at},
		{Name: "UpdateEligible", Value: float64(r.Counts[BucketEligible]), Unit: metrics.UnitCount, Timestamp: at},
		{Name: "UpdateInProgress", Value: float64(r.Counts[BucketUpdating]), Unit: metrics.UnitCount, Timestamp: at},
		{Name: "VehiclesUpToDate", Value: float64(r.Counts[BucketUpToDate]), Unit: metrics.UnitCount, Timestamp: at},
		{Name: "VehiclesOffline", Value: float64(r.Counts[BucketOffline]), Unit: metrics.UnitCount, Timestamp: at},
		{Name: "LowBatteryVehicles", Value: float64(r.LowBattery), Unit: metrics.UnitCount, Timestamp: at},
		{Name: "UpdateEligibilityRate", Value: r.EligibilityRate, Unit: metrics.UnitPercent, Timestamp: at},
	}

	versions := make([]string, 0, len(r.FirmwareHistogram))
	for v := range r.FirmwareHistogram {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	for _, v := range versions {
		samples = append(samples, metrics.Sample{
			Name:       "VehiclesByFirmware",
			Value:      float64(r.FirmwareHistogram[v]),
			Unit:       metrics.UnitCount,
			Timestamp:  at,
			Dimensions: map[string]string{"firmware_version": v},
		})
	}
	return samples
}
