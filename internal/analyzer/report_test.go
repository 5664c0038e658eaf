package analyzer

import (
	"strings"
	"testing"
	"time"

	"github.com/fleetota-io/fleetota/internal/telemetry"
)

func TestBuildReportAggregates(t *testing.T) {
	policy := DefaultPolicy()
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)

	fleet := []*telemetry.Snapshot{
		snap(telemetry.StatusUpdating, "1.5.0", 80),
		snap(telemetry.StatusOffline, "1.2.0", 80),
		snap(telemetry.StatusOnline, "2.0.0", 80),
		snap(telemetry.StatusOnline, "1.5.0", 20),
		snap(telemetry.StatusOnline, "1.2.0", 90),
		snap(telemetry.StatusOnline, "1.6.0", 90),
	}
	for i, s := range fleet {
		s.VehicleID = i + 1
	}

	r := BuildReport(policy, fleet, now)

	if r.Total != 6 {
		t.Fatalf("total = %d, want 6", r.Total)
	}

	wantCounts := map[Bucket]int{
		BucketUpdating:            1,
		BucketOffline:             1,
		BucketUpToDate:            1,
		BucketInsufficientBattery: 1,
		BucketEligible:            2,
	}
	sum := 0
	for b, want := range wantCounts {
		if got := r.Counts[b]; got != want {
			t.Errorf("count[%s] = %d, want %d", b, got, want)
		}
		sum += r.Counts[b]
	}
	if sum != r.Total {
		t.Errorf("bucket counts sum to %d, want %d", sum, r.Total)
	}

	if r.LowBattery != 1 {
		t.Errorf("low battery = %d, want 1", r.LowBattery)
	}

	wantRate := 2.0 / 6.0 * 100
	if r.EligibilityRate != wantRate {
		t.Errorf("eligibility rate = %v, want %v", r.EligibilityRate, wantRate)
	}

	if got := r.FirmwareHistogram["1.2.0"]; got != 2 {
		t.Errorf("firmware 1.2.0 count = %d, want 2", got)
	}

	// Vehicle 5 is eligible on critical 1.2.0; vehicle 2 is also on 1.2.0
	// but offline, so only one critical-eligible entry.
	if len(r.CriticalEligible) != 1 || r.CriticalEligible[0].Key != "5" {
		t.Errorf("critical eligible = %+v, want exactly vehicle 5", r.CriticalEligible)
	}
}

func TestBuildReportEmptyFleet(t *testing.T) {
	r := BuildReport(DefaultPolicy(), nil, time.Now())

	if r.Total != 0 {
		t.Fatalf("total = %d, want 0", r.Total)
	}
	if r.EligibilityRate != 0 {
		t.Fatalf("eligibility rate = %v, want 0 for empty fleet", r.EligibilityRate)
	}
	for _, b := range Buckets {
		if r.Counts[b] != 0 {
			t.Fatalf("count[%s] = %d, want 0", b, r.Counts[b])
		}
	}
}

func TestReportSamples(t *testing.T) {
	policy := DefaultPolicy()
	now := time.Now()

	fleet := []*telemetry.Snapshot{
		snap(telemetry.StatusOnline, "1.2.0", 90),
		snap(telemetry.StatusOnline, "2.0.0", 90),
	}
	fleet[0].VehicleID, fleet[1].VehicleID = 1, 2

	samples := BuildReport(policy, fleet, now).Samples()

	byName := map[string]float64{}
	firmwareSamples := 0
	for _, s := range samples {
		if s.Name == "VehiclesByFirmware" {
			firmwareSamples++
			continue
		}
		byName[s.Name] = s.Value
	}

	want := map[string]float64{
		"TotalVehicles":         2,
		"UpdateEligible":        1,
		"UpdateInProgress":      0,
		"VehiclesUpToDate":      1,
		"VehiclesOffline":       0,
		"LowBatteryVehicles":    0,
		"UpdateEligibilityRate": 50,
	}
	for name, v := range want {
		got, ok := byName[name]
		if !ok {
			t.Errorf("missing sample %q", name)
			continue
		}
		if got != v {
			t.Errorf("sample %q = %v, want %v", name, got, v)
		}
	}
	if firmwareSamples != 2 {
		t.Errorf("firmware samples = %d, want 2", firmwareSamples)
	}
}

func TestRenderIncludesBucketsAndCritical(t *testing.T) {
	policy := DefaultPolicy()
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)

	fleet := []*telemetry.Snapshot{
		snap(telemetry.StatusOnline, "1.2.0", 90),
	}
	fleet[0].VehicleID = 7

	out := Render(BuildReport(policy, fleet, now))

	for _, want := range []string{
		"Eligible for update",
		"Update in progress",
		"Offline",
		"Up to date",
		"Insufficient battery",
		"Update eligibility rate: 100.0%",
		"Critical firmware",
		"1.2.0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered report missing %q:\n%s", want, out)
		}
	}
}
