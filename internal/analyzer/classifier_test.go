package analyzer

import (
	"testing"

	"github.com/fleetota-io/fleetota/internal/telemetry"
)

func snap(status telemetry.Status, firmware string, battery float64) *telemetry.Snapshot {
	return &telemetry.Snapshot{
		VehicleID: 1,
		VIN:       "5YJSA1E14MF123456",
		Status:    status,
		Firmware:  telemetry.FW{CurrentVersion: firmware},
		Battery:   telemetry.Battery{Percent: battery},
	}
}

func TestClassify(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name string
		in   *telemetry.Snapshot
		want Bucket
	}{
		{"updating outranks everything", snap(telemetry.StatusUpdating, "1.2.0", 5), BucketUpdating},
		{"updating even when on latest", snap(telemetry.StatusUpdating, "2.0.0", 100), BucketUpdating},
		{"offline outranks firmware state", snap(telemetry.StatusOffline, "2.0.0", 100), BucketOffline},
		{"offline outranks low battery", snap(telemetry.StatusOffline, "1.2.0", 10), BucketOffline},
		{"up to date wins over low battery", snap(telemetry.StatusOnline, "2.0.0", 10), BucketUpToDate},
		{"insufficient battery below threshold", snap(telemetry.StatusOnline, "1.5.0", 49.9), BucketInsufficientBattery},
		{"eligible at exact threshold", snap(telemetry.StatusOnline, "1.5.0", 50), BucketEligible},
		{"eligible with full battery", snap(telemetry.StatusOnline, "1.2.0", 100), BucketEligible},
		{"error status is classified by firmware and battery", snap(telemetry.StatusError, "1.5.0", 80), BucketEligible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.Classify(tt.in); got != tt.want {
				t.Fatalf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifyIsTotal(t *testing.T) {
	policy := DefaultPolicy()
	known := map[Bucket]bool{}
	for _, b := range Buckets {
		known[b] = true
	}

	statuses := []telemetry.Status{telemetry.StatusOnline, telemetry.StatusOffline, telemetry.StatusUpdating, telemetry.StatusError}
	versions := []string{"1.2.0", "1.5.0", "2.0.0", ""}
	batteries := []float64{5, 49.99, 50, 100}

	for _, st := range statuses {
		for _, fw := range versions {
			for _, bat := range batteries {
				got := policy.Classify(snap(st, fw, bat))
				if !known[got] {
					t.Fatalf("Classify(%q,%q,%v) returned unknown bucket %q", st, fw, bat, got)
				}
			}
		}
	}
}

func TestPolicyIsCritical(t *testing.T) {
	policy := DefaultPolicy()

	if !policy.IsCritical("1.2.0") || !policy.IsCritical("1.2.1") {
		t.Error("stock critical versions not recognized")
	}
	if policy.IsCritical("2.0.0") {
		t.Error("latest version flagged critical")
	}
	if policy.IsCritical("") {
		t.Error("empty version flagged critical")
	}
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{"default", DefaultPolicy(), false},
		{"empty latest version", Policy{MinBatteryPercent: 50}, true},
		{"negative threshold", Policy{LatestVersion: "2.0.0", MinBatteryPercent: -1}, true},
		{"threshold above 100", Policy{LatestVersion: "2.0.0", MinBatteryPercent: 101}, true},
		{"zero threshold is allowed", Policy{LatestVersion: "2.0.0"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
