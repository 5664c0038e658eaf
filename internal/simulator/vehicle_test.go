package simulator

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/fleetota-io/fleetota/internal/telemetry"
)

func newTestVehicle(t *testing.T, seed int64) *Vehicle {
	t.Helper()
	return NewVehicle(1, "TESLA", DefaultCatalog(), rand.New(rand.NewSource(seed)))
}

func TestVehicleBatteryStaysWithinRange(t *testing.T) {
	ctx := context.Background()
	v := newTestVehicle(t, 11)

	for i := 0; i < 1000; i++ {
		snap := v.Tick(ctx, time.Minute)
		if snap.Battery.Percent < 5 || snap.Battery.Percent > 100 {
			t.Fatalf("tick %d: battery percent %v out of [5,100]", i, snap.Battery.Percent)
		}
	}
}

func TestVehicleOfflineHoldsCharge(t *testing.T) {
	ctx := context.Background()
	v := newTestVehicle(t, 12)

	if err := v.status.Event(ctx, EventDrop); err != nil {
		t.Fatalf("drop: %v", err)
	}
	before := v.BatteryPercent()

	// Offline vehicles may reconnect spontaneously; drain directly so the
	// status check is the only variable.
	v.drainBattery(10 * time.Minute)
	if got := v.BatteryPercent(); got != before {
		t.Fatalf("offline vehicle drained battery: %v -> %v", before, got)
	}
}

func TestVehicleOdometerMonotonic(t *testing.T) {
	ctx := context.Background()
	v := newTestVehicle(t, 13)

	prev := 0.0
	for i := 0; i < 200; i++ {
		snap := v.Tick(ctx, time.Minute)
		if snap.OdometerKm < prev {
			t.Fatalf("tick %d: odometer decreased %v -> %v", i, prev, snap.OdometerKm)
		}
		prev = snap.OdometerKm
	}
}

func TestVehicleWarnings(t *testing.T) {
	tests := []struct {
		name           string
		batteryPercent float64
		batteryHealth  float64
		signalDbm      int
		want           []string
	}{
		{name: "healthy", batteryPercent: 80, batteryHealth: 95, signalDbm: -60, want: []string{}},
		{name: "low battery", batteryPercent: 10, batteryHealth: 95, signalDbm: -60, want: []string{WarnLowBattery}},
		{name: "weak signal", batteryPercent: 80, batteryHealth: 95, signalDbm: -85, want: []string{WarnWeakSignal}},
		{name: "degraded health", batteryPercent: 80, batteryHealth: 60, signalDbm: -60, want: []string{WarnDegradedBattery}},
		{
			name:           "all at once",
			batteryPercent: 10,
			batteryHealth:  60,
			signalDbm:      -85,
			want:           []string{WarnLowBattery, WarnWeakSignal, WarnDegradedBattery},
		},
		{name: "boundaries are exclusive", batteryPercent: 15, batteryHealth: 70, signalDbm: -80, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestVehicle(t, 14)
			v.batteryPercent = tt.batteryPercent
			v.batteryHealth = tt.batteryHealth
			v.signalDbm = tt.signalDbm

			got := v.warnings()
			if len(got) != len(tt.want) {
				t.Fatalf("warnings = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("warnings = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestVehicleUpdateLifecycle(t *testing.T) {
	ctx := context.Background()
	v := newTestVehicle(t, 15)

	if err := v.BeginUpdate(ctx); err != nil {
		t.Fatalf("begin update: %v", err)
	}
	if got := v.Status(); got != telemetry.StatusUpdating {
		t.Fatalf("status after begin = %q, want %q", got, telemetry.StatusUpdating)
	}

	// Updating vehicles do not drift offline on their own.
	for i := 0; i < 100; i++ {
		v.Tick(ctx, time.Minute)
	}
	if got := v.Status(); got != telemetry.StatusUpdating {
		t.Fatalf("status during update = %q, want %q", got, telemetry.StatusUpdating)
	}

	if err := v.FinishUpdate(ctx, "2.0.0"); err != nil {
		t.Fatalf("finish update: %v", err)
	}
	if got := v.FirmwareVersion(); got != "2.0.0" {
		t.Fatalf("firmware after update = %q, want 2.0.0", got)
	}
	if got := v.Status(); got != telemetry.StatusOnline {
		t.Fatalf("status after finish = %q, want %q", got, telemetry.StatusOnline)
	}
	if v.updateAvailable || v.updateDownloaded {
		t.Fatal("update flags not cleared after finish")
	}
}

func TestVehicleBeginUpdateRequiresOnline(t *testing.T) {
	ctx := context.Background()
	v := newTestVehicle(t, 16)

	if err := v.status.Event(ctx, EventDrop); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if err := v.BeginUpdate(ctx); err == nil {
		t.Fatal("begin update on an offline vehicle should fail")
	}
}

func TestVehicleFaultPersistsUntilCleared(t *testing.T) {
	ctx := context.Background()
	v := newTestVehicle(t, 17)

	if err := v.Fault(ctx); err != nil {
		t.Fatalf("fault: %v", err)
	}
	for i := 0; i < 100; i++ {
		v.Tick(ctx, time.Minute)
	}
	if got := v.Status(); got != telemetry.StatusError {
		t.Fatalf("status after faulted ticks = %q, want %q", got, telemetry.StatusError)
	}

	if err := v.ClearFault(ctx); err != nil {
		t.Fatalf("clear fault: %v", err)
	}
	if got := v.Status(); got != telemetry.StatusOnline {
		t.Fatalf("status after clear = %q, want %q", got, telemetry.StatusOnline)
	}
}

func TestVehicleSnapshotFields(t *testing.T) {
	ctx := context.Background()
	v := newTestVehicle(t, 18)

	snap := v.Tick(ctx, time.Minute)

	if snap.VehicleID != 1 {
		t.Errorf("vehicle_id = %d, want 1", snap.VehicleID)
	}
	if len(snap.VIN) != 17 {
		t.Errorf("vin length = %d, want 17", len(snap.VIN))
	}
	if snap.Year < 2020 || snap.Year > 2025 {
		t.Errorf("year = %d, want within [2020,2025]", snap.Year)
	}
	if snap.Battery.Voltage < 350 || snap.Battery.Voltage > 400 {
		t.Errorf("voltage = %v, want within [350,400]", snap.Battery.Voltage)
	}
	if snap.Battery.Temperature < 15 || snap.Battery.Temperature > 45 {
		t.Errorf("temperature = %v, want within [15,45]", snap.Battery.Temperature)
	}
	if snap.Conn.SignalStrengthDbm < -90 || snap.Conn.SignalStrengthDbm > -40 {
		t.Errorf("signal = %d, want within [-90,-40]", snap.Conn.SignalStrengthDbm)
	}
	if snap.Conn.DataUsageMb < 10 || snap.Conn.DataUsageMb > 500 {
		t.Errorf("data usage = %v, want within [10,500]", snap.Conn.DataUsageMb)
	}
	if snap.GPS.Heading < 0 || snap.GPS.Heading > 359 {
		t.Errorf("heading = %d, want within [0,359]", snap.GPS.Heading)
	}
	if snap.Diag.HealthScore < 85 || snap.Diag.HealthScore > 100 {
		t.Errorf("health score = %v, want within [85,100]", snap.Diag.HealthScore)
	}
	if snap.Conn.Connected != (snap.Status != telemetry.StatusOffline) {
		t.Errorf("connected = %v inconsistent with status %q", snap.Conn.Connected, snap.Status)
	}
	if snap.Diag.ErrorCodes == nil || snap.Diag.Warnings == nil {
		t.Error("diagnostics slices must be non-nil so they encode as JSON arrays")
	}
}
