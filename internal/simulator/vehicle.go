package simulator

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/looplab/fsm"

	"github.com/fleetota-io/fleetota/internal/simulator/vin"
	"github.com/fleetota-io/fleetota/internal/telemetry"
)

// Operational status transition events.
const (
	// EventDrop models an unexpected loss of connectivity (online -> offline).
	EventDrop = "drop"
	// EventReconnect models the vehicle coming back (offline -> online).
	EventReconnect = "reconnect"
	// EventBeginUpdate is fired externally by the update workflow
	// (online -> updating); the simulation never enters it spontaneously.
	EventBeginUpdate = "begin_update"
	// EventFinishUpdate completes an update (updating -> online).
	EventFinishUpdate = "finish_update"
	// EventFault moves the vehicle into the terminal error state; only an
	// external actor clears it via EventClearFault.
	EventFault = "fault"
	// EventClearFault recovers a faulted vehicle (error -> online).
	EventClearFault = "clear_fault"
)

// Per-tick tuning constants, expressed per minute of simulated time where
// applicable.
const (
	batteryFloorPercent   = 5 // vehicles never fully die; preserved simulation choice
	batteryDrainMinPerMin = 0.1
	batteryDrainMaxPerMin = 0.5
	chargeThreshold       = 30
	chargeProbability     = 0.10

	connectivityChangeProbability = 0.05
	goOfflineProbability          = 0.02
	comeOnlineProbability         = 0.30
	updateAvailableProbability    = 0.30

	lowBatteryWarnPercent  = 15
	weakSignalWarnDbm      = -80
	degradedHealthWarnPct  = 70
	signalStrengthMinDbm   = -90
	signalStrengthMaxDbm   = -40
)

// Warning identifiers emitted in snapshot diagnostics.
const (
	WarnLowBattery      = "LOW_BATTERY"
	WarnWeakSignal      = "WEAK_SIGNAL"
	WarnDegradedBattery = "BATTERY_HEALTH_DEGRADED"
)

// Vehicle owns the full mutable state of one simulated vehicle: identity,
// movement model, battery, connectivity and firmware. State is never shared;
// ticking different vehicles concurrently is safe. A single vehicle must not
// be ticked from two goroutines at once.
type Vehicle struct {
	id    int
	vinNo string
	model string
	year  int

	movement *Movement
	status   *fsm.FSM

	firmwareVersion  string
	batteryPercent   float64
	batteryHealth    float64
	odometerKm       float64
	connectivityType string
	signalDbm        int
	updateAvailable  bool
	updateDownloaded bool
	lastUpdateCheck  time.Time

	catalog *Catalog
	rng     *rand.Rand
	now     func() time.Time
}

// NewVehicle creates a vehicle with randomized but plausible initial state:
// battery between 20 and 100 percent, odometer between 1000 and 150000 km,
// firmware skewed toward older catalog versions, placed near a random
// catalog city.
func NewVehicle(id int, manufacturer string, catalog *Catalog, rng *rand.Rand) *Vehicle {
	lat, lon := StartNearCity(catalog, rng)

	v := &Vehicle{
		id:    id,
		vinNo: vin.Generate(manufacturer, rng),
		model: catalog.VehicleModels[rng.Intn(len(catalog.VehicleModels))],
		year:  catalog.YearMin + rng.Intn(catalog.YearMax-catalog.YearMin+1),

		movement: NewMovement(lat, lon, rng),

		firmwareVersion:  catalog.pickFirmware(rng),
		batteryPercent:   20 + rng.Float64()*80,
		batteryHealth:    85 + rng.Float64()*15,
		odometerKm:       float64(1000 + rng.Intn(149001)),
		connectivityType: catalog.ConnectivityTypes[rng.Intn(len(catalog.ConnectivityTypes))],
		signalDbm:        randomSignalDbm(rng),
		updateAvailable:  rng.Float64() < updateAvailableProbability,
		lastUpdateCheck:  time.Now(),

		catalog: catalog,
		rng:     rng,
		now:     time.Now,
	}
	v.status = newStatusFSM()
	return v
}

// newStatusFSM builds the closed operational-status state machine.
// Only drop/reconnect fire spontaneously during ticks; the update and fault
// events are reserved for external workflows.
func newStatusFSM() *fsm.FSM {
	return fsm.NewFSM(
		string(telemetry.StatusOnline),
		fsm.Events{
			{Name: EventDrop, Src: []string{string(telemetry.StatusOnline)}, Dst: string(telemetry.StatusOffline)},
			{Name: EventReconnect, Src: []string{string(telemetry.StatusOffline)}, Dst: string(telemetry.StatusOnline)},
			{Name: EventBeginUpdate, Src: []string{string(telemetry.StatusOnline)}, Dst: string(telemetry.StatusUpdating)},
			{Name: EventFinishUpdate, Src: []string{string(telemetry.StatusUpdating)}, Dst: string(telemetry.StatusOnline)},
			{Name: EventFault, Src: []string{
				string(telemetry.StatusOnline),
				string(telemetry.StatusOffline),
				string(telemetry.StatusUpdating),
			}, Dst: string(telemetry.StatusError)},
			{Name: EventClearFault, Src: []string{string(telemetry.StatusError)}, Dst: string(telemetry.StatusOnline)},
		},
		fsm.Callbacks{},
	)
}

// ID returns the registry-assigned vehicle identifier.
func (v *Vehicle) ID() int { return v.id }

// VIN returns the vehicle identification number.
func (v *Vehicle) VIN() string { return v.vinNo }

// Status returns the current operational status.
func (v *Vehicle) Status() telemetry.Status {
	return telemetry.Status(v.status.Current())
}

// BatteryPercent returns the current charge level.
func (v *Vehicle) BatteryPercent() float64 { return v.batteryPercent }

// FirmwareVersion returns the currently installed firmware version.
func (v *Vehicle) FirmwareVersion() string { return v.firmwareVersion }

// BeginUpdate transitions the vehicle into the updating state. It fails when
// the vehicle is not online.
func (v *Vehicle) BeginUpdate(ctx context.Context) error {
	return v.status.Event(ctx, EventBeginUpdate)
}

// FinishUpdate completes an in-flight update, installing the target version.
func (v *Vehicle) FinishUpdate(ctx context.Context, version string) error {
	if err := v.status.Event(ctx, EventFinishUpdate); err != nil {
		return err
	}
	v.firmwareVersion = version
	v.updateAvailable = false
	v.updateDownloaded = false
	v.lastUpdateCheck = v.now()
	return nil
}

// Fault moves the vehicle into the error state.
func (v *Vehicle) Fault(ctx context.Context) error {
	return v.status.Event(ctx, EventFault)
}

// ClearFault recovers a faulted vehicle.
func (v *Vehicle) ClearFault(ctx context.Context) error {
	return v.status.Event(ctx, EventClearFault)
}

// Tick advances the vehicle by elapsed simulated time and returns the
// resulting snapshot. Post-condition: battery percent stays within [5,100].
func (v *Vehicle) Tick(ctx context.Context, elapsed time.Duration) *telemetry.Snapshot {
	lat, lon := v.movement.Advance(elapsed)

	v.drainBattery(elapsed)

	// Per-tick odometer approximation: one minute of travel at current speed.
	v.odometerKm += v.movement.SpeedKmh() / 60

	if v.rng.Float64() < connectivityChangeProbability {
		v.connectivityType = v.catalog.ConnectivityTypes[v.rng.Intn(len(v.catalog.ConnectivityTypes))]
		v.signalDbm = randomSignalDbm(v.rng)
	}

	v.transitionStatus(ctx)

	return v.snapshot(lat, lon)
}

// drainBattery applies consumption (and occasional charging) while the
// vehicle is online. Offline, updating and faulted vehicles hold their
// charge.
func (v *Vehicle) drainBattery(elapsed time.Duration) {
	if v.Status() != telemetry.StatusOnline {
		return
	}

	minutes := elapsed.Minutes()
	drain := (batteryDrainMinPerMin + v.rng.Float64()*(batteryDrainMaxPerMin-batteryDrainMinPerMin)) * minutes
	v.batteryPercent = math.Max(batteryFloorPercent, v.batteryPercent-drain)

	if v.batteryPercent < chargeThreshold && v.rng.Float64() < chargeProbability {
		v.batteryPercent = math.Min(100, v.batteryPercent+10+v.rng.Float64()*20)
	}
}

// transitionStatus applies the spontaneous connectivity transitions.
// Updating and error states persist until changed externally.
func (v *Vehicle) transitionStatus(ctx context.Context) {
	switch v.Status() {
	case telemetry.StatusOnline:
		if v.rng.Float64() < goOfflineProbability {
			v.mustEvent(ctx, EventDrop)
		}
	case telemetry.StatusOffline:
		if v.rng.Float64() < comeOnlineProbability {
			v.mustEvent(ctx, EventReconnect)
		}
	}
}

// mustEvent fires a transition whose source state was just checked; any
// error other than a benign no-transition indicates a broken event table.
func (v *Vehicle) mustEvent(ctx context.Context, event string) {
	err := v.status.Event(ctx, event)
	if err == nil {
		return
	}
	var noop fsm.NoTransitionError
	if errors.As(err, &noop) {
		return
	}
	panic("simulator: invalid status transition " + event + " from " + v.status.Current() + ": " + err.Error())
}

// warnings derives the diagnostic warning list from current state. Multiple
// warnings may co-occur; the order is fixed but not significant.
func (v *Vehicle) warnings() []string {
	warnings := []string{}
	if v.batteryPercent < lowBatteryWarnPercent {
		warnings = append(warnings, WarnLowBattery)
	}
	if v.signalDbm < weakSignalWarnDbm {
		warnings = append(warnings, WarnWeakSignal)
	}
	if v.batteryHealth < degradedHealthWarnPct {
		warnings = append(warnings, WarnDegradedBattery)
	}
	return warnings
}

// snapshot freezes the current state into an immutable telemetry record.
func (v *Vehicle) snapshot(lat, lon float64) *telemetry.Snapshot {
	status := v.Status()

	return &telemetry.Snapshot{
		VehicleID: v.id,
		VIN:       v.vinNo,
		Timestamp: telemetry.FormatTimestamp(v.now()),
		Model:     v.model,
		Year:      v.year,
		GPS: telemetry.GPS{
			Latitude:  lat,
			Longitude: lon,
			SpeedKmh:  round2(v.movement.SpeedKmh()),
			Heading:   v.rng.Intn(360),
		},
		Battery: telemetry.Battery{
			Percent:     round2(v.batteryPercent),
			Health:      round2(v.batteryHealth),
			Voltage:     round2(350 + v.rng.Float64()*50),
			Temperature: round1(15 + v.rng.Float64()*30),
		},
		Conn: telemetry.Conn{
			Type:              v.connectivityType,
			SignalStrengthDbm: v.signalDbm,
			DataUsageMb:       round2(10 + v.rng.Float64()*490),
			Connected:         status != telemetry.StatusOffline,
		},
		Status:     status,
		OdometerKm: round1(v.odometerKm),
		Firmware: telemetry.FW{
			CurrentVersion:   v.firmwareVersion,
			UpdateAvailable:  v.updateAvailable,
			UpdateDownloaded: v.updateDownloaded,
			LastUpdateCheck:  telemetry.FormatTimestamp(v.lastUpdateCheck),
		},
		Diag: telemetry.Diag{
			ErrorCodes:  []string{},
			Warnings:    v.warnings(),
			HealthScore: round1(85 + v.rng.Float64()*15),
		},
	}
}

func randomSignalDbm(rng *rand.Rand) int {
	return signalStrengthMinDbm + rng.Intn(signalStrengthMaxDbm-signalStrengthMinDbm+1)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
