package telemetry

import (
	"encoding/json"
	"time"
)

// Status is the vehicle operational status carried on the wire.
type Status string

const (
	StatusOnline   Status = "online"
	StatusOffline  Status = "offline"
	StatusUpdating Status = "updating"
	StatusError    Status = "error"
)

// TimestampLayout is the fixed-width RFC 3339 UTC layout used for snapshot
// timestamps. The width is constant (nanoseconds always padded, always 'Z'),
// which is what makes lexicographic timestamp comparison in the analyzer
// valid. Changing this layout requires switching the analyzer to parsed-time
// comparison.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTimestamp renders t in the canonical snapshot timestamp format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Snapshot is one immutable telemetry reading for one vehicle at one tick.
// The JSON field names are the external storage contract; do not rename.
type Snapshot struct {
	VehicleID  int     `json:"vehicle_id"`
	VIN        string  `json:"vin"`
	Timestamp  string  `json:"timestamp"`
	Model      string  `json:"model"`
	Year       int     `json:"year"`
	GPS        GPS     `json:"gps"`
	Battery    Battery `json:"battery"`
	Conn       Conn    `json:"connectivity"`
	Status     Status  `json:"status"`
	OdometerKm float64 `json:"odometer_km"`
	Firmware   FW      `json:"firmware"`
	Diag       Diag    `json:"diagnostics"`
}

// GPS is the location section of a snapshot.
type GPS struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	SpeedKmh  float64 `json:"speed_kmh"`
	Heading   int     `json:"heading"`
}

// Battery is the battery section of a snapshot.
type Battery struct {
	Percent     float64 `json:"percent"`
	Health      float64 `json:"health"`
	Voltage     float64 `json:"voltage"`
	Temperature float64 `json:"temperature_celsius"`
}

// Conn is the connectivity section of a snapshot.
type Conn struct {
	Type              string  `json:"type"`
	SignalStrengthDbm int     `json:"signal_strength_dbm"`
	DataUsageMb       float64 `json:"data_usage_mb"`
	Connected         bool    `json:"connected"`
}

// FW is the firmware section of a snapshot.
type FW struct {
	CurrentVersion   string `json:"current_version"`
	UpdateAvailable  bool   `json:"update_available"`
	UpdateDownloaded bool   `json:"update_downloaded"`
	LastUpdateCheck  string `json:"last_update_check"`
}

// Diag is the diagnostics section of a snapshot.
type Diag struct {
	ErrorCodes  []string `json:"error_codes"`
	Warnings    []string `json:"warnings"`
	HealthScore float64  `json:"health_score"`
}

// Encode serializes the snapshot for storage.
func (s *Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// Decode parses a stored snapshot. Missing fields are left at their zero
// values; the analyzer tolerates partial records rather than rejecting them.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
