package topic

import (
	"fmt"
)

// Constants defining the standard topic segments. These are the wire
// contract between the simulator and any live subscriber; changing them
// breaks existing consumers.
const (
	// SuffixTelemetry carries one snapshot per vehicle per tick.
	// Structure: {root}/telemetry/{vehicleID}
	SuffixTelemetry = "telemetry"

	// SuffixReport carries the fleet status report produced by the update
	// manager. Structure: {root}/report
	SuffixReport = "report"
)

// Builder constructs MQTT topic strings under a fixed root namespace.
type Builder struct {
	root string
}

// NewBuilder creates a Builder with the specified root namespace,
// e.g. "fleetota/v1".
func NewBuilder(root string) *Builder {
	return &Builder{root: root}
}

// Telemetry returns the topic for a vehicle's snapshot stream.
func (b *Builder) Telemetry(vehicleID string) string {
	return fmt.Sprintf("%s/%s/%s", b.root, SuffixTelemetry, vehicleID)
}

// TelemetryWildcard returns the filter matching all vehicles' telemetry.
func (b *Builder) TelemetryWildcard() string {
	return fmt.Sprintf("%s/%s/+", b.root, SuffixTelemetry)
}

// Report returns the fleet status report topic.
func (b *Builder) Report() string {
	return fmt.Sprintf("%s/%s", b.root, SuffixReport)
}
