// Package stream adapts the MQTT client to the snapshot and report
// publication interfaces of the simulator and the update manager.
package stream

import (
	"context"
	"strconv"

	"github.com/fleetota-io/fleetota/pkg/mqtt"
	"github.com/fleetota-io/fleetota/pkg/mqtt/topic"
)

// Telemetry snapshots are fire-and-forget; reports are retained so a late
// subscriber immediately sees the current fleet state.
const (
	telemetryQoS = 0
	reportQoS    = 1
)

// Publisher streams snapshots and reports over MQTT.
type Publisher struct {
	client mqtt.Client
	topics *topic.Builder
}

// NewPublisher wraps a started MQTT client.
func NewPublisher(client mqtt.Client, topics *topic.Builder) *Publisher {
	return &Publisher{client: client, topics: topics}
}

// PublishSnapshot sends one vehicle snapshot to its telemetry topic.
func (p *Publisher) PublishSnapshot(ctx context.Context, vehicleID int, payload []byte) error {
	return p.client.Publish(ctx, p.topics.Telemetry(strconv.Itoa(vehicleID)), telemetryQoS, false, payload)
}

// PublishReport broadcasts the fleet status report, retained.
func (p *Publisher) PublishReport(ctx context.Context, payload []byte) error {
	return p.client.Publish(ctx, p.topics.Report(), reportQoS, true, payload)
}
