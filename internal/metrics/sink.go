// Package metrics defines the fleet metric publication contract and its
// Prometheus-backed implementation.
package metrics

import (
	"context"
	"time"
)

// Units attached to published samples.
const (
	UnitCount   = "Count"
	UnitPercent = "Percent"
)

// Sample is one named measurement with optional dimensions, mirroring the
// shape of a cloud metric datum.
type Sample struct {
	Name       string
	Value      float64
	Unit       string
	Timestamp  time.Time
	Dimensions map[string]string
}

// Sink publishes metric samples under a namespace.
type Sink interface {
	Publish(ctx context.Context, namespace string, samples []Sample) error
}
