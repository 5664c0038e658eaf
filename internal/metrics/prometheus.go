package metrics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink exposes published samples as gauges on a Prometheus
// registry. Gauge vectors are registered lazily on first use; the dimension
// keys of the first sample for a given name fix that metric's label schema.
type PrometheusSink struct {
	registry prometheus.Registerer

	mu     sync.Mutex
	gauges map[string]*prometheus.GaugeVec
}

var _ Sink = (*PrometheusSink)(nil)

// NewPrometheusSink creates a sink registering on the given registerer.
// Passing nil uses the default registerer.
func NewPrometheusSink(registry prometheus.Registerer) *PrometheusSink {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	return &PrometheusSink{
		registry: registry,
		gauges:   make(map[string]*prometheus.GaugeVec),
	}
}

// Publish sets one gauge per sample. The namespace and sample name are
// converted to the conventional snake_case form, e.g. namespace "FleetOTA"
// and sample "UpdateEligible" become fleet_ota_update_eligible.
func (s *PrometheusSink) Publish(_ context.Context, namespace string, samples []Sample) error {
	for _, sample := range samples {
		gauge, err := s.gauge(namespace, sample)
		if err != nil {
			return err
		}
		gauge.With(prometheus.Labels(sample.Dimensions)).Set(sample.Value)
	}
	return nil
}

func (s *PrometheusSink) gauge(namespace string, sample Sample) (*prometheus.GaugeVec, error) {
	name := snakeCase(namespace) + "_" + snakeCase(sample.Name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if g, ok := s.gauges[name]; ok {
		return g, nil
	}

	labels := make([]string, 0, len(sample.Dimensions))
	for k := range sample.Dimensions {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: name,
		Help: fmt.Sprintf("Fleet metric %s (%s).", sample.Name, sample.Unit),
	}, labels)
	if err := s.registry.Register(g); err != nil {
		return nil, fmt.Errorf("register gauge %q: %w", name, err)
	}
	s.gauges[name] = g
	return g, nil
}

// snakeCase converts CamelCase metric names to snake_case, keeping digit
// runs attached to the preceding word.
func snakeCase(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 8)

	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if i > 0 && (prevLower || nextLower) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
