package analyzer

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fleetota-io/fleetota/internal/metrics"
	"github.com/fleetota-io/fleetota/pkg/log"
)

// ReportPublisher broadcasts a rendered report to interested subscribers,
// e.g. an MQTT report topic.
type ReportPublisher interface {
	PublishReport(ctx context.Context, payload []byte) error
}

// Analyzer runs eligibility analysis passes: fetch, deduplicate, classify,
// aggregate, publish. The policy may be swapped at runtime via SetPolicy.
type Analyzer struct {
	fetcher   *Fetcher
	sink      metrics.Sink
	publisher ReportPublisher
	log       log.Logger

	mu     sync.RWMutex
	policy Policy

	lastMu sync.RWMutex
	last   *Report

	now func() time.Time
}

// Option customizes analyzer construction.
type Option func(*Analyzer)

// WithSink publishes report metrics to the given sink after every pass.
func WithSink(sink metrics.Sink) Option {
	return func(a *Analyzer) { a.sink = sink }
}

// WithReportPublisher broadcasts each report as JSON after every pass.
func WithReportPublisher(p ReportPublisher) Option {
	return func(a *Analyzer) { a.publisher = p }
}

// New creates an analyzer with the given fetch pipeline and policy.
func New(fetcher *Fetcher, policy Policy, logger log.Logger, opts ...Option) *Analyzer {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	a := &Analyzer{
		fetcher: fetcher,
		policy:  policy,
		log:     logger.WithName("analyzer"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Policy returns the currently active classification policy.
func (a *Analyzer) Policy() Policy {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.policy
}

// SetPolicy swaps the classification policy; the next pass uses it.
func (a *Analyzer) SetPolicy(p Policy) {
	a.mu.Lock()
	a.policy = p
	a.mu.Unlock()
}

// LastReport returns the most recent report, or nil before the first pass.
func (a *Analyzer) LastReport() *Report {
	a.lastMu.RLock()
	defer a.lastMu.RUnlock()
	return a.last
}

// RunOnce executes a single analysis pass and returns the report. Metric and
// report publication failures are logged, not returned: the computed report
// is valid regardless of downstream delivery.
func (a *Analyzer) RunOnce(ctx context.Context) (*Report, error) {
	start := a.now()

	snapshots, err := a.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	fleet := Latest(snapshots)

	policy := a.Policy()
	report := BuildReport(policy, fleet, a.now())

	metrics.AnalysisDuration.Observe(a.now().Sub(start).Seconds())

	a.lastMu.Lock()
	a.last = report
	a.lastMu.Unlock()

	a.log.Info("analysis pass complete",
		"vehicles", report.Total,
		"eligible", report.Counts[BucketEligible],
		"updating", report.Counts[BucketUpdating],
		"offline", report.Counts[BucketOffline],
		"up_to_date", report.Counts[BucketUpToDate],
		"low_battery", report.LowBattery,
		"eligibility_rate", report.EligibilityRate,
	)
	for _, v := range report.CriticalEligible {
		a.log.Warn("vehicle on critical firmware is eligible for immediate update",
			"vehicle", v.Key, "vin", v.VIN, "firmware", v.FirmwareVersion)
	}

	if a.sink != nil {
		if err := a.sink.Publish(ctx, MetricNamespace, report.Samples()); err != nil {
			a.log.Error(err, "failed to publish report metrics")
		}
	}
	if a.publisher != nil {
		payload, err := json.Marshal(report)
		if err != nil {
			a.log.Error(err, "failed to encode report")
		} else if err := a.publisher.PublishReport(ctx, payload); err != nil {
			a.log.Error(err, "failed to broadcast report")
		}
	}

	return report, nil
}

// Run executes analysis passes on the given interval until the context is
// cancelled, then returns nil. The first pass runs immediately. A failed
// pass is logged and the loop keeps going.
func (a *Analyzer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := a.RunOnce(ctx); err != nil {
			a.log.Error(err, "analysis pass failed")
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
