// Package app assembles and runs the update manager.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fleetota-io/fleetota/cmd/update-manager/app/options"
	"github.com/fleetota-io/fleetota/internal/analyzer"
	"github.com/fleetota-io/fleetota/internal/metrics"
	"github.com/fleetota-io/fleetota/internal/server"
	"github.com/fleetota-io/fleetota/internal/storage"
	"github.com/fleetota-io/fleetota/internal/stream"
	"github.com/fleetota-io/fleetota/pkg/app"
	"github.com/fleetota-io/fleetota/pkg/log"
	"github.com/fleetota-io/fleetota/pkg/mqtt"
	"github.com/fleetota-io/fleetota/pkg/mqtt/topic"
)

const description = `The update manager reads the latest telemetry snapshot of every vehicle
from the object store, keeps the most recent record per vehicle and classifies
each one into exactly one update eligibility bucket: update in progress,
offline, up to date, insufficient battery or eligible.

With --once it prints the report as a table and exits. As a daemon it repeats
the analysis on an interval, exposes the current report on GET /report, pushes
fleet gauges to /metrics and hot-reloads the --policy-file on change.`

// NewUpdateManagerCommand builds the update-manager root command.
func NewUpdateManagerCommand() *app.App {
	opts := options.NewOptions()

	return app.NewApp("update-manager", "Classify fleet vehicles by firmware update eligibility",
		app.WithDescription(description),
		app.WithOptions(opts),
		app.WithRunFunc(func(ctx context.Context) error {
			return run(ctx, opts)
		}),
	)
}

func run(ctx context.Context, opts *options.Options) error {
	logger := log.NewLogger(opts.Log)
	defer logger.Sync()

	store, err := storage.NewMinioStore(ctx, opts.S3, logger)
	if err != nil {
		return err
	}

	policy := analyzer.Policy{
		LatestVersion:     opts.Analyzer.LatestFirmwareVersion,
		MinBatteryPercent: opts.Analyzer.MinBatteryPercent,
		CriticalVersions:  opts.Analyzer.CriticalVersions,
	}
	if opts.PolicyFile != "" {
		policy, err = analyzer.LoadPolicy(opts.PolicyFile)
		if err != nil {
			return err
		}
	}
	if err := policy.Validate(); err != nil {
		return err
	}

	fetcher := analyzer.NewFetcher(store,
		time.Duration(opts.Analyzer.WindowHours)*time.Hour,
		opts.Analyzer.MaxKeys,
		logger,
	)

	analyzerOpts := []analyzer.Option{analyzer.WithSink(metrics.NewPrometheusSink(nil))}

	if opts.Mqtt.Enabled {
		cfg := opts.Mqtt.ToClientConfig()
		cfg.Logger = logger
		client, err := mqtt.NewClient(cfg)
		if err != nil {
			return err
		}
		if err := client.Start(ctx); err != nil {
			return err
		}
		defer client.Disconnect(context.Background())
		if err := client.AwaitConnection(ctx); err != nil {
			return err
		}
		publisher := stream.NewPublisher(client, topic.NewBuilder(opts.Mqtt.TopicRoot))
		analyzerOpts = append(analyzerOpts, analyzer.WithReportPublisher(publisher))
	}

	a := analyzer.New(fetcher, policy, logger, analyzerOpts...)

	if opts.Once {
		report, err := a.RunOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Print(analyzer.Render(report))
		return nil
	}

	if opts.PolicyFile != "" {
		stop, err := analyzer.WatchPolicy(opts.PolicyFile, logger, a.SetPolicy)
		if err != nil {
			return err
		}
		defer stop()
	}

	srv := server.New(opts.HTTP, logger)
	srv.Handle("/report", reportHandler(a))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Run(gctx, opts.Analyzer.Interval)
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})
	return g.Wait()
}

// reportHandler serves the most recent report as JSON; 503 before the first
// pass completes.
func reportHandler(a *analyzer.Analyzer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		report := a.LastReport()
		if report == nil {
			http.Error(w, "no report yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
