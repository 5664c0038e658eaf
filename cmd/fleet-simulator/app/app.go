// Package app assembles and runs the fleet simulator daemon.
package app

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fleetota-io/fleetota/cmd/fleet-simulator/app/options"
	"github.com/fleetota-io/fleetota/internal/server"
	"github.com/fleetota-io/fleetota/internal/simulator"
	"github.com/fleetota-io/fleetota/internal/storage"
	"github.com/fleetota-io/fleetota/internal/stream"
	"github.com/fleetota-io/fleetota/pkg/app"
	"github.com/fleetota-io/fleetota/pkg/log"
	"github.com/fleetota-io/fleetota/pkg/mqtt"
	"github.com/fleetota-io/fleetota/pkg/mqtt/topic"
)

const description = `The fleet simulator generates realistic telemetry for a fleet of
virtual vehicles: GPS movement around city centers, battery drain and charge
events, connectivity churn and firmware state. Every tick it uploads one JSON
snapshot per vehicle to the configured object store and can optionally stream
them over MQTT for live subscribers.

The simulation is reproducible: pass --simulator.seed to replay a run.`

// NewSimulatorCommand builds the fleet-simulator root command.
func NewSimulatorCommand() *app.App {
	opts := options.NewOptions()

	return app.NewApp("fleet-simulator", "Generate and publish simulated fleet telemetry",
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
	store = storage.WithRetry(store,
		opts.S3.RetryAttempts,
		time.Duration(opts.S3.RetryBackoffSeconds)*time.Second,
		logger,
	)

	var publisher simulator.SnapshotPublisher
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
		publisher = stream.NewPublisher(client, topic.NewBuilder(opts.Mqtt.TopicRoot))
		logger.Info("mqtt publisher enabled", "broker", opts.Mqtt.Broker, "topic_root", opts.Mqtt.TopicRoot)
	}

	fleet, err := simulator.NewFleet(
		opts.Simulator.FleetSize,
		opts.Simulator.Manufacturer,
		simulator.DefaultCatalog(),
		opts.Simulator.Seed,
	)
	if err != nil {
		return err
	}

	runner := simulator.NewRunner(fleet, store, publisher, simulator.RunnerConfig{
		TickInterval:         opts.Simulator.TickInterval,
		Duration:             opts.Simulator.Duration,
		MaxConcurrentUploads: opts.Simulator.MaxConcurrentUploads,
	}, logger)

	srv := server.New(opts.HTTP, logger)

	// The runner owns the run's lifetime: when the simulation finishes (or
	// the signal context fires) the server is shut down alongside it.
	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	g.Go(func() error {
		defer cancel()
		return runner.Run(runCtx)
	})
	g.Go(func() error {
		return srv.Run(runCtx)
	})
	return g.Wait()
}
