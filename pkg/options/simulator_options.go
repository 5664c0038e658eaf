package options

import (
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*SimulatorOptions)(nil)

// SimulatorOptions is the externally supplied configuration surface of the
// fleet simulator.
type SimulatorOptions struct {
	// FleetSize is the number of vehicles to simulate.
	FleetSize int `json:"fleet-size" mapstructure:"fleet-size"`

	// TickInterval is the telemetry generation interval.
	TickInterval time.Duration `json:"tick-interval" mapstructure:"tick-interval"`

	// Duration is the total simulation run time. Zero means run until
	// interrupted.
	Duration time.Duration `json:"duration" mapstructure:"duration"`

	// Manufacturer selects the WMI prefix used for generated VINs.
	Manufacturer string `json:"manufacturer" mapstructure:"manufacturer"`

	// MaxConcurrentUploads bounds the snapshot upload fan-out per iteration.
	MaxConcurrentUploads int `json:"max-concurrent-uploads" mapstructure:"max-concurrent-uploads"`

	// Seed seeds the fleet's random sources. Zero picks a time-based seed;
	// any other value makes runs reproducible.
	Seed int64 `json:"seed" mapstructure:"seed"`
}

func NewSimulatorOptions() *SimulatorOptions {
	return &SimulatorOptions{
		FleetSize:            100,
		TickInterval:         60 * time.Second,
		Duration:             60 * time.Minute,
		Manufacturer:         "TESLA",
		MaxConcurrentUploads: 10,
	}
}

func (o *SimulatorOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errs := []error{}

	if o.FleetSize < 1 || o.FleetSize > 10000 {
		errs = append(errs, errRange("simulator.fleet-size", o.FleetSize, 1, 10000))
	}
	if o.TickInterval < 10*time.Second || o.TickInterval > time.Hour {
		errs = append(errs, errRange("simulator.tick-interval", int(o.TickInterval.Seconds()), 10, 3600))
	}
	if o.MaxConcurrentUploads < 1 {
		errs = append(errs, errRange("simulator.max-concurrent-uploads", o.MaxConcurrentUploads, 1, 1000))
	}

	return errs
}

func (o *SimulatorOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.FleetSize, "simulator.fleet-size", o.FleetSize, "Number of vehicles to simulate.")
	fs.DurationVar(&o.TickInterval, "simulator.tick-interval", o.TickInterval, "Telemetry generation interval.")
	fs.DurationVar(&o.Duration, "simulator.duration", o.Duration, "Total simulation duration (0 = continuous).")
	fs.StringVar(&o.Manufacturer, "simulator.manufacturer", o.Manufacturer, "Manufacturer used for VIN generation.")
	fs.IntVar(&o.MaxConcurrentUploads, "simulator.max-concurrent-uploads", o.MaxConcurrentUploads, "Maximum concurrent snapshot uploads.")
	fs.Int64Var(&o.Seed, "simulator.seed", o.Seed, "Random seed (0 = time-based).")
}
