// Package options aggregates the configuration surface of the fleet
// simulator.
package options

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/fleetota-io/fleetota/pkg/app"
	"github.com/fleetota-io/fleetota/pkg/log"
	genericoptions "github.com/fleetota-io/fleetota/pkg/options"
)

var _ app.CliOptions = (*Options)(nil)

// Options runs the whole configuration of the fleet simulator: the fleet
// itself, the outputs it writes to and the ambient concerns.
type Options struct {
	Simulator *genericoptions.SimulatorOptions `json:"simulator" mapstructure:"simulator"`
	S3        *genericoptions.S3Options        `json:"s3" mapstructure:"s3"`
	Mqtt      *genericoptions.MqttOptions      `json:"mqtt" mapstructure:"mqtt"`
	HTTP      *genericoptions.HTTPOptions      `json:"http" mapstructure:"http"`
	Log       *log.Options                     `json:"log" mapstructure:"log"`
}

// NewOptions creates an Options with sensible defaults.
func NewOptions() *Options {
	return &Options{
		Simulator: genericoptions.NewSimulatorOptions(),
		S3:        genericoptions.NewS3Options(),
		Mqtt:      genericoptions.NewMqttOptions(),
		HTTP:      genericoptions.NewHTTPOptions(),
		Log:       log.NewOptions(),
	}
}

// AddFlags registers every option group on the command's flag set.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Simulator.AddFlags(fs)
	o.S3.AddFlags(fs)
	o.Mqtt.AddFlags(fs)
	o.HTTP.AddFlags(fs)
	o.Log.AddFlags(fs)
}

// Complete fills in derived values. Nothing to derive today.
func (o *Options) Complete() error {
	return nil
}

// Validate checks every option group and joins their failures.
func (o *Options) Validate() error {
	var errs []error
	errs = append(errs, o.Simulator.Validate()...)
	errs = append(errs, o.S3.Validate()...)
	errs = append(errs, o.Mqtt.Validate()...)
	errs = append(errs, o.HTTP.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return errors.Join(errs...)
}
