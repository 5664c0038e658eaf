// Package options aggregates the configuration surface of the update
// manager.
package options

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/fleetota-io/fleetota/pkg/app"
	"github.com/fleetota-io/fleetota/pkg/log"
	genericoptions "github.com/fleetota-io/fleetota/pkg/options"
)

var _ app.CliOptions = (*Options)(nil)

// Options is the full configuration of the update manager.
type Options struct {
	Analyzer *genericoptions.AnalyzerOptions `json:"analyzer" mapstructure:"analyzer"`
	S3       *genericoptions.S3Options       `json:"s3" mapstructure:"s3"`
	Mqtt     *genericoptions.MqttOptions     `json:"mqtt" mapstructure:"mqtt"`
	HTTP     *genericoptions.HTTPOptions     `json:"http" mapstructure:"http"`
	Log      *log.Options                    `json:"log" mapstructure:"log"`

	// Once runs a single analysis pass, prints the report and exits.
	Once bool `json:"once" mapstructure:"once"`

	// PolicyFile points at a JSON policy file that overrides the analyzer
	// flags and is hot-reloaded in daemon mode.
	PolicyFile string `json:"policy-file" mapstructure:"policy-file"`
}

// NewOptions creates an Options with sensible defaults.
func NewOptions() *Options {
	return &Options{
		Analyzer: genericoptions.NewAnalyzerOptions(),
		S3:       genericoptions.NewS3Options(),
		Mqtt:     genericoptions.NewMqttOptions(),
		HTTP:     genericoptions.NewHTTPOptions(),
		Log:      log.NewOptions(),
	}
}

// AddFlags registers every option group on the command's flag set.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Analyzer.AddFlags(fs)
	o.S3.AddFlags(fs)
	o.Mqtt.AddFlags(fs)
	o.HTTP.AddFlags(fs)
	o.Log.AddFlags(fs)

	fs.BoolVar(&o.Once, "once", o.Once, "Run a single analysis pass, print the report and exit.")
	fs.StringVar(&o.PolicyFile, "policy-file", o.PolicyFile, "Path to a JSON policy file; hot-reloaded in daemon mode.")
}

// Complete fills in derived values. Nothing to derive today.
func (o *Options) Complete() error {
	return nil
}

// Validate checks every option group and joins their failures.
func (o *Options) Validate() error {
	var errs []error
	errs = append(errs, o.Analyzer.Validate()...)
	errs = append(errs, o.S3.Validate()...)
	errs = append(errs, o.Mqtt.Validate()...)
	errs = append(errs, o.HTTP.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return errors.Join(errs...)
}
