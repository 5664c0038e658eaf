package options

import (
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*AnalyzerOptions)(nil)

// AnalyzerOptions is the update-eligibility policy and retrieval window of
// the update manager.
type AnalyzerOptions struct {
	// LatestFirmwareVersion is the campaign target; vehicles already on it
	// are up to date.
	LatestFirmwareVersion string `json:"latest-firmware-version" mapstructure:"latest-firmware-version"`

	// MinBatteryPercent is the minimum charge required to start an update.
	MinBatteryPercent float64 `json:"min-battery-percent" mapstructure:"min-battery-percent"`

	// CriticalVersions lists firmware versions flagged high priority when a
	// vehicle running one of them turns out eligible.
	CriticalVersions []string `json:"critical-versions" mapstructure:"critical-versions"`

	// WindowHours is how far back the telemetry listing looks.
	WindowHours int `json:"window-hours" mapstructure:"window-hours"`

	// MaxKeys caps a single listing call.
	MaxKeys int `json:"max-keys" mapstructure:"max-keys"`

	// Interval is the analysis period in daemon mode.
	Interval time.Duration `json:"interval" mapstructure:"interval"`
}

func NewAnalyzerOptions() *AnalyzerOptions {
	return &AnalyzerOptions{
		LatestFirmwareVersion: "2.0.0",
		MinBatteryPercent:     50,
		CriticalVersions:      []string{"1.2.0", "1.2.1"},
		WindowHours:           1,
		MaxKeys:               1000,
		Interval:              5 * time.Minute,
	}
}

func (o *AnalyzerOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errs := []error{}

	if o.LatestFirmwareVersion == "" {
		errs = append(errs, errRequired("analyzer.latest-firmware-version"))
	}
	if o.MinBatteryPercent < 0 || o.MinBatteryPercent > 100 {
		errs = append(errs, errRange("analyzer.min-battery-percent", int(o.MinBatteryPercent), 0, 100))
	}
	if o.WindowHours < 1 {
		errs = append(errs, errRange("analyzer.window-hours", o.WindowHours, 1, 24))
	}
	if o.MaxKeys < 1 {
		errs = append(errs, errRange("analyzer.max-keys", o.MaxKeys, 1, 10000))
	}
	if o.Interval < time.Minute {
		errs = append(errs, errRange("analyzer.interval", int(o.Interval.Seconds()), 60, 86400))
	}

	return errs
}

func (o *AnalyzerOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.LatestFirmwareVersion, "analyzer.latest-firmware-version", o.LatestFirmwareVersion, "Firmware version considered up to date.")
	fs.Float64Var(&o.MinBatteryPercent, "analyzer.min-battery-percent", o.MinBatteryPercent, "Minimum battery percent to be update eligible.")
	fs.StringSliceVar(&o.CriticalVersions, "analyzer.critical-versions", o.CriticalVersions, "Firmware versions flagged as high priority.")
	fs.IntVar(&o.WindowHours, "analyzer.window-hours", o.WindowHours, "How many hours of telemetry to analyze.")
	fs.IntVar(&o.MaxKeys, "analyzer.max-keys", o.MaxKeys, "Maximum number of snapshot keys per listing.")
	fs.DurationVar(&o.Interval, "analyzer.interval", o.Interval, "Analysis interval in daemon mode.")
}
