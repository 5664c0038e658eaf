package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CliOptions is implemented by each command's option struct.
type CliOptions interface {
	// AddFlags registers all flags on the command's flag set.
	AddFlags(fs *pflag.FlagSet)

	// Complete fills in derived option values after flags and config file
	// have been applied.
	Complete() error

	// Validate checks the final option values. An error here is fatal at
	// startup; options are never revalidated mid-run.
	Validate() error
}

// RunFunc is the application entry point, invoked after options are complete
// and valid. The context is canceled on SIGINT/SIGTERM.
type RunFunc func(ctx context.Context) error

// App assembles a cobra command with config-file support around a RunFunc.
type App struct {
	name        string
	short       string
	description string
	options     CliOptions
	run         RunFunc
}

// Option configures an App.
type Option func(*App)

// WithDescription sets the long command description.
func WithDescription(desc string) Option {
	return func(a *App) { a.description = desc }
}

// WithOptions attaches the command's option struct.
func WithOptions(opts CliOptions) Option {
	return func(a *App) { a.options = opts }
}

// WithRunFunc sets the application entry point.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) { a.run = run }
}

// NewApp creates an App with the given name and short description.
func NewApp(name, short string, opts ...Option) *App {
	a := &App{
		name:  name,
		short: short,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Command builds the cobra command for this application.
func (a *App) Command() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:           a.name,
		Short:         a.short,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.options != nil {
				if err := applyConfigFile(cmd.Flags(), a.options, cfgFile); err != nil {
					return err
				}
				if err := a.options.Complete(); err != nil {
					return err
				}
				if err := a.options.Validate(); err != nil {
					return fmt.Errorf("invalid configuration: %w", err)
				}
			}

			if a.run == nil {
				return nil
			}

			ctx := SetupSignalContext()
			return a.run(ctx)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "Path to a YAML configuration file (flags override file values).")
	if a.options != nil {
		a.options.AddFlags(cmd.Flags())
	}

	return cmd
}

// Run executes the application and returns its exit error, if any.
func (a *App) Run() error {
	return a.Command().Execute()
}

// applyConfigFile layers an optional config file and FLEETOTA_* environment
// variables under the command-line flags, then unmarshals the merged view
// into the options struct. Explicitly set flags always win.
func applyConfigFile(fs *pflag.FlagSet, opts CliOptions, cfgFile string) error {
	v := viper.New()

	v.SetEnvPrefix("FLEETOTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	if err := v.BindPFlags(fs); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := v.Unmarshal(opts); err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return nil
}
