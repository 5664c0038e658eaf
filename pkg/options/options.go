package options

import (
	"fmt"
	"net"

	"github.com/spf13/pflag"
)

// IOptions is the contract every option group implements so the application
// layer can validate and register them uniformly.
type IOptions interface {
	// Validate checks the option values and returns all problems found.
	Validate() []error

	// AddFlags binds the options to the given flag set.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}

// ValidateAddress checks that addr is a valid "host:port" string.
func ValidateAddress(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	return nil
}

func errRequired(flag string) error {
	return fmt.Errorf("--%s is required", flag)
}

func errRange(flag string, got, min, max int) error {
	return fmt.Errorf("--%s=%d is out of range [%d,%d]", flag, got, min, max)
}
