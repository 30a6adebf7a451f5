// Package config loads the apidrift CLI configuration from file,
// environment, and defaults, and flattens nested extension settings into
// the dot-keyed form the engine's AnalysisContext expects.
package config

import (
	"errors"
	"fmt"
)

// Config is the top-level configuration struct for the apidrift CLI.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Locale          string         `mapstructure:"locale"`
	Reporters       []string       `mapstructure:"reporters"`
	DiagnosticsAddr string         `mapstructure:"diagnostics_addr"`
	Extensions      map[string]any `mapstructure:"extensions"`
}

// Known reporter names.
const (
	ReporterText = "text"
	ReporterJSON = "json"
	ReporterHTML = "html"
)

// ErrUnknownReporter is returned when the configuration names a reporter
// the CLI does not ship.
var ErrUnknownReporter = errors.New("unknown reporter")

// Validate checks the configuration for values the CLI cannot honor.
func (c *Config) Validate() error {
	for _, r := range c.Reporters {
		switch r {
		case ReporterText, ReporterJSON, ReporterHTML:
		default:
			return fmt.Errorf("%w: %s", ErrUnknownReporter, r)
		}
	}

	return nil
}
