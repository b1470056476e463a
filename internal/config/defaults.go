package config

import (
	"fmt"

	"github.com/creasty/defaults"
)

const (
	// DefaultConfigFileName is the project file looked up in the project directory.
	DefaultConfigFileName = "systest.yaml"
)

// GetDefaultConfig returns a configuration with every struct default applied.
func GetDefaultConfig() ProjectConfig {
	var cfg ProjectConfig
	if err := defaults.Set(&cfg); err != nil {
		// Tags are static; a failure here is a programming error.
		panic(fmt.Errorf("invalid config defaults: %w", err))
	}
	return cfg
}
