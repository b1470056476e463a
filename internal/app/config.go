package app

import (
	"io"
	"os"

	"systest/internal/systemtest"
	"systest/pkg/logging"
)

// Config holds the settings for one invocation.
type Config struct {
	// ProjectDir is the directory holding the project file.
	ProjectDir string
	// ConfigFile is the project file, relative to ProjectDir unless absolute.
	ConfigFile string

	LogLevel logging.LogLevel
	// Quiet suppresses progress output.
	Quiet bool

	// Continuous reruns the build whenever its inputs change.
	Continuous bool
	// Options override the systemTest task's configured inputs.
	Options systemtest.Options

	Stdout io.Writer
	Stderr io.Writer
}

// NewConfig returns a config for projectDir with standard streams.
func NewConfig(projectDir, configFile string) *Config {
	return &Config{
		ProjectDir: projectDir,
		ConfigFile: configFile,
		LogLevel:   logging.LevelWarn,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}
