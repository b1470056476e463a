package app

import (
	"context"
	"fmt"

	"systest/internal/config"
	"systest/internal/plugin"
	"systest/internal/project"
	"systest/internal/report"
	"systest/pkg/logging"
)

// Application is a loaded project with the plugin applied.
type Application struct {
	config  *Config
	project *project.Project
	plugin  *plugin.Plugin
}

// NewApplication initialises logging and loads the project.
//
// Configuration problems are returned as config.ConfigurationError or
// config.ConfigurationErrorCollection so callers can tell them apart from
// build failures.
func NewApplication(cfg *Config) (*Application, error) {
	logging.Init(cfg.LogLevel, cfg.Stderr)

	a := &Application{config: cfg}
	if err := a.load(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Application) load() error {
	projectCfg, err := config.LoadConfig(a.config.ProjectDir, a.config.ConfigFile)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load project configuration")
		return err
	}

	p, err := project.New(a.config.ProjectDir, projectCfg)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	p.Stdout = a.config.Stdout
	p.Stderr = a.config.Stderr

	applied, err := plugin.Apply(p)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to apply plugin")
		return err
	}
	applied.SystemTest.ApplyOptions(a.config.Options)

	a.project = p
	a.plugin = applied
	logging.Info("Bootstrap", "Loaded project %s", p.Dir)
	return nil
}

// Project returns the loaded project.
func (a *Application) Project() *project.Project {
	return a.project
}

// Plugin returns what the plugin registered.
func (a *Application) Plugin() *plugin.Plugin {
	return a.plugin
}

// ConfigPath is the project file location.
func (a *Application) ConfigPath() string {
	return config.ResolveConfigPath(a.project.Dir, a.config.ConfigFile)
}

// Run executes tasks, or the systemTest task when none are named, and
// reports progress to the configured output. In continuous mode it blocks
// until ctx is done.
func (a *Application) Run(ctx context.Context, tasks ...string) error {
	if len(tasks) == 0 {
		tasks = []string{plugin.SystemTestTaskName}
	}
	if a.config.Continuous {
		return a.runContinuous(ctx, tasks)
	}
	return a.runOnce(ctx, tasks)
}

// BuildFailedError is returned when the build ran and failed. The failure
// has already been reported to the user.
type BuildFailedError struct {
	Err error
}

func (e *BuildFailedError) Error() string {
	return e.Err.Error()
}

func (e *BuildFailedError) Unwrap() error {
	return e.Err
}

func (a *Application) runOnce(ctx context.Context, tasks []string) error {
	console := report.NewConsole(a.config.Stdout, a.config.Stderr, a.config.Quiet)
	defer console.Stop()

	result := a.project.Execute(ctx, console, tasks...)
	console.BuildFinished(result)
	if result.Failed() {
		return &BuildFailedError{Err: result.Err}
	}
	return nil
}
