package app

import (
	"context"
	"fmt"

	"systest/internal/watch"
	"systest/pkg/logging"
)

// runContinuous builds, then rebuilds whenever the project file or the
// test directory changes. A changed project file is reloaded first, and the
// watched paths follow the reloaded project; if it no longer loads the error
// is shown and the previous project is kept.
func (a *Application) runContinuous(ctx context.Context, tasks []string) error {
	configPath := a.ConfigPath()

	w := watch.New(watch.DefaultDebounce, a.watchPaths()...)
	w.Exclude(a.project.BuildDir)

	return w.Run(ctx, func(ctx context.Context, changed []string) {
		if reloadNeeded(changed, configPath) {
			if err := a.load(); err != nil {
				fmt.Fprintf(a.config.Stdout, "\nFailed to reload %s:\n%v\n", configPath, err)
				a.waiting()
				return
			}
			w.Retarget(a.watchPaths(), []string{a.project.BuildDir})
		}

		if err := a.runOnce(ctx, tasks); err != nil {
			logging.Debug("Continuous", "Build failed: %v", err)
		}
		a.waiting()
	})
}

// watchPaths returns the inputs of the current project: its file and the
// system test directory.
func (a *Application) watchPaths() []string {
	return []string{a.ConfigPath(), a.plugin.SystemTest.TestDirectory}
}

func (a *Application) waiting() {
	fmt.Fprintln(a.config.Stdout)
	fmt.Fprintln(a.config.Stdout, "Waiting for changes to input files... (ctrl-c to exit)")
}

func reloadNeeded(changed []string, configPath string) bool {
	for _, c := range changed {
		if c == configPath {
			return true
		}
	}
	return false
}
