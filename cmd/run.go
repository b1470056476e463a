package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"systest/internal/app"
	"systest/internal/systemtest"
)

// runFlags are the per-invocation overrides of the systemTest task.
type runFlags struct {
	verificationTimeoutSeconds string
	includeSuites              string
	extraArguments             []string
	debugServices              []string
	debugServiceInstances      []string
	continuous                 bool
}

// options returns the overrides that were set on the command line. String
// overrides given an empty value are rejected rather than ignored.
func (f *runFlags) options(cmd *cobra.Command) (systemtest.Options, error) {
	var o systemtest.Options
	flags := cmd.Flags()
	if flags.Changed("verification-timeout-seconds") {
		if f.verificationTimeoutSeconds == "" {
			return o, fmt.Errorf("--verification-timeout-seconds must not be empty")
		}
		o.VerificationTimeoutSeconds = f.verificationTimeoutSeconds
	}
	if flags.Changed("include-suites") {
		if f.includeSuites == "" {
			return o, fmt.Errorf("--include-suites must not be empty; use '.*' to run every suite")
		}
		o.IncludeSuites = f.includeSuites
	}
	if flags.Changed("extra-argument") {
		o.ExtraArguments = f.extraArguments
	}
	if flags.Changed("debug-service") {
		o.DebugServices = f.debugServices
	}
	if flags.Changed("debug-service-instance") {
		o.DebugServiceInstances = f.debugServiceInstances
	}
	return o, nil
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [task...]",
		Short: "Run tasks, by default systemTest",
		Long: `Runs the named tasks and the tasks they depend on. With no task named,
systemTest runs.

Each task prints a "> Task :name" line with its outcome, followed by a
BUILD SUCCESSFUL or BUILD FAILED summary. Ctrl+C stops the system test
executor and fails the build.

Examples:
  systest run
  systest run --include-suites='.*smoke.*' --verification-timeout-seconds=120
  systest run --debug-service=my-service --debug-service-instance=other-service-1
  systest run check --continuous`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.appConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Continuous = flags.continuous
			cfg.Options, err = flags.options(cmd)
			if err != nil {
				return err
			}

			application, err := app.NewApplication(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return application.Run(ctx, args...)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.verificationTimeoutSeconds, "verification-timeout-seconds", "",
		"Seconds to wait for expectations to be met")
	f.StringVar(&flags.includeSuites, "include-suites", "",
		"Regular expression matched against suite paths to select the suites to run")
	f.StringArrayVar(&flags.extraArguments, "extra-argument", nil,
		"Extra argument to pass to the executor; may be repeated")
	f.StringArrayVar(&flags.debugServices, "debug-service", nil,
		"Service to debug; every instance of it is debugged; may be repeated")
	f.StringArrayVar(&flags.debugServiceInstances, "debug-service-instance", nil,
		"Service instance to debug, e.g. my-service-0; may be repeated")
	f.BoolVar(&flags.continuous, "continuous", false,
		"Keep running, rerunning the tasks whenever the project file or test suites change")
	return cmd
}
