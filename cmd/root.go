package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"systest/internal/app"
	"systest/internal/config"
	"systest/internal/systemtest"
	"systest/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates the build succeeded.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a failed build or a general error.
	ExitCodeError = 1
	// ExitCodeConfiguration indicates the project is misconfigured: an
	// invalid project file, or no executor dependency.
	ExitCodeConfiguration = 2
)

// envPrefix prefixes the environment variables persistent flags read,
// e.g. SYSTEST_PROJECT_DIR.
const envPrefix = "SYSTEST"

// rootOptions holds the persistent flags after flag and environment values
// have been merged.
type rootOptions struct {
	ProjectDir string
	ConfigFile string
	LogLevel   string
	Quiet      bool
}

// rootCmd is the base command, run when no subcommand is given.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "systest",
		Short: "Run Creek system tests",
		Long: `systest runs Creek system tests for a project.

It reads the project's systest.yaml, resolves the Creek system test executor,
extensions and components under test from Maven repositories, optionally
prepares debug and coverage agents, and runs the executor against the
project's system test suites.`,
		// Errors are reported by Execute, which knows which have already
		// been shown to the user.
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ProjectDir, "project-dir", ".", "Project directory (env SYSTEST_PROJECT_DIR)")
	flags.StringVar(&opts.ConfigFile, "config", config.DefaultConfigFileName, "Project file, relative to the project directory (env SYSTEST_CONFIG)")
	flags.StringVar(&opts.LogLevel, "log-level", "warn", "Log level: debug, info, warn or error (env SYSTEST_LOG_LEVEL)")
	flags.BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress progress output (env SYSTEST_QUIET)")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newTasksCmd(opts))
	cmd.AddCommand(newDependenciesCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newSelfUpdateCmd())
	return cmd
}

// load merges flags with SYSTEST_* environment variables. Flags set on the
// command line win over the environment, which wins over flag defaults.
func (o *rootOptions) load(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	o.ProjectDir = v.GetString("project-dir")
	o.ConfigFile = v.GetString("config")
	o.LogLevel = v.GetString("log-level")
	o.Quiet = v.GetBool("quiet")
	return nil
}

// appConfig builds the application config for cmd.
func (o *rootOptions) appConfig(cmd *cobra.Command) (*app.Config, error) {
	level, err := logging.ParseLevel(o.LogLevel)
	if err != nil {
		return nil, err
	}

	cfg := app.NewConfig(o.ProjectDir, o.ConfigFile)
	cfg.LogLevel = level
	cfg.Quiet = o.Quiet
	cfg.Stdout = cmd.OutOrStdout()
	cfg.Stderr = cmd.ErrOrStderr()
	return cfg, nil
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a code describing the
// outcome. It is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "systest version %s\n" .Version}}`)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		reportError(rootCmd.ErrOrStderr(), err)
		os.Exit(getExitCode(err))
	}
}

// reportError prints err unless the build output already has.
func reportError(w io.Writer, err error) {
	var buildFailed *app.BuildFailedError
	if errors.As(err, &buildFailed) {
		return
	}

	var collection config.ConfigurationErrorCollection
	if errors.As(err, &collection) {
		fmt.Fprint(w, collection.GetDetailedReport())
		return
	}

	var configErr config.ConfigurationError
	if errors.As(err, &configErr) {
		fmt.Fprintln(w, configErr.DetailedError())
		return
	}

	fmt.Fprintf(w, "Error: %v\n", err)
}

// getExitCode maps an error to an exit code for scripting and CI.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var collection config.ConfigurationErrorCollection
	if errors.As(err, &collection) {
		return ExitCodeConfiguration
	}

	var configErr config.ConfigurationError
	if errors.As(err, &configErr) {
		return ExitCodeConfiguration
	}

	var missingExecutor *systemtest.MissingExecutorDependencyError
	if errors.As(err, &missingExecutor) {
		return ExitCodeConfiguration
	}

	return ExitCodeError
}
