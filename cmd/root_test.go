package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"systest/internal/app"
	"systest/internal/config"
	"systest/internal/project"
	"systest/internal/systemtest"
)

// writeProject creates a project whose repositories and AttachMe directory
// live under the test's temp directory.
func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := "repositories:\n" +
		"  local: " + filepath.Join(dir, "repo") + "\n" +
		"  remote:\n" +
		"    - file://" + filepath.ToSlash(filepath.Join(dir, "remote")) + "\n" +
		"tasks:\n" +
		"  systemTestPrepareDebug:\n" +
		"    attachMeDirectory: " + filepath.Join(dir, "attachme") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultConfigFileName), []byte(content), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestSetVersion(t *testing.T) {
	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", GetVersion())
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCmd()
	assert.Equal(t, "systest", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.True(t, cmd.SilenceUsage)

	for _, name := range []string{"project-dir", "config", "log-level", "quiet"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, c := range newRootCmd().Commands() {
		found[c.Name()] = true
	}
	for _, expected := range []string{"run", "tasks", "dependencies", "config", "version", "self-update"} {
		assert.True(t, found[expected], "expected subcommand %s", expected)
	}
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{Use: "test", Version: "1.0.0"}
	testCmd.SetVersionTemplate(`{{printf "systest version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	require.NoError(t, testCmd.Execute())
	assert.Equal(t, "systest version 1.0.0\n", buf.String())
}

func TestGetExitCode(t *testing.T) {
	var collection config.ConfigurationErrorCollection
	collection.Add(config.NewConfigurationError("systest.yaml", "buildDirectory", "validation", "must not be empty"))

	missing := &systemtest.MissingExecutorDependencyError{
		Bucket:   "systemTestExecutor",
		Group:    "org.creekservice",
		Artifact: "creek-system-test-executor",
	}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitCodeSuccess},
		{"general", errors.New("boom"), ExitCodeError},
		{"configuration collection", collection, ExitCodeConfiguration},
		{"configuration error", fmt.Errorf("load: %w", config.NewConfigurationError("f", "", "parse", "bad")), ExitCodeConfiguration},
		{"missing executor", &app.BuildFailedError{Err: &project.TaskFailedError{Task: "systemTest", Err: missing}}, ExitCodeConfiguration},
		{"failed build", &app.BuildFailedError{Err: &project.TaskFailedError{Task: "systemTest", Err: errors.New("exit 1")}}, ExitCodeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	reportError(&buf, &app.BuildFailedError{Err: errors.New("already shown")})
	assert.Empty(t, buf.String())

	reportError(&buf, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())

	buf.Reset()
	reportError(&buf, config.NewConfigurationError("systest.yaml", "creek", "parse", "bad yaml"))
	assert.Contains(t, buf.String(), "systest.yaml")
	assert.Contains(t, buf.String(), "bad yaml")
}

func TestRun_NoSource(t *testing.T) {
	dir := writeProject(t)

	out, err := execute(t, "run", "--project-dir", dir, "--quiet", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "> Task :systemTest")
	assert.Contains(t, out, "NO-SOURCE")
	assert.Contains(t, out, "BUILD SUCCESSFUL")
}

func TestRun_InvalidLogLevel(t *testing.T) {
	dir := writeProject(t)

	_, err := execute(t, "run", "--project-dir", dir, "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}

func TestRunFlags_Options(t *testing.T) {
	cmd := newRunCmd(&rootOptions{})
	require.NoError(t, cmd.ParseFlags([]string{
		"--verification-timeout-seconds=120",
		"--extra-argument=--echo-only",
		"--extra-argument=a,b",
		"--debug-service=svc-a",
	}))

	flags := &runFlags{
		verificationTimeoutSeconds: "120",
		extraArguments:             []string{"--echo-only", "a,b"},
		debugServices:              []string{"svc-a"},
	}
	o, err := flags.options(cmd)
	require.NoError(t, err)
	assert.Equal(t, "120", o.VerificationTimeoutSeconds)
	assert.Empty(t, o.IncludeSuites)
	assert.Equal(t, []string{"--echo-only", "a,b"}, o.ExtraArguments)
	assert.Equal(t, []string{"svc-a"}, o.DebugServices)
	assert.Nil(t, o.DebugServiceInstances)
}

func TestRunFlags_RejectsEmptyOverrides(t *testing.T) {
	for _, flag := range []string{"include-suites", "verification-timeout-seconds"} {
		t.Run(flag, func(t *testing.T) {
			dir := writeProject(t)

			_, err := execute(t, "run", "--project-dir", dir, "--quiet", "--"+flag+"=")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "--"+flag+" must not be empty")
		})
	}
}

func TestTasks_FromEnvironment(t *testing.T) {
	dir := writeProject(t)
	t.Setenv("SYSTEST_PROJECT_DIR", dir)
	t.Setenv("SYSTEST_LOG_LEVEL", "error")

	out, err := execute(t, "tasks")
	require.NoError(t, err)
	assert.Contains(t, out, "systemTest")
	assert.Contains(t, out, "systemTestPrepareDebug")
	assert.Contains(t, out, "Task for running Creek system tests")
}

func TestTasks_FlagBeatsEnvironment(t *testing.T) {
	dir := writeProject(t)
	t.Setenv("SYSTEST_PROJECT_DIR", filepath.Join(dir, "missing"))

	out, err := execute(t, "tasks", "--project-dir", dir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "systemTest")
}

func TestDependencies(t *testing.T) {
	dir := writeProject(t)

	out, err := execute(t, "dependencies", "--project-dir", dir, "--all", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "systemTestExecutor")
	assert.Contains(t, out, "org.creekservice:creek-system-test-executor:")
	assert.Contains(t, out, "systemTestComponent")

	_, err = execute(t, "dependencies", "ghost", "--project-dir", dir, "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket 'ghost' not found")
}

func TestConfig(t *testing.T) {
	dir := writeProject(t)

	out, err := execute(t, "config", "--project-dir", dir, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "buildDirectory: build")
	assert.Contains(t, out, filepath.Join(dir, "attachme"))
}

func TestConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultConfigFileName), []byte("unknownKey: 1\n"), 0o644))

	_, err := execute(t, "config", "--project-dir", dir, "--log-level", "error")
	require.Error(t, err)
	assert.Equal(t, ExitCodeConfiguration, getExitCode(err))
}
