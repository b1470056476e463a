package javaexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	execCommandContext = mockExecCommandContext
}

// mockExecCommandContext re-runs the test binary as the "java" process.
func mockExecCommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", name}
	cs = append(cs, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

// TestHelperProcess stands in for java. The main class selects behaviour.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+2:]
			break
		}
	}

	mainClass := ""
	for i, arg := range args {
		if arg == "-cp" {
			continue
		}
		if i > 0 && args[i-1] == "-cp" {
			continue
		}
		if !strings.HasPrefix(arg, "-") {
			mainClass = arg
			break
		}
	}

	switch mainClass {
	case "example.Fail":
		fmt.Fprintln(os.Stderr, "failing")
		os.Exit(3)
	case "example.Sleep":
		time.Sleep(30 * time.Second)
		os.Exit(0)
	case "example.Env":
		fmt.Println(os.Getenv("EXTRA"))
		os.Exit(0)
	default:
		fmt.Println(strings.Join(args, " "))
		os.Exit(0)
	}
}

func fakeJavaHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, "bin", "java"), nil, 0o755))
	return home
}

func TestCommandLine(t *testing.T) {
	spec := Spec{
		MainClass: "org.creekservice.api.system.test.executor.SystemTestExecutor",
		ClassPath: []string{"/a.jar", "/b.jar"},
		JVMArgs:   []string{"-Xmx512m"},
		Args:      []string{"--test-directory=/t"},
	}

	expected := []string{
		"-Xmx512m",
		"-cp", "/a.jar" + string(os.PathListSeparator) + "/b.jar",
		"org.creekservice.api.system.test.executor.SystemTestExecutor",
		"--test-directory=/t",
	}
	assert.Equal(t, expected, CommandLine(spec))
}

func TestCommandLine_NoClassPath(t *testing.T) {
	assert.Equal(t, []string{"Main", "x"}, CommandLine(Spec{MainClass: "Main", Args: []string{"x"}}))
}

func TestExecutable(t *testing.T) {
	home := fakeJavaHome(t)

	path, err := NewJavaRuntime(home).Executable()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "bin", "java"), path)

	t.Setenv("JAVA_HOME", home)
	path, err = NewJavaRuntime("").Executable()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "bin", "java"), path)
}

func TestExec_ForwardsOutput(t *testing.T) {
	var stdout bytes.Buffer
	err := NewJavaRuntime(fakeJavaHome(t)).Exec(context.Background(), Spec{
		MainClass: "example.Echo",
		ClassPath: []string{"/exec.jar"},
		Args:      []string{"--include-suites=.*"},
		Stdout:    &stdout,
	})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "-cp /exec.jar example.Echo --include-suites=.*")
}

func TestExec_Environment(t *testing.T) {
	var stdout bytes.Buffer
	err := NewJavaRuntime(fakeJavaHome(t)).Exec(context.Background(), Spec{
		MainClass: "example.Env",
		Env:       []string{"EXTRA=value"},
		Stdout:    &stdout,
	})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "value")
}

func TestExec_NonZeroExit(t *testing.T) {
	var stderr bytes.Buffer
	err := NewJavaRuntime(fakeJavaHome(t)).Exec(context.Background(), Spec{
		MainClass: "example.Fail",
		Stderr:    &stderr,
	})
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "process 'example.Fail' finished with non-zero exit value 3", err.Error())
	assert.Contains(t, stderr.String(), "failing")
}

func TestExec_Cancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := NewJavaRuntime(fakeJavaHome(t)).Exec(ctx, Spec{MainClass: "example.Sleep"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}
