package javaexec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"systest/pkg/logging"
)

const javaSubsystem = "JavaExec"

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// ExitError reports a non-zero exit of the launched process.
type ExitError struct {
	Code      int
	MainClass string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("process '%s' finished with non-zero exit value %d", e.MainClass, e.Code)
}

// JavaRuntime implements Runtime with a local JDK or JRE.
type JavaRuntime struct {
	javaHome string
}

// NewJavaRuntime returns a runtime using javaHome/bin/java. An empty
// javaHome falls back to $JAVA_HOME, then to `java` on the PATH.
func NewJavaRuntime(javaHome string) *JavaRuntime {
	return &JavaRuntime{javaHome: javaHome}
}

// Executable locates the java binary.
func (j *JavaRuntime) Executable() (string, error) {
	home := j.javaHome
	if home == "" {
		home = os.Getenv("JAVA_HOME")
	}

	name := "java"
	if runtime.GOOS == "windows" {
		name = "java.exe"
	}

	if home != "" {
		candidate := filepath.Join(home, "bin", name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		logging.Warn(javaSubsystem, "No %s found under %s, falling back to PATH", name, home)
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("java command not found: set javaHome, JAVA_HOME or add java to the PATH: %w", err)
	}
	return path, nil
}

// CommandLine returns the java arguments for spec, excluding the binary.
func CommandLine(spec Spec) []string {
	args := append([]string(nil), spec.JVMArgs...)
	if len(spec.ClassPath) > 0 {
		args = append(args, "-cp", strings.Join(spec.ClassPath, string(os.PathListSeparator)))
	}
	args = append(args, spec.MainClass)
	return append(args, spec.Args...)
}

// Exec runs spec and waits for it to exit.
func (j *JavaRuntime) Exec(ctx context.Context, spec Spec) error {
	java, err := j.Executable()
	if err != nil {
		return err
	}

	args := CommandLine(spec)
	logging.Debug(javaSubsystem, "Starting %s %s", java, strings.Join(args, " "))

	cmd := execCommandContext(ctx, java, args...)
	cmd.Dir = spec.Dir
	cmd.Stdout = spec.Stdout
	cmd.Stderr = spec.Stderr
	if len(spec.Env) > 0 {
		cmd.Env = append(cmd.Environ(), spec.Env...)
	}
	configureProcAttr(cmd)
	cmd.Cancel = func() error {
		return killProcessGroup(cmd)
	}

	err = cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s interrupted: %w", spec.MainClass, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode(), MainClass: spec.MainClass}
	}
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", spec.MainClass, err)
	}

	logging.Debug(javaSubsystem, "%s exited cleanly", spec.MainClass)
	return nil
}
