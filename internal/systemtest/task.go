package systemtest

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"systest/internal/artifact"
	"systest/internal/coverage"
	"systest/internal/debug"
	"systest/internal/javaexec"
	"systest/internal/mounts"
	"systest/internal/project"
	"systest/pkg/logging"
)

const (
	// MainClass is the executor's entry point.
	MainClass = "org.creekservice.api.system.test.executor.SystemTestExecutor"

	// Description is shown in task listings.
	Description = "Task for running Creek system tests"

	// JavaToolOptions is the variable agents are passed through.
	JavaToolOptions = "JAVA_TOOL_OPTIONS"

	taskSubsystem = "SystemTest"
)

// ExecutorModule identifies the executor artifact.
type ExecutorModule struct {
	Group    string
	Artifact string
}

// Task runs system tests through the external executor.
type Task struct {
	Name string

	TestDirectory              string
	ResultDirectory            string
	VerificationTimeoutSeconds string
	SuitesPathPattern          string
	ExtraArguments             []string

	DebugAttachMePort         int
	DebugBaseServicePort      int
	DebugServiceNames         []string
	DebugServiceInstanceNames []string

	SystemTestExecutor   *artifact.Bucket
	SystemTestExtensions *artifact.Bucket
	SystemTestComponents *artifact.Bucket
	Executor             ExecutorModule

	// Debug is the task preparing the debug mount.
	Debug *debug.PrepareTask
	// Coverage is nil unless coverage is enabled.
	Coverage *coverage.Extension

	Project *project.Project
	Java    javaexec.Runtime
}

// Options are per-invocation overrides, typically from the command line.
// Zero values leave the task's value unchanged.
type Options struct {
	VerificationTimeoutSeconds string
	IncludeSuites              string
	ExtraArguments             []string
	DebugServices              []string
	DebugServiceInstances      []string
}

// ApplyOptions overrides task inputs with any options set.
func (t *Task) ApplyOptions(o Options) {
	if o.VerificationTimeoutSeconds != "" {
		t.VerificationTimeoutSeconds = o.VerificationTimeoutSeconds
	}
	if o.IncludeSuites != "" {
		t.SuitesPathPattern = o.IncludeSuites
	}
	if o.ExtraArguments != nil {
		t.ExtraArguments = append([]string(nil), o.ExtraArguments...)
	}
	if o.DebugServices != nil {
		t.DebugServiceNames = orderedSet(o.DebugServices)
	}
	if o.DebugServiceInstances != nil {
		t.DebugServiceInstanceNames = orderedSet(o.DebugServiceInstances)
	}
}

// Outputs lists what the task produces, for clean<Task>.
func (t *Task) Outputs() []string {
	outputs := []string{t.ResultDirectory}
	if t.Coverage != nil {
		outputs = append(outputs, t.Coverage.DestinationFile())
	}
	return outputs
}

// Run cleans stale coverage data, checks the executor is declared, resolves
// the class path and runs the executor to completion.
func (t *Task) Run(ctx context.Context) error {
	if err := t.cleanUp(); err != nil {
		return err
	}
	if err := t.checkDependenciesIncludesRunner(); err != nil {
		return err
	}

	classPath, err := t.classPath(ctx)
	if err != nil {
		return err
	}

	args, err := t.Arguments()
	if err != nil {
		return err
	}

	return t.Java.Exec(ctx, javaexec.Spec{
		MainClass: MainClass,
		ClassPath: classPath,
		JVMArgs:   t.jvmArgs(),
		Args:      args,
		Dir:       t.Project.Dir,
		Stdout:    t.Project.Stdout,
		Stderr:    t.Project.Stderr,
	})
}

func (t *Task) cleanUp() error {
	if t.Coverage == nil {
		return nil
	}
	if err := t.Coverage.CleanUp(); err != nil {
		return err
	}
	logging.Info(taskSubsystem, "Coverage data will be written to %s", t.Coverage.DestinationFile())
	return nil
}

func (t *Task) checkDependenciesIncludesRunner() error {
	c, ok := t.SystemTestExecutor.HasModule(t.Executor.Group, t.Executor.Artifact)
	if !ok {
		return &MissingExecutorDependencyError{
			Bucket:   t.SystemTestExecutor.Name,
			Group:    t.Executor.Group,
			Artifact: t.Executor.Artifact,
		}
	}
	logging.Debug(taskSubsystem, "Using system test executor version: %s", c.Version)
	return nil
}

func (t *Task) classPath(ctx context.Context) ([]string, error) {
	var classPath []string
	seen := make(map[string]bool)
	for _, b := range []*artifact.Bucket{t.SystemTestExecutor, t.SystemTestExtensions, t.SystemTestComponents} {
		if b == nil {
			continue
		}
		files, err := b.Resolve(ctx)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if !seen[f] {
				seen[f] = true
				classPath = append(classPath, f)
			}
		}
	}
	return classPath, nil
}

// Arguments builds the executor's command line arguments.
func (t *Task) Arguments() ([]string, error) {
	args := t.commonArguments()
	args = append(args, t.debugArguments()...)
	args = append(args, t.mountArguments()...)

	env, err := t.javaToolOptionsArguments()
	if err != nil {
		return nil, err
	}
	args = append(args, env...)

	return append(args, t.ExtraArguments...), nil
}

func (t *Task) commonArguments() []string {
	return []string{
		"--test-directory=" + absolute(t.TestDirectory),
		"--result-directory=" + absolute(t.ResultDirectory),
		"--verifier-timeout-seconds=" + t.VerificationTimeoutSeconds,
		"--include-suites=" + t.SuitesPathPattern,
	}
}

func (t *Task) nothingToDebug() bool {
	return len(t.DebugServiceNames) == 0 && len(t.DebugServiceInstanceNames) == 0
}

func (t *Task) debugArguments() []string {
	if t.nothingToDebug() {
		return nil
	}

	args := []string{"--debug-service-port=" + strconv.Itoa(t.DebugBaseServicePort)}
	if services := strings.Join(orderedSet(t.DebugServiceNames), ","); services != "" {
		args = append(args, "--debug-service="+services)
	}
	if instances := strings.Join(orderedSet(t.DebugServiceInstanceNames), ","); instances != "" {
		args = append(args, "--debug-service-instance="+instances)
	}
	return args
}

func (t *Task) mountArguments() []string {
	var readOnly, writable []string
	add := func(m mounts.Mount) {
		if m.Writable {
			writable = append(writable, m.String())
		} else {
			readOnly = append(readOnly, m.String())
		}
	}

	if t.Coverage != nil {
		for _, m := range t.Coverage.MountOptions() {
			add(m)
		}
	}
	if !t.nothingToDebug() {
		add(t.Debug.Mount())
	}

	var args []string
	if len(readOnly) > 0 {
		args = append(args, "--mount-read-only="+strings.Join(readOnly, ","))
	}
	if len(writable) > 0 {
		args = append(args, "--mount-writable="+strings.Join(writable, ","))
	}
	return args
}

// javaToolOptionsArguments sets JAVA_TOOL_OPTIONS for every service, and a
// debug variant for services being debugged which loads both agents.
func (t *Task) javaToolOptionsArguments() ([]string, error) {
	coverageOpts := ""
	if t.Coverage != nil {
		opts, err := t.Coverage.JavaToolOptions()
		if err != nil {
			return nil, err
		}
		coverageOpts = opts
	}

	var args []string
	if coverageOpts != "" {
		args = append(args, "--env="+JavaToolOptions+"="+coverageOpts)
	}

	if !t.nothingToDebug() {
		debugOpts, err := t.Debug.JavaToolOptions(t.DebugAttachMePort)
		if err != nil {
			return nil, err
		}
		combined := debugOpts
		if coverageOpts != "" {
			combined += " " + coverageOpts
		}
		args = append(args, "--debug-env="+JavaToolOptions+"="+combined)
	}
	return args, nil
}

func (t *Task) jvmArgs() []string {
	v, ok := t.Project.FindProperty(project.JVMArgsProperty)
	if !ok {
		return nil
	}
	return strings.Fields(v)
}

// ProjectTask wraps the task for registration with a project.
func (t *Task) ProjectTask(dependsOn ...string) *project.Task {
	return &project.Task{
		Name:        t.Name,
		Description: Description,
		DependsOn:   dependsOn,
		SourceDir:   func() string { return t.TestDirectory },
		Outputs:     t.Outputs,
		Action:      t.Run,
	}
}

func absolute(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
