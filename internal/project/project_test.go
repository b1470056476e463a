package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"systest/internal/config"
	"systest/internal/dependency"
)

type recordingListener struct {
	started  []string
	finished []Result
}

func (l *recordingListener) TaskStarted(name string)    { l.started = append(l.started, name) }
func (l *recordingListener) TaskFinished(result Result) { l.finished = append(l.finished, result) }

func newTestProject(t *testing.T) *Project {
	t.Helper()
	cfg := config.GetDefaultConfig()
	cfg.Repositories.Local = filepath.Join(t.TempDir(), "repo")
	cfg.Repositories.Remote = nil
	p, err := New(t.TempDir(), cfg)
	require.NoError(t, err)
	return p
}

func TestNew_Defaults(t *testing.T) {
	p := newTestProject(t)

	assert.Equal(t, filepath.Join(p.Dir, "build"), p.BuildDir)
	_, ok := p.Task(CleanTaskName)
	assert.True(t, ok)
	_, ok = p.Task(CheckTaskName)
	assert.True(t, ok)
	_, ok = p.FindProperty(JVMArgsProperty)
	assert.False(t, ok)
}

func TestNew_JVMArgsProperty(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.JVMArgs = "-Xmx1g"
	p, err := New(t.TempDir(), cfg)
	require.NoError(t, err)

	v, ok := p.FindProperty(JVMArgsProperty)
	require.True(t, ok)
	assert.Equal(t, "-Xmx1g", v)
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	p := newTestProject(t)
	require.NoError(t, p.Register(&Task{Name: "systemTest"}))
	assert.Error(t, p.Register(&Task{Name: "systemTest"}))
	assert.Error(t, p.Register(&Task{}))
}

func TestExecute_OrderAndOutcomes(t *testing.T) {
	p := newTestProject(t)
	var ran []string
	action := func(name string) func(context.Context) error {
		return func(context.Context) error {
			ran = append(ran, name)
			return nil
		}
	}

	require.NoError(t, p.Register(&Task{Name: "prepare", Action: action("prepare")}))
	require.NoError(t, p.Register(&Task{Name: "skipped", OnlyIf: func() bool { return false }, Action: action("skipped")}))
	require.NoError(t, p.Register(&Task{
		Name:      "systemTest",
		DependsOn: []string{"prepare", "skipped"},
		Action:    action("systemTest"),
	}))
	p.tasks[CheckTaskName].DependsOn = []string{"systemTest"}

	listener := &recordingListener{}
	result := p.Execute(context.Background(), listener, CheckTaskName)
	require.NoError(t, result.Err)

	assert.Equal(t, []string{"prepare", "systemTest"}, ran)
	assert.Equal(t, []string{"prepare", "skipped", "systemTest", "check"}, listener.started)

	expected := map[string]Outcome{
		"prepare":    OutcomeSuccess,
		"skipped":    OutcomeSkipped,
		"systemTest": OutcomeSuccess,
		"check":      OutcomeSuccess,
	}
	for task, outcome := range expected {
		got, ok := result.Outcome(task)
		require.True(t, ok, task)
		assert.Equal(t, outcome, got, task)
	}
}

func TestExecute_LifecycleWithNothingToDoIsUpToDate(t *testing.T) {
	p := newTestProject(t)

	result := p.Execute(context.Background(), nil, CheckTaskName)
	require.NoError(t, result.Err)

	outcome, _ := result.Outcome(CheckTaskName)
	assert.Equal(t, OutcomeUpToDate, outcome)
}

func TestExecute_NoSource(t *testing.T) {
	p := newTestProject(t)
	src := filepath.Join(p.Dir, "src", "system-test")
	called := false
	require.NoError(t, p.Register(&Task{
		Name:      "systemTest",
		SourceDir: func() string { return src },
		Action:    func(context.Context) error { called = true; return nil },
	}))

	result := p.Execute(context.Background(), nil, "systemTest")
	require.NoError(t, result.Err)
	outcome, _ := result.Outcome("systemTest")
	assert.Equal(t, OutcomeNoSource, outcome, "missing directory")

	require.NoError(t, os.MkdirAll(src, 0o755))
	result = p.Execute(context.Background(), nil, "systemTest")
	outcome, _ = result.Outcome("systemTest")
	assert.Equal(t, OutcomeNoSource, outcome, "empty directory")
	assert.False(t, called)

	require.NoError(t, os.WriteFile(filepath.Join(src, "suite.yml"), nil, 0o644))
	result = p.Execute(context.Background(), nil, "systemTest")
	outcome, _ = result.Outcome("systemTest")
	assert.Equal(t, OutcomeSuccess, outcome)
	assert.True(t, called)
}

func TestExecute_StopsOnFirstFailure(t *testing.T) {
	p := newTestProject(t)
	boom := errors.New("boom")
	laterRan := false

	require.NoError(t, p.Register(&Task{Name: "first", Action: func(context.Context) error { return boom }}))
	require.NoError(t, p.Register(&Task{Name: "second", Action: func(context.Context) error { laterRan = true; return nil }}))

	result := p.Execute(context.Background(), nil, "first", "second")
	require.True(t, result.Failed())
	assert.False(t, laterRan)

	var failed *TaskFailedError
	require.True(t, errors.As(result.Err, &failed))
	assert.Equal(t, "first", failed.Task)
	assert.ErrorIs(t, result.Err, boom)
	assert.Equal(t, "execution failed for task ':first': boom", result.Err.Error())

	outcome, _ := result.Outcome("first")
	assert.Equal(t, OutcomeFailed, outcome)
}

func TestExecute_UnknownTask(t *testing.T) {
	p := newTestProject(t)

	result := p.Execute(context.Background(), nil, "doesNotExist")
	var unknown *dependency.UnknownNodeError
	assert.True(t, errors.As(result.Err, &unknown))
}

func TestExecute_Cancelled(t *testing.T) {
	p := newTestProject(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := p.Execute(ctx, nil, CleanTaskName)
	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, context.Canceled)
}

func TestCleanTasks(t *testing.T) {
	p := newTestProject(t)
	results := filepath.Join(p.BuildDir, "test-results", "system-test")
	other := filepath.Join(p.BuildDir, "other")
	require.NoError(t, os.MkdirAll(results, 0o755))
	require.NoError(t, os.MkdirAll(other, 0o755))

	require.NoError(t, p.Register(&Task{
		Name:    "systemTest",
		Outputs: func() []string { return []string{results} },
	}))

	_, ok := p.Task("cleanNothing")
	assert.False(t, ok)
	_, ok = p.Task("cleanup")
	assert.False(t, ok)

	result := p.Execute(context.Background(), nil, "cleanSystemTest")
	require.NoError(t, result.Err)
	assert.NoDirExists(t, results)
	assert.DirExists(t, other)

	result = p.Execute(context.Background(), nil, CleanTaskName)
	require.NoError(t, result.Err)
	assert.NoDirExists(t, p.BuildDir)
}

func TestCreateBucket(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Dependencies = map[string][]string{
		"systemTestComponent": {"com.acme:orders:1.0", "libs/local.jar"},
		"broken":              {"not-a-coordinate"},
	}
	p, err := New(t.TempDir(), cfg)
	require.NoError(t, err)

	b, err := p.CreateBucket("systemTestComponent", "components")
	require.NoError(t, err)
	declared := b.Declared()
	require.Len(t, declared, 2)
	assert.Equal(t, "orders", declared[0].Coordinate.Name)
	assert.Equal(t, filepath.Join(p.Dir, "libs", "local.jar"), declared[1].File)

	_, err = p.CreateBucket("systemTestComponent", "again")
	assert.Error(t, err)

	_, err = p.CreateBucket("broken", "")
	var cfgErr config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "dependencies.broken[0]", cfgErr.Field)

	got, ok := p.Bucket("systemTestComponent")
	require.True(t, ok)
	assert.Same(t, b, got)
	assert.Len(t, p.Buckets(), 1)
}

func TestTasks_SortedByGroupThenName(t *testing.T) {
	p := newTestProject(t)
	require.NoError(t, p.Register(&Task{Name: "systemTest", Group: "creek"}))
	require.NoError(t, p.Register(&Task{Name: "systemTestPrepareDebug", Group: "creek"}))

	var names []string
	for _, task := range p.Tasks() {
		names = append(names, task.Name)
	}
	assert.Equal(t, []string{"clean", "systemTest", "systemTestPrepareDebug", "check"}, names)
}
