package project

import (
	"context"
	"fmt"
	"time"
)

// Outcome is the result of running a single task.
type Outcome string

const (
	OutcomeSuccess  Outcome = "SUCCESS"
	OutcomeSkipped  Outcome = "SKIPPED"
	OutcomeNoSource Outcome = "NO-SOURCE"
	OutcomeUpToDate Outcome = "UP-TO-DATE"
	OutcomeFailed   Outcome = "FAILED"
)

// Task is a unit of work in the project.
type Task struct {
	Name        string
	Group       string
	Description string
	DependsOn   []string

	// OnlyIf, when set and false, skips the task.
	OnlyIf func() bool

	// SourceDir, when set, names an input directory; the task is skipped
	// with NO-SOURCE if it holds no files.
	SourceDir func() string

	// Outputs lists the files or directories the task produces; they are
	// what clean<Task> deletes.
	Outputs func() []string

	// Action does the work. Lifecycle tasks have none.
	Action func(ctx context.Context) error
}

// Result records how a task ran.
type Result struct {
	Task     string
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// TaskFailedError wraps the error a task action returned.
type TaskFailedError struct {
	Task string
	Err  error
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("execution failed for task ':%s': %v", e.Task, e.Err)
}

func (e *TaskFailedError) Unwrap() error {
	return e.Err
}

// BuildResult summarises an execution.
type BuildResult struct {
	Results []Result
	Elapsed time.Duration
	Err     error
}

// Failed reports whether the build failed.
func (b *BuildResult) Failed() bool {
	return b.Err != nil
}

// Outcome returns the outcome recorded for task, if it ran.
func (b *BuildResult) Outcome(task string) (Outcome, bool) {
	for _, r := range b.Results {
		if r.Task == task {
			return r.Outcome, true
		}
	}
	return "", false
}

// Listener is told about task progress.
type Listener interface {
	TaskStarted(name string)
	TaskFinished(result Result)
}
