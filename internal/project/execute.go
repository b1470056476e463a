package project

import (
	"context"
	"fmt"
	"time"

	"systest/internal/dependency"
	"systest/internal/fsutil"
	"systest/pkg/logging"
)

// Execute runs the named tasks and everything they depend on, dependencies
// first. It stops at the first failure. Cancelling ctx stops the running
// task and fails the build.
func (p *Project) Execute(ctx context.Context, listener Listener, names ...string) *BuildResult {
	start := time.Now()
	result := &BuildResult{}
	defer func() { result.Elapsed = time.Since(start) }()

	order, err := p.plan(names)
	if err != nil {
		result.Err = err
		return result
	}

	outcomes := make(map[string]Outcome, len(order))
	for _, id := range order {
		name := string(id)
		t := p.tasks[name]

		if err := ctx.Err(); err != nil {
			result.Err = fmt.Errorf("build cancelled: %w", err)
			return result
		}

		if listener != nil {
			listener.TaskStarted(name)
		}
		taskStart := time.Now()
		outcome, err := p.runTask(ctx, t, outcomes)
		r := Result{Task: name, Outcome: outcome, Err: err, Duration: time.Since(taskStart)}
		outcomes[name] = outcome
		result.Results = append(result.Results, r)
		if listener != nil {
			listener.TaskFinished(r)
		}

		if err != nil {
			result.Err = &TaskFailedError{Task: name, Err: err}
			return result
		}
	}
	return result
}

// plan resolves names, synthesising clean rules, and orders the work.
func (p *Project) plan(names []string) ([]dependency.NodeID, error) {
	roots := make([]dependency.NodeID, 0, len(names))
	for _, name := range names {
		if _, ok := p.Task(name); !ok {
			return nil, &dependency.UnknownNodeError{ID: dependency.NodeID(name)}
		}
		roots = append(roots, dependency.NodeID(name))
	}

	g := dependency.New()
	for _, t := range p.tasks {
		deps := make([]dependency.NodeID, len(t.DependsOn))
		for i, d := range t.DependsOn {
			deps[i] = dependency.NodeID(d)
		}
		g.AddNode(dependency.Node{ID: dependency.NodeID(t.Name), DependsOn: deps})
	}
	return g.Order(roots...)
}

func (p *Project) runTask(ctx context.Context, t *Task, outcomes map[string]Outcome) (Outcome, error) {
	if t.OnlyIf != nil && !t.OnlyIf() {
		logging.Info(projectSubsystem, "Skipping task ':%s' as task onlyIf is false", t.Name)
		return OutcomeSkipped, nil
	}

	if t.SourceDir != nil {
		dir := t.SourceDir()
		has, err := fsutil.HasFiles(dir)
		if err != nil {
			return OutcomeFailed, err
		}
		if !has {
			logging.Info(projectSubsystem, "Skipping task ':%s' as it has no source files in %s", t.Name, dir)
			return OutcomeNoSource, nil
		}
	}

	if t.Action == nil {
		for _, dep := range t.DependsOn {
			if outcomes[dep] == OutcomeSuccess {
				return OutcomeSuccess, nil
			}
		}
		return OutcomeUpToDate, nil
	}

	logging.Debug(projectSubsystem, "Running task ':%s'", t.Name)
	if err := t.Action(ctx); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeSuccess, nil
}
