package project

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"systest/internal/artifact"
	"systest/internal/config"
	"systest/internal/fsutil"
	"systest/pkg/logging"
)

const (
	// CleanTaskName deletes the build directory.
	CleanTaskName = "clean"
	// CheckTaskName aggregates verification tasks.
	CheckTaskName = "check"
	// VerificationGroup is the group of the check task.
	VerificationGroup = "verification"
	// BuildGroup is the group of clean tasks.
	BuildGroup = "build"

	// JVMArgsProperty holds whitespace separated JVM arguments.
	JVMArgsProperty = "jvmArgs"

	projectSubsystem = "Project"
)

// Project is the model the plugin is applied to.
type Project struct {
	Dir      string
	BuildDir string
	Config   config.ProjectConfig
	Resolver *artifact.Resolver

	// Stdout and Stderr receive the output of launched processes.
	Stdout io.Writer
	Stderr io.Writer

	properties  map[string]string
	tasks       map[string]*Task
	buckets     map[string]*artifact.Bucket
	bucketOrder []string
}

// New creates a project rooted at dir and registers the lifecycle tasks.
func New(dir string, cfg config.ProjectConfig) (*Project, error) {
	abs, err := fsutil.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid project directory %s: %w", dir, err)
	}

	p := &Project{
		Dir:        abs,
		BuildDir:   fsutil.Resolve(abs, cfg.BuildDirectory),
		Config:     cfg,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		properties: make(map[string]string),
		tasks:      make(map[string]*Task),
		buckets:    make(map[string]*artifact.Bucket),
	}
	p.Resolver = artifact.NewResolver(fsutil.Resolve(abs, cfg.Repositories.Local), cfg.Repositories.Remote)

	if cfg.JVMArgs != "" {
		p.properties[JVMArgsProperty] = cfg.JVMArgs
	}

	if err := p.Register(&Task{
		Name:        CleanTaskName,
		Group:       BuildGroup,
		Description: "Deletes the build directory.",
		Action: func(context.Context) error {
			return removeAll(p.BuildDir)
		},
	}); err != nil {
		return nil, err
	}
	if err := p.Register(&Task{
		Name:        CheckTaskName,
		Group:       VerificationGroup,
		Description: "Runs all checks.",
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// File resolves path against the project directory.
func (p *Project) File(path string) string {
	return fsutil.Resolve(p.Dir, path)
}

// BuildFile resolves path against the build directory.
func (p *Project) BuildFile(path string) string {
	return fsutil.Resolve(p.BuildDir, path)
}

// SetProperty sets a project property.
func (p *Project) SetProperty(name, value string) {
	p.properties[name] = value
}

// FindProperty returns a project property, if set.
func (p *Project) FindProperty(name string) (string, bool) {
	v, ok := p.properties[name]
	return v, ok
}

// Register adds a task. Names are unique.
func (p *Project) Register(t *Task) error {
	if t.Name == "" {
		return fmt.Errorf("task name must not be empty")
	}
	if _, exists := p.tasks[t.Name]; exists {
		return fmt.Errorf("cannot add task '%s' as a task with that name already exists", t.Name)
	}
	p.tasks[t.Name] = t
	return nil
}

// Task returns the named task. Names of the form clean<Task> are
// synthesised on first use for any task that declares outputs.
func (p *Project) Task(name string) (*Task, bool) {
	if t, ok := p.tasks[name]; ok {
		return t, true
	}

	target, ok := cleanRuleTarget(name)
	if !ok {
		return nil, false
	}
	t, ok := p.tasks[target]
	if !ok || t.Outputs == nil {
		return nil, false
	}

	clean := &Task{
		Name:        name,
		Group:       BuildGroup,
		Description: fmt.Sprintf("Deletes the outputs of task '%s'.", target),
		Action: func(context.Context) error {
			for _, out := range t.Outputs() {
				if err := removeAll(out); err != nil {
					return err
				}
			}
			return nil
		},
	}
	p.tasks[name] = clean
	return clean, true
}

func cleanRuleTarget(name string) (string, bool) {
	rest := strings.TrimPrefix(name, CleanTaskName)
	if rest == name || rest == "" {
		return "", false
	}
	r, size := utf8.DecodeRuneInString(rest)
	if !unicode.IsUpper(r) {
		return "", false
	}
	return string(unicode.ToLower(r)) + rest[size:], true
}

// Tasks returns the registered tasks ordered by group, then name.
func (p *Project) Tasks() []*Task {
	tasks := make([]*Task, 0, len(p.tasks))
	for _, t := range p.tasks {
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Group != tasks[j].Group {
			return tasks[i].Group < tasks[j].Group
		}
		return tasks[i].Name < tasks[j].Name
	})
	return tasks
}

// CreateBucket registers a dependency bucket and adds the entries the
// project file declares for it.
func (p *Project) CreateBucket(name, description string) (*artifact.Bucket, error) {
	if _, exists := p.buckets[name]; exists {
		return nil, fmt.Errorf("cannot add bucket '%s' as a bucket with that name already exists", name)
	}

	b := artifact.NewBucket(name, description, p.Resolver)
	for i, raw := range p.Config.Dependencies[name] {
		entry, err := artifact.ParseEntry(raw, p.Dir)
		if err != nil {
			return nil, config.NewConfigurationError(
				config.ResolveConfigPath(p.Dir, ""),
				fmt.Sprintf("dependencies.%s[%d]", name, i),
				"validation",
				err.Error(),
				"Use group:name:version[:classifier][@ext] or a path to a .jar file")
		}
		b.Add(entry)
	}

	p.buckets[name] = b
	p.bucketOrder = append(p.bucketOrder, name)
	logging.Debug(projectSubsystem, "Registered bucket %s with %d declared entries", name, len(b.Declared()))
	return b, nil
}

// Bucket returns the named bucket.
func (p *Project) Bucket(name string) (*artifact.Bucket, bool) {
	b, ok := p.buckets[name]
	return b, ok
}

// Buckets returns every bucket in registration order.
func (p *Project) Buckets() []*artifact.Bucket {
	buckets := make([]*artifact.Bucket, 0, len(p.bucketOrder))
	for _, name := range p.bucketOrder {
		buckets = append(buckets, p.buckets[name])
	}
	return buckets
}

func removeAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	logging.Debug(projectSubsystem, "Deleted %s", path)
	return nil
}
