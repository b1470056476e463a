package coverage

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"systest/internal/artifact"
	"systest/internal/fsutil"
	"systest/internal/mounts"
	"systest/pkg/logging"
)

const (
	// AgentMountName is the name of the agent mount directory.
	AgentMountName = "jacoco"

	prepareSubsystem = "PrepareCoverage"
)

// ContainerAgentMount is where the agent directory appears inside a container.
var ContainerAgentMount = mounts.ContainerDir(AgentMountName)

// ErrNoAgentJar is returned when the agent mount directory is empty.
var ErrNoAgentJar = errors.New("No Jacoco agent jar found.")

// PrepareTask extracts the JaCoCo agent into its mount directory.
type PrepareTask struct {
	MountDirectory string

	// Agent is the bucket holding the JaCoCo agent distribution. The task
	// is skipped when it is nil.
	Agent *artifact.Bucket
}

// NewPrepareTask returns a task whose mount directory defaults to
// <buildDir>/creek/mounts/jacoco.
func NewPrepareTask(buildDir, mountDir string, agent *artifact.Bucket) *PrepareTask {
	if mountDir == "" {
		mountDir = mounts.HostDir(buildDir, AgentMountName)
	}
	return &PrepareTask{MountDirectory: mountDir, Agent: agent}
}

// ShouldRun reports whether an agent bucket is available.
func (t *PrepareTask) ShouldRun() bool {
	return t.Agent != nil
}

// Run resolves the agent distribution and extracts its nested agent jar
// into the mount directory, replacing any existing copy.
func (t *PrepareTask) Run(ctx context.Context) error {
	if err := os.MkdirAll(t.MountDirectory, 0o755); err != nil {
		return fmt.Errorf("failed to create mount directory: %s: %w", t.MountDirectory, err)
	}

	files, err := t.Agent.Resolve(ctx)
	if err != nil {
		return err
	}
	if len(files) != 1 {
		return fmt.Errorf("expected %s to resolve to a single file, got %d", t.Agent.Name, len(files))
	}

	dest, err := extractAgentJar(files[0], t.MountDirectory)
	if err != nil {
		return err
	}
	logging.Debug(prepareSubsystem, "Extracted JaCoCo agent to %s", dest)
	return nil
}

// extractAgentJar copies the single *.jar entry of archive into dir.
func extractAgentJar(archive, dir string) (string, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", archive, err)
	}
	defer r.Close()

	var agent *zip.File
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.HasSuffix(f.Name, ".jar") {
			continue
		}
		if agent != nil {
			return "", fmt.Errorf("%s contains more than one jar: %s, %s", archive, agent.Name, f.Name)
		}
		agent = f
	}
	if agent == nil {
		return "", fmt.Errorf("%s does not contain an agent jar", archive)
	}

	rc, err := agent.Open()
	if err != nil {
		return "", fmt.Errorf("failed to read %s from %s: %w", agent.Name, archive, err)
	}
	defer rc.Close()

	dest := filepath.Join(dir, path.Base(agent.Name))
	if err := fsutil.WriteAtomic(dest, rc, 0o644); err != nil {
		return "", err
	}
	return dest, nil
}

// AgentJarFileName returns the agent jar's path relative to the mount
// directory.
func (t *PrepareTask) AgentJarFileName() (string, error) {
	files, err := fsutil.Files(t.MountDirectory)
	if err != nil {
		return "", err
	}
	switch len(files) {
	case 0:
		return "", ErrNoAgentJar
	case 1:
		return files[0], nil
	default:
		return "", fmt.Errorf("expected a single agent jar in %s, found %d files", t.MountDirectory, len(files))
	}
}

// Mount returns the read-only bind mount of the agent directory.
func (t *PrepareTask) Mount() mounts.Mount {
	return mounts.Mount{Host: t.MountDirectory, Container: ContainerAgentMount}
}
