package coverage

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"systest/internal/mounts"
)

const (
	// ResultMountName is the name of the writable result mount directory.
	ResultMountName = "coverage"
)

// ContainerResultMount is where results are written inside a container.
var ContainerResultMount = mounts.ContainerDir(ResultMountName)

// Extension configures coverage for one system test task.
type Extension struct {
	ResultFileName       string
	ResultMountDirectory string

	prepare *PrepareTask
}

// NewExtension returns the coverage extension for taskName. Empty values
// default to <taskName>.exec and <buildDir>/creek/mounts/coverage.
func NewExtension(taskName, buildDir, resultFileName, resultMountDir string, prepare *PrepareTask) *Extension {
	if resultFileName == "" {
		resultFileName = taskName + ".exec"
	}
	if resultMountDir == "" {
		resultMountDir = mounts.HostDir(buildDir, ResultMountName)
	}
	return &Extension{
		ResultFileName:       resultFileName,
		ResultMountDirectory: resultMountDir,
		prepare:              prepare,
	}
}

// DestinationFile is the host path the execution data is written to.
func (e *Extension) DestinationFile() string {
	return filepath.Join(e.ResultMountDirectory, e.ResultFileName)
}

// AgentMount is the read-only mount holding the agent jar.
func (e *Extension) AgentMount() mounts.Mount {
	return e.prepare.Mount()
}

// ResultMount is the writable mount receiving execution data.
func (e *Extension) ResultMount() mounts.Mount {
	return mounts.Mount{Host: e.ResultMountDirectory, Container: ContainerResultMount, Writable: true}
}

// MountOptions returns the agent and result mounts, in that order.
func (e *Extension) MountOptions() []mounts.Mount {
	return []mounts.Mount{e.AgentMount(), e.ResultMount()}
}

// JavaToolOptions returns the JAVA_TOOL_OPTIONS fragment that loads the
// agent and writes results into the result mount.
func (e *Extension) JavaToolOptions() (string, error) {
	jar, err := e.prepare.AgentJarFileName()
	if err != nil {
		return "", err
	}

	return "-javaagent:" + path.Join(ContainerAgentMount, filepath.ToSlash(jar)) +
		"=destfile=" + path.Join(ContainerResultMount, e.ResultFileName) +
		",append=true,inclnolocationclasses=false,dumponexit=true,output=file,jmx=false", nil
}

// CleanUp deletes results left by a previous run.
func (e *Extension) CleanUp() error {
	if err := os.Remove(e.DestinationFile()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete previous coverage results: %w", err)
	}
	return nil
}
