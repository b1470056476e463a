package debug

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"systest/internal/fsutil"
	"systest/internal/mounts"
	"systest/pkg/logging"
)

const (
	// MountName is the name of the debug mount directory.
	MountName = "debug"

	// DefaultAttachMeDirectory is where the AttachMe plugin installs its agent.
	DefaultAttachMeDirectory = "~/.attachme"

	prepareSubsystem = "PrepareDebug"
)

// ContainerMount is where the debug mount appears inside a container.
var ContainerMount = mounts.ContainerDir(MountName)

// NoAgentJarError is returned when debugging is requested but the mount
// directory holds no agent.
type NoAgentJarError struct{}

func (NoAgentJarError) Error() string {
	return "No AttachMe agent jar found." + "\n" +
		"Debugging services requires the AttachMe IntelliJ plugin to have been installed and running." + "\n" +
		"See: https://github.com/creek-service/creek-system-test-gradle-plugin#debugging-system-tests"
}

// PrepareTask copies the AttachMe agent into the debug mount directory.
type PrepareTask struct {
	AttachMeDirectory string
	MountDirectory    string
}

// NewPrepareTask returns a task with the given directories. Empty values
// take the defaults: ~/.attachme and <buildDir>/creek/mounts/debug.
func NewPrepareTask(buildDir, attachMeDir, mountDir string) *PrepareTask {
	if attachMeDir == "" {
		attachMeDir = DefaultAttachMeDirectory
	}
	if mountDir == "" {
		mountDir = mounts.HostDir(buildDir, MountName)
	}
	return &PrepareTask{
		AttachMeDirectory: fsutil.ExpandHome(attachMeDir),
		MountDirectory:    mountDir,
	}
}

// ShouldRun reports whether the AttachMe directory exists.
func (t *PrepareTask) ShouldRun() bool {
	return fsutil.Exists(t.AttachMeDirectory)
}

// Run creates the mount directory and copies the newest agent jar into it,
// replacing any previous copy. No agent jar leaves the directory empty.
func (t *PrepareTask) Run(context.Context) error {
	if err := os.MkdirAll(t.MountDirectory, 0o755); err != nil {
		return fmt.Errorf("failed to create mount directory: %s: %w", t.MountDirectory, err)
	}

	agentJar, ok := FindAgentJar(t.AttachMeDirectory)
	if !ok {
		logging.Info(prepareSubsystem, "No AttachMe agent jar in %s", t.AttachMeDirectory)
		return nil
	}

	dest := filepath.Join(t.MountDirectory, filepath.Base(agentJar))
	if err := fsutil.CopyFile(agentJar, dest); err != nil {
		return fmt.Errorf("failed to copy agent jar: %s: %w", agentJar, err)
	}
	logging.Debug(prepareSubsystem, "Copied %s to %s", agentJar, dest)
	return nil
}

// AgentJarFileName returns the agent jar's path relative to the mount
// directory, if present.
func (t *PrepareTask) AgentJarFileName() (string, bool, error) {
	files, err := fsutil.Files(t.MountDirectory)
	if err != nil {
		return "", false, err
	}
	switch len(files) {
	case 0:
		return "", false, nil
	case 1:
		return files[0], true, nil
	default:
		return "", false, fmt.Errorf("expected a single agent jar in %s, found %d files", t.MountDirectory, len(files))
	}
}

// Mount returns the read-only bind mount of the debug directory.
func (t *PrepareTask) Mount() mounts.Mount {
	return mounts.Mount{Host: t.MountDirectory, Container: ContainerMount}
}

// JavaToolOptions returns the JAVA_TOOL_OPTIONS fragment that loads the
// agent and opens a JDWP port. ${SERVICE_DEBUG_PORT} is expanded by the
// executor per service.
func (t *PrepareTask) JavaToolOptions(attachMePort int) (string, error) {
	jar, ok, err := t.AgentJarFileName()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", NoAgentJarError{}
	}

	return "-javaagent:" + path.Join(ContainerMount, filepath.ToSlash(jar)) +
		"=host:host.docker.internal,port:" + strconv.Itoa(attachMePort) +
		" -agentlib:jdwp=transport=dt_socket,server=y,suspend=y,address=*:${SERVICE_DEBUG_PORT}", nil
}
