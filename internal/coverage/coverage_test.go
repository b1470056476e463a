package coverage

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"systest/internal/artifact"
)

var agentCoordinate = artifact.Coordinate{Group: "org.jacoco", Name: "org.jacoco.agent", Version: "0.8.12"}

// writeAgentDistribution writes a jar shaped like org.jacoco.agent into a
// local Maven repository.
func writeAgentDistribution(t *testing.T, repo string, entries map[string]string) {
	t.Helper()
	path := filepath.Join(repo, filepath.FromSlash(agentCoordinate.RepositoryPath()))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	f, err := os.Create(path)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func newAgentBucket(repo string) *artifact.Bucket {
	b := artifact.NewBucket("jacocoAgent", "JaCoCo agent", artifact.NewResolver(repo, nil))
	b.Transitive = false
	b.SetDefaultDependencies(artifact.CoordinateEntry(agentCoordinate))
	return b
}

func TestPrepareTask_Defaults(t *testing.T) {
	task := NewPrepareTask("/p/build", "", nil)
	assert.Equal(t, "/p/build/creek/mounts/jacoco", task.MountDirectory)
	assert.False(t, task.ShouldRun(), "no agent bucket")
	assert.Equal(t, "/p/build/creek/mounts/jacoco=/opt/creek/mounts/jacoco", task.Mount().String())
}

func TestPrepareTask_ExtractsAgentJar(t *testing.T) {
	repo := t.TempDir()
	writeAgentDistribution(t, repo, map[string]string{
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0",
		"jacocoagent.jar":      "agent bytes",
	})
	task := NewPrepareTask(filepath.Join(t.TempDir(), "build"), "", newAgentBucket(repo))
	require.True(t, task.ShouldRun())

	require.NoError(t, task.Run(context.Background()))

	data, err := os.ReadFile(filepath.Join(task.MountDirectory, "jacocoagent.jar"))
	require.NoError(t, err)
	assert.Equal(t, "agent bytes", string(data))

	name, err := task.AgentJarFileName()
	require.NoError(t, err)
	assert.Equal(t, "jacocoagent.jar", name)
}

func TestPrepareTask_ReplacesExistingAgentJar(t *testing.T) {
	repo := t.TempDir()
	writeAgentDistribution(t, repo, map[string]string{"jacocoagent.jar": "new"})
	task := NewPrepareTask(filepath.Join(t.TempDir(), "build"), "", newAgentBucket(repo))
	require.NoError(t, os.MkdirAll(task.MountDirectory, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(task.MountDirectory, "jacocoagent.jar"), []byte("old"), 0o644))

	require.NoError(t, task.Run(context.Background()))

	data, err := os.ReadFile(filepath.Join(task.MountDirectory, "jacocoagent.jar"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestPrepareTask_RejectsAmbiguousDistribution(t *testing.T) {
	repo := t.TempDir()
	writeAgentDistribution(t, repo, map[string]string{"a.jar": "", "b.jar": ""})
	task := NewPrepareTask(filepath.Join(t.TempDir(), "build"), "", newAgentBucket(repo))

	err := task.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than one jar")
}

func TestExtension_Defaults(t *testing.T) {
	prepare := NewPrepareTask("/p/build", "", nil)
	ext := NewExtension("systemTest", "/p/build", "", "", prepare)

	assert.Equal(t, "systemTest.exec", ext.ResultFileName)
	assert.Equal(t, "/p/build/creek/mounts/coverage", ext.ResultMountDirectory)
	assert.Equal(t, "/p/build/creek/mounts/coverage/systemTest.exec", ext.DestinationFile())

	opts := ext.MountOptions()
	require.Len(t, opts, 2)
	assert.Equal(t, "/p/build/creek/mounts/jacoco=/opt/creek/mounts/jacoco", opts[0].String())
	assert.False(t, opts[0].Writable)
	assert.Equal(t, "/p/build/creek/mounts/coverage=/opt/creek/mounts/coverage", opts[1].String())
	assert.True(t, opts[1].Writable)
}

func TestExtension_JavaToolOptions(t *testing.T) {
	build := t.TempDir()
	prepare := NewPrepareTask(build, "", nil)
	ext := NewExtension("systemTest", build, "", "", prepare)

	_, err := ext.JavaToolOptions()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoAgentJar))
	assert.Equal(t, "No Jacoco agent jar found.", err.Error())

	require.NoError(t, os.MkdirAll(prepare.MountDirectory, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(prepare.MountDirectory, "jacocoagent.jar"), nil, 0o644))

	opts, err := ext.JavaToolOptions()
	require.NoError(t, err)
	assert.Equal(t,
		"-javaagent:/opt/creek/mounts/jacoco/jacocoagent.jar=destfile=/opt/creek/mounts/coverage/systemTest.exec"+
			",append=true,inclnolocationclasses=false,dumponexit=true,output=file,jmx=false",
		opts)
}

func TestExtension_CleanUp(t *testing.T) {
	build := t.TempDir()
	ext := NewExtension("systemTest", build, "custom.exec", "", NewPrepareTask(build, "", nil))

	require.NoError(t, ext.CleanUp(), "nothing to delete")

	require.NoError(t, os.MkdirAll(ext.ResultMountDirectory, 0o755))
	require.NoError(t, os.WriteFile(ext.DestinationFile(), []byte("stale"), 0o644))
	other := filepath.Join(ext.ResultMountDirectory, "other.exec")
	require.NoError(t, os.WriteFile(other, nil, 0o644))

	require.NoError(t, ext.CleanUp())
	assert.NoFileExists(t, ext.DestinationFile())
	assert.FileExists(t, other)
}
