// Package mounts describes the directories bind-mounted into the containers
// the system test executor starts.
package mounts

import (
	"path"
	"path/filepath"
)

const (
	// HostMountDir is the directory, relative to the build directory, under
	// which mount directories are prepared.
	HostMountDir = "creek/mounts"

	// ContainerMountDir is where mounts appear inside a container.
	ContainerMountDir = "/opt/creek/mounts"
)

// HostDir returns the host side mount directory called name.
func HostDir(buildDir, name string) string {
	return filepath.Join(buildDir, filepath.FromSlash(HostMountDir), name)
}

// ContainerDir returns the container side mount directory called name.
func ContainerDir(name string) string {
	return path.Join(ContainerMountDir, name)
}

// Mount is a single host to container bind mount.
type Mount struct {
	Host      string
	Container string
	Writable  bool
}

// String renders the mount in the executor's `<host>=<container>` form.
func (m Mount) String() string {
	return m.Host + "=" + m.Container
}
