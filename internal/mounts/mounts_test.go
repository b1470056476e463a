package mounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHostDir(t *testing.T) {
	assert.Equal(t, "/p/build/creek/mounts/debug", HostDir("/p/build", "debug"))
}

func TestContainerDir(t *testing.T) {
	assert.Equal(t, "/opt/creek/mounts/jacoco", ContainerDir("jacoco"))
}

func TestMountString(t *testing.T) {
	m := Mount{Host: "/p/build/creek/mounts/coverage", Container: ContainerDir("coverage"), Writable: true}
	assert.Equal(t, "/p/build/creek/mounts/coverage=/opt/creek/mounts/coverage", m.String())
}
