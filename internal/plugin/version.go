package plugin

import (
	_ "embed"
	"fmt"
	"strings"
)

// VersionResourceName names the embedded default executor version.
const VersionResourceName = "creek-system-test-executor.version"

//go:embed creek-system-test-executor.version
var executorVersionResource string

// DefaultExecutorVersion returns the executor version this build defaults to.
func DefaultExecutorVersion() (string, error) {
	return loadResource(VersionResourceName, executorVersionResource)
}

func loadResource(name, content string) (string, error) {
	v := strings.TrimSpace(content)
	if v == "" {
		return "", fmt.Errorf("binary does not contain %s resource", name)
	}
	return v, nil
}
