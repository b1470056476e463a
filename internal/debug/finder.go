package debug

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const agentJarPrefix = "attachme-agent-"

// FindAgentJar returns the AttachMe agent jar in dir. Where several versions
// are present the lexicographically last wins.
func FindAgentJar(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}

	var jars []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, agentJarPrefix) && strings.HasSuffix(name, ".jar") {
			jars = append(jars, filepath.Join(dir, name))
		}
	}
	if len(jars) == 0 {
		return "", false
	}

	sort.Strings(jars)
	return jars[len(jars)-1], true
}
