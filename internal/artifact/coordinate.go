package artifact

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const defaultExtension = "jar"

// Coordinate identifies an artifact in a Maven repository.
type Coordinate struct {
	Group      string
	Name       string
	Version    string
	Classifier string
	Extension  string
}

// ParseCoordinate parses group:name:version[:classifier][@ext].
func ParseCoordinate(s string) (Coordinate, error) {
	var c Coordinate

	body := strings.TrimSpace(s)
	if at := strings.LastIndex(body, "@"); at >= 0 {
		c.Extension = body[at+1:]
		body = body[:at]
		if c.Extension == "" {
			return Coordinate{}, fmt.Errorf("invalid coordinate %q: empty extension", s)
		}
	}

	parts := strings.Split(body, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Coordinate{}, fmt.Errorf("invalid coordinate %q: expected group:name:version[:classifier][@ext]", s)
	}
	for _, p := range parts {
		if p == "" {
			return Coordinate{}, fmt.Errorf("invalid coordinate %q: empty component", s)
		}
	}

	c.Group, c.Name, c.Version = parts[0], parts[1], parts[2]
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	return c, nil
}

// String renders the coordinate in the form ParseCoordinate accepts.
func (c Coordinate) String() string {
	s := c.Group + ":" + c.Name + ":" + c.Version
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	if c.Extension != "" && c.Extension != defaultExtension {
		s += "@" + c.Extension
	}
	return s
}

// Module returns group:name, the identity used for conflict resolution.
func (c Coordinate) Module() string {
	return c.Group + ":" + c.Name
}

// Ext returns the artifact's file extension.
func (c Coordinate) Ext() string {
	if c.Extension == "" {
		return defaultExtension
	}
	return c.Extension
}

// FileName returns the repository file name, e.g. name-1.0-tests.jar.
func (c Coordinate) FileName() string {
	name := c.Name + "-" + c.Version
	if c.Classifier != "" {
		name += "-" + c.Classifier
	}
	return name + "." + c.Ext()
}

// RepositoryPath returns the slash separated path of the artifact within a
// Maven repository.
func (c Coordinate) RepositoryPath() string {
	return path.Join(strings.ReplaceAll(c.Group, ".", "/"), c.Name, c.Version, c.FileName())
}

// POM returns the coordinate of this artifact's POM.
func (c Coordinate) POM() Coordinate {
	return Coordinate{Group: c.Group, Name: c.Name, Version: c.Version, Extension: "pom"}
}

// Entry is one declared bucket entry: a coordinate or a local file.
type Entry struct {
	Raw        string
	Coordinate *Coordinate
	File       string
}

// IsFile reports whether the entry names a local file.
func (e Entry) IsFile() bool {
	return e.Coordinate == nil
}

// String returns the entry as it was declared.
func (e Entry) String() string {
	return e.Raw
}

// ParseEntry classifies a declared entry. Existing paths, and anything ending
// in .jar or .zip, are files resolved against baseDir; everything else must
// be a coordinate.
func ParseEntry(raw, baseDir string) (Entry, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Entry{}, fmt.Errorf("empty dependency entry")
	}

	file := raw
	if !filepath.IsAbs(file) {
		file = filepath.Join(baseDir, file)
	}
	lower := strings.ToLower(raw)
	if _, err := os.Stat(file); err == nil || strings.HasSuffix(lower, ".jar") || strings.HasSuffix(lower, ".zip") {
		return Entry{Raw: raw, File: filepath.Clean(file)}, nil
	}

	c, err := ParseCoordinate(raw)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Raw: raw, Coordinate: &c}, nil
}

// CoordinateEntry wraps a coordinate as an entry.
func CoordinateEntry(c Coordinate) Entry {
	return Entry{Raw: c.String(), Coordinate: &c}
}
