package artifact

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// pom is the subset of a Maven POM needed to follow direct dependencies.
type pom struct {
	GroupID    string        `xml:"groupId"`
	ArtifactID string        `xml:"artifactId"`
	Version    string        `xml:"version"`
	Packaging  string        `xml:"packaging"`
	Parent     pomParent     `xml:"parent"`
	Properties pomProperties `xml:"properties"`
	Deps       []pomDep      `xml:"dependencies>dependency"`
}

type pomParent struct {
	GroupID string `xml:"groupId"`
	Version string `xml:"version"`
}

type pomProperties struct {
	Entries []pomProperty `xml:",any"`
}

type pomProperty struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

type pomDep struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
	Optional   string `xml:"optional"`
	Classifier string `xml:"classifier"`
	Type       string `xml:"type"`
}

func parsePOM(r io.Reader) (*pom, error) {
	var p pom
	if err := xml.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse POM: %w", err)
	}
	return &p, nil
}

func (p *pom) groupID() string {
	if p.GroupID != "" {
		return p.GroupID
	}
	return p.Parent.GroupID
}

func (p *pom) version() string {
	if p.Version != "" {
		return p.Version
	}
	return p.Parent.Version
}

// interpolate substitutes ${...} references to project coordinates and POM
// properties. Unknown references are left in place.
func (p *pom) interpolate(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}

	values := map[string]string{
		"project.version":    p.version(),
		"project.groupId":    p.groupID(),
		"project.artifactId": p.ArtifactID,
		"version":            p.version(),
		"groupId":            p.groupID(),
	}
	for _, prop := range p.Properties.Entries {
		values[prop.XMLName.Local] = strings.TrimSpace(prop.Value)
	}

	// Properties may reference each other; a few passes settle them.
	for i := 0; i < 5 && strings.Contains(s, "${"); i++ {
		replaced := s
		for k, v := range values {
			replaced = strings.ReplaceAll(replaced, "${"+k+"}", v)
		}
		if replaced == s {
			break
		}
		s = replaced
	}
	return s
}

// dependencies returns the runtime relevant direct dependencies. The second
// return lists those skipped because their version could not be determined.
func (p *pom) dependencies() ([]Coordinate, []string) {
	var deps []Coordinate
	var skipped []string

	for _, d := range p.Deps {
		switch strings.TrimSpace(d.Scope) {
		case "", "compile", "runtime":
		default:
			continue
		}
		if strings.TrimSpace(d.Optional) == "true" {
			continue
		}

		group := p.interpolate(strings.TrimSpace(d.GroupID))
		name := p.interpolate(strings.TrimSpace(d.ArtifactID))
		version := p.interpolate(strings.TrimSpace(d.Version))
		if version == "" || strings.Contains(version, "${") || strings.ContainsAny(version, "[(") {
			skipped = append(skipped, group+":"+name)
			continue
		}

		c := Coordinate{
			Group:      group,
			Name:       name,
			Version:    version,
			Classifier: p.interpolate(strings.TrimSpace(d.Classifier)),
		}
		if t := strings.TrimSpace(d.Type); t != "" && t != defaultExtension {
			c.Extension = t
		}
		deps = append(deps, c)
	}
	return deps, skipped
}
