package config

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// TemplateData is exposed to the project file while it is rendered.
type TemplateData struct {
	ProjectDir string
	Home       string
}

// renderTemplate renders raw project file content as a text/template with the
// sprig function set, so values such as `{{ env "CI_TIMEOUT" | default "60" }}`
// can be used. Content without template actions is returned unchanged.
func renderTemplate(name string, raw []byte, data TemplateData) ([]byte, error) {
	if !bytes.Contains(raw, []byte("{{")) {
		return raw, nil
	}

	tmpl, err := template.New(name).
		Option("missingkey=error").
		Funcs(sprig.TxtFuncMap()).
		Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}
	return buf.Bytes(), nil
}

func newTemplateData(projectDir string) TemplateData {
	home, _ := os.UserHomeDir()
	return TemplateData{
		ProjectDir: projectDir,
		Home:       home,
	}
}
