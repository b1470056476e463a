package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"systest/pkg/logging"

	"gopkg.in/yaml.v3"
)

const loaderSubsystem = "ConfigLoader"

// ResolveConfigPath returns the absolute location of the project file. A
// relative fileName is taken relative to projectDir.
func ResolveConfigPath(projectDir, fileName string) string {
	if fileName == "" {
		fileName = DefaultConfigFileName
	}
	if filepath.IsAbs(fileName) {
		return fileName
	}
	return filepath.Join(projectDir, fileName)
}

// LoadConfig loads the project file for projectDir. A missing file is not an
// error: the defaults are returned, which is enough to run with conventions.
func LoadConfig(projectDir, fileName string) (ProjectConfig, error) {
	configFilePath := ResolveConfigPath(projectDir, fileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info(loaderSubsystem, "No %s found at %s, using defaults", filepath.Base(configFilePath), configFilePath)
			return config, nil
		}
		return ProjectConfig{}, NewConfigurationError(configFilePath, "", "io", err.Error())
	}

	config, err = parseConfig(configFilePath, data, newTemplateData(projectDir))
	if err != nil {
		return ProjectConfig{}, err
	}

	if errs := Validate(configFilePath, config); errs.HasErrors() {
		return ProjectConfig{}, errs
	}

	logging.Info(loaderSubsystem, "Loaded configuration from %s", configFilePath)
	return config, nil
}

func parseConfig(configFilePath string, data []byte, tmplData TemplateData) (ProjectConfig, error) {
	rendered, err := renderTemplate(filepath.Base(configFilePath), data, tmplData)
	if err != nil {
		return ProjectConfig{}, NewConfigurationError(configFilePath, "", "template", err.Error(),
			"Check the {{ }} expressions in the file; sprig functions such as env and default are available")
	}

	config := GetDefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(rendered))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return ProjectConfig{}, NewConfigurationError(configFilePath, "", "parse", err.Error(),
			"Ensure the file is valid YAML and only uses documented keys")
	}

	normalize(&config)
	return config, nil
}

// normalize folds convenience forms into their canonical fields.
func normalize(cfg *ProjectConfig) {
	st := &cfg.Creek.SystemTest
	if st.VerificationTimeout > 0 && st.VerificationTimeoutSeconds == "" {
		st.VerificationTimeoutSeconds = strconv.FormatInt(int64(st.VerificationTimeout/time.Second), 10)
	}
}

// Marshal renders the configuration back to YAML.
func Marshal(cfg ProjectConfig) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return buf.Bytes(), nil
}
