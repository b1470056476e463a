package config

import (
	"fmt"
	"strings"
)

// ConfigurationError represents a structured error that occurs while loading
// or validating the project file.
type ConfigurationError struct {
	FilePath    string   `json:"filePath"`    // Full path to the file that caused the error
	Field       string   `json:"field"`       // Dotted path of the offending field, if known
	ErrorType   string   `json:"errorType"`   // Type of error (io, template, parse, validation)
	Message     string   `json:"message"`     // Human-readable error message
	Suggestions []string `json:"suggestions"` // Actionable suggestions to fix the error
}

// Error implements the error interface
func (ce ConfigurationError) Error() string {
	if ce.Field == "" {
		return fmt.Sprintf("%s: %s", ce.FilePath, ce.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ce.FilePath, ce.Field, ce.Message)
}

// DetailedError returns a detailed error message with all context
func (ce ConfigurationError) DetailedError() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Configuration Error in %s", ce.FilePath))
	parts = append(parts, fmt.Sprintf("  Type: %s", ce.ErrorType))
	if ce.Field != "" {
		parts = append(parts, fmt.Sprintf("  Field: %s", ce.Field))
	}
	parts = append(parts, fmt.Sprintf("  Error: %s", ce.Message))

	if len(ce.Suggestions) > 0 {
		parts = append(parts, "  Suggestions:")
		for _, suggestion := range ce.Suggestions {
			parts = append(parts, fmt.Sprintf("    - %s", suggestion))
		}
	}

	return strings.Join(parts, "\n")
}

// ConfigurationErrorCollection holds multiple configuration errors
type ConfigurationErrorCollection struct {
	Errors []ConfigurationError `json:"errors"`
}

// Error implements the error interface for the collection
func (cec ConfigurationErrorCollection) Error() string {
	if len(cec.Errors) == 0 {
		return "no configuration errors"
	}

	if len(cec.Errors) == 1 {
		return cec.Errors[0].Error()
	}

	return fmt.Sprintf("%d configuration errors: %s (and %d more)",
		len(cec.Errors), cec.Errors[0].Error(), len(cec.Errors)-1)
}

// HasErrors returns true if there are any errors in the collection
func (cec *ConfigurationErrorCollection) HasErrors() bool {
	return len(cec.Errors) > 0
}

// Count returns the number of errors in the collection
func (cec *ConfigurationErrorCollection) Count() int {
	return len(cec.Errors)
}

// Add adds a new error to the collection
func (cec *ConfigurationErrorCollection) Add(err ConfigurationError) {
	cec.Errors = append(cec.Errors, err)
}

// GetDetailedReport returns a detailed report of all errors
func (cec *ConfigurationErrorCollection) GetDetailedReport() string {
	if len(cec.Errors) == 0 {
		return "No configuration errors to report"
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("Detailed Configuration Error Report (%d errors):", len(cec.Errors)))
	parts = append(parts, strings.Repeat("=", 60))

	for i, err := range cec.Errors {
		parts = append(parts, fmt.Sprintf("\nError %d:", i+1))
		parts = append(parts, err.DetailedError())

		if i < len(cec.Errors)-1 {
			parts = append(parts, strings.Repeat("-", 40))
		}
	}

	return strings.Join(parts, "\n")
}

// NewConfigurationError creates a new configuration error with basic information
func NewConfigurationError(filePath, field, errorType, message string, suggestions ...string) ConfigurationError {
	return ConfigurationError{
		FilePath:    filePath,
		Field:       field,
		ErrorType:   errorType,
		Message:     message,
		Suggestions: suggestions,
	}
}
