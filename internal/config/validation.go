package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidatePort checks a TCP port number is in range.
func ValidatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return ValidationError{
			Field:   field,
			Value:   port,
			Message: "must be between 1 and 65535",
		}
	}
	return nil
}

// Validate checks a loaded configuration and reports every problem at once.
// The suite pattern and timeout value are deliberately not checked here: the
// executor parses them and reports its own errors.
func Validate(configFilePath string, cfg ProjectConfig) ConfigurationErrorCollection {
	var errs ValidationErrors

	if strings.TrimSpace(cfg.BuildDirectory) == "" {
		errs.Add("buildDirectory", "must not be empty")
	}

	for i, repo := range cfg.Repositories.Remote {
		u, err := url.Parse(repo)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file") {
			errs.Add(fmt.Sprintf("repositories.remote[%d]", i), "must be an http, https or file URL", repo)
		}
	}

	st := cfg.Creek.SystemTest
	if st.VerificationTimeout < 0 {
		errs.Add("creek.systemTest.verificationTimeout", "must not be negative", st.VerificationTimeout)
	}
	if st.VerificationTimeout > 0 {
		derived := strconv.FormatInt(int64(st.VerificationTimeout/time.Second), 10)
		if st.VerificationTimeoutSeconds != derived {
			errs.Add("creek.systemTest.verificationTimeout", "conflicts with verificationTimeoutSeconds; set only one", st.VerificationTimeout)
		}
	}

	if err := ValidatePort("creek.systemTest.debugging.attachMePort", st.Debugging.AttachMePort); err != nil {
		errs = append(errs, err.(ValidationError))
	}
	if err := ValidatePort("creek.systemTest.debugging.baseServicePort", st.Debugging.BaseServicePort); err != nil {
		errs = append(errs, err.(ValidationError))
	}

	for i, name := range st.Debugging.ServiceNames {
		if strings.TrimSpace(name) == "" || strings.Contains(name, ",") {
			errs.Add(fmt.Sprintf("creek.systemTest.debugging.serviceNames[%d]", i), "must be a non-empty name without commas", name)
		}
	}
	for i, name := range st.Debugging.ServiceInstanceNames {
		if strings.TrimSpace(name) == "" || strings.Contains(name, ",") {
			errs.Add(fmt.Sprintf("creek.systemTest.debugging.serviceInstanceNames[%d]", i), "must be a non-empty name without commas", name)
		}
	}

	if name := st.Coverage.ResultFileName; name != "" && strings.ContainsAny(name, `/\`) {
		errs.Add("creek.systemTest.coverage.resultFileName", "must be a file name, not a path", name)
	}

	var collection ConfigurationErrorCollection
	for _, ve := range errs {
		collection.Add(NewConfigurationError(configFilePath, ve.Field, "validation", ve.Message))
	}
	return collection
}
