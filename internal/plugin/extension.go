package plugin

import (
	"strconv"
	"time"

	"systest/internal/config"
)

const (
	// DefaultAttachMePort is the port the AttachMe IntelliJ plugin listens on.
	DefaultAttachMePort = 7857
	// DefaultBaseDebugPort is the first port services listen on for a debugger.
	DefaultBaseDebugPort = 8000
)

// SystemTestExtension is the `creek.systemTest` extension with conventions
// applied.
type SystemTestExtension struct {
	TestDirectory              string
	ResultDirectory            string
	VerificationTimeoutSeconds string
	SuitePathPattern           string
	ExtraArguments             []string
	Debugging                  DebugExtension
}

// DebugExtension is `creek.systemTest.debugging`.
type DebugExtension struct {
	AttachMePort         int
	BaseServicePort      int
	ServiceNames         []string
	ServiceInstanceNames []string
}

// VerificationTimeout sets the timeout from a duration.
func (e *SystemTestExtension) VerificationTimeout(d time.Duration) {
	e.VerificationTimeoutSeconds = strconv.FormatInt(int64(d/time.Second), 10)
}

// SetExtraArguments replaces the extra arguments.
func (e *SystemTestExtension) SetExtraArguments(args ...string) {
	e.ExtraArguments = append([]string(nil), args...)
}

// SetServiceNames replaces the services to debug.
func (d *DebugExtension) SetServiceNames(names ...string) {
	d.ServiceNames = uniqueNames(names)
}

// SetServiceInstanceNames replaces the service instances to debug. An
// instance name is the service name, a dash and the instance number.
func (d *DebugExtension) SetServiceInstanceNames(names ...string) {
	d.ServiceInstanceNames = uniqueNames(names)
}

func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// newExtension applies conventions to the configured values. file resolves
// paths against the project directory.
func newExtension(cfg config.SystemTestConfig, file func(string) string, buildFile func(string) string) *SystemTestExtension {
	ext := &SystemTestExtension{
		TestDirectory:              file(DefaultTestsDirName),
		ResultDirectory:            buildFile(DefaultResultsDirName),
		VerificationTimeoutSeconds: strconv.FormatInt(int64(DefaultExpectationTimeout/time.Second), 10),
		SuitePathPattern:           DefaultSuitesPattern,
		ExtraArguments:             []string{},
		Debugging: DebugExtension{
			AttachMePort:    DefaultAttachMePort,
			BaseServicePort: DefaultBaseDebugPort,
		},
	}

	if cfg.TestDirectory != "" {
		ext.TestDirectory = file(cfg.TestDirectory)
	}
	if cfg.ResultDirectory != "" {
		ext.ResultDirectory = file(cfg.ResultDirectory)
	}
	if cfg.VerificationTimeoutSeconds != "" {
		ext.VerificationTimeoutSeconds = cfg.VerificationTimeoutSeconds
	}
	if cfg.SuitePathPattern != "" {
		ext.SuitePathPattern = cfg.SuitePathPattern
	}
	if cfg.ExtraArguments != nil {
		ext.SetExtraArguments(cfg.ExtraArguments...)
	}

	if cfg.Debugging.AttachMePort != 0 {
		ext.Debugging.AttachMePort = cfg.Debugging.AttachMePort
	}
	if cfg.Debugging.BaseServicePort != 0 {
		ext.Debugging.BaseServicePort = cfg.Debugging.BaseServicePort
	}
	ext.Debugging.SetServiceNames(cfg.Debugging.ServiceNames...)
	ext.Debugging.SetServiceInstanceNames(cfg.Debugging.ServiceInstanceNames...)
	return ext
}
