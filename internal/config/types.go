package config

import "time"

// ProjectConfig is the top-level structure of a project's systest.yaml.
//
// Fields left empty are "unset": the plugin applies its conventions to them,
// so a project file only needs to name what it changes.
type ProjectConfig struct {
	BuildDirectory string             `yaml:"buildDirectory,omitempty" default:"build"` // Relative to the project directory
	JVMArgs        string             `yaml:"jvmArgs,omitempty"`                        // Whitespace separated JVM arguments for the executor
	JavaHome       string             `yaml:"javaHome,omitempty"`                       // Falls back to $JAVA_HOME, then `java` on the PATH
	Repositories   RepositoriesConfig `yaml:"repositories,omitempty"`
	Dependencies   map[string][]string `yaml:"dependencies,omitempty"` // Bucket name -> coordinates or file paths
	Creek          CreekConfig        `yaml:"creek,omitempty"`
	Tasks          TasksConfig        `yaml:"tasks,omitempty"`
}

// RepositoriesConfig lists where artifact coordinates are resolved from.
type RepositoriesConfig struct {
	Local  string   `yaml:"local,omitempty" default:"~/.m2/repository"`
	Remote []string `yaml:"remote,omitempty" default:"[\"https://repo.maven.apache.org/maven2\"]"`
}

// CreekConfig is the `creek` extension namespace.
type CreekConfig struct {
	SystemTest SystemTestConfig `yaml:"systemTest,omitempty"`
}

// SystemTestConfig is the `creek.systemTest` extension.
type SystemTestConfig struct {
	TestDirectory   string `yaml:"testDirectory,omitempty"`
	ResultDirectory string `yaml:"resultDirectory,omitempty"`

	// VerificationTimeoutSeconds is passed to the executor verbatim.
	VerificationTimeoutSeconds string `yaml:"verificationTimeoutSeconds,omitempty"`
	// VerificationTimeout is a convenience form. It sets VerificationTimeoutSeconds
	// when that is unset; conflicting values are rejected.
	VerificationTimeout time.Duration `yaml:"verificationTimeout,omitempty"`

	SuitePathPattern string   `yaml:"suitePathPattern,omitempty"`
	ExtraArguments   []string `yaml:"extraArguments,omitempty"`

	Debugging DebugConfig    `yaml:"debugging,omitempty"`
	Coverage  CoverageConfig `yaml:"coverage,omitempty"`
}

// DebugConfig is the `creek.systemTest.debugging` extension.
type DebugConfig struct {
	AttachMePort         int      `yaml:"attachMePort,omitempty" default:"7857"`
	BaseServicePort      int      `yaml:"baseServicePort,omitempty" default:"8000"`
	ServiceNames         []string `yaml:"serviceNames,omitempty"`
	ServiceInstanceNames []string `yaml:"serviceInstanceNames,omitempty"`
}

// CoverageConfig switches on JaCoCo coverage capture for services under test.
type CoverageConfig struct {
	Enabled              bool   `yaml:"enabled,omitempty"`
	ToolVersion          string `yaml:"toolVersion,omitempty" default:"0.8.12"`
	ResultFileName       string `yaml:"resultFileName,omitempty"`
	ResultMountDirectory string `yaml:"resultMountDirectory,omitempty"`
}

// TasksConfig holds per-task overrides.
type TasksConfig struct {
	PrepareDebug    PrepareDebugConfig    `yaml:"systemTestPrepareDebug,omitempty"`
	PrepareCoverage PrepareCoverageConfig `yaml:"systemTestPrepareCoverage,omitempty"`
}

// PrepareDebugConfig configures the systemTestPrepareDebug task.
type PrepareDebugConfig struct {
	AttachMeDirectory string `yaml:"attachMeDirectory,omitempty" default:"~/.attachme"`
	MountDirectory    string `yaml:"mountDirectory,omitempty"`
}

// PrepareCoverageConfig configures the systemTestPrepareCoverage task.
type PrepareCoverageConfig struct {
	MountDirectory string `yaml:"mountDirectory,omitempty"`
}
