package plugin

import (
	"fmt"
	"sort"
	"time"

	"systest/internal/artifact"
	"systest/internal/config"
	"systest/internal/coverage"
	"systest/internal/debug"
	"systest/internal/javaexec"
	"systest/internal/project"
	"systest/internal/systemtest"
	"systest/pkg/logging"
)

const (
	// CreekExtensionName is the extension namespace.
	CreekExtensionName = "creek"
	// TestExtensionName is the system test extension, i.e. `creek.systemTest`.
	TestExtensionName = "systemTest"

	// ExecutorConfigurationName is the bucket holding the executor.
	ExecutorConfigurationName = "systemTestExecutor"
	// ExtensionConfigurationName is the bucket holding executor extensions.
	ExtensionConfigurationName = "systemTestExtension"
	// ComponentConfigurationName is the bucket holding the components under test.
	ComponentConfigurationName = "systemTestComponent"
	// JacocoAgentConfigurationName is the bucket holding the JaCoCo agent.
	JacocoAgentConfigurationName = "jacocoAgent"

	SystemTestTaskName      = "systemTest"
	PrepareDebugTaskName    = "systemTestPrepareDebug"
	PrepareCoverageTaskName = "systemTestPrepareCoverage"

	// GroupName is the standard Creek task group.
	GroupName = "creek"

	// DefaultTestsDirName is relative to the project directory.
	DefaultTestsDirName = "src/system-test"
	// DefaultResultsDirName is relative to the build directory.
	DefaultResultsDirName = "test-results/system-test"
	// DefaultExpectationTimeout bounds how long an expectation may take.
	DefaultExpectationTimeout = time.Minute
	// DefaultSuitesPattern includes every suite.
	DefaultSuitesPattern = ".*"

	ExecutorDepGroupName    = "org.creekservice"
	ExecutorDepArtefactName = "creek-system-test-executor"

	pluginSubsystem = "Plugin"
)

// Plugin holds what Apply registered.
type Plugin struct {
	Extension       *SystemTestExtension
	SystemTest      *systemtest.Task
	PrepareDebug    *debug.PrepareTask
	PrepareCoverage *coverage.PrepareTask
}

// Apply registers the extension, tasks and buckets on p.
func Apply(p *project.Project) (*Plugin, error) {
	cfg := p.Config
	st := cfg.Creek.SystemTest
	ext := newExtension(st, p.File, p.BuildFile)

	plugin := &Plugin{Extension: ext}

	executor, extensions, components, err := registerBuckets(p)
	if err != nil {
		return nil, err
	}

	plugin.PrepareDebug = debug.NewPrepareTask(p.BuildDir,
		optionalPath(p, cfg.Tasks.PrepareDebug.AttachMeDirectory),
		optionalPath(p, cfg.Tasks.PrepareDebug.MountDirectory))
	if err := p.Register(&project.Task{
		Name:        PrepareDebugTaskName,
		Group:       GroupName,
		Description: "Prepares the mount directory holding the AttachMe debug agent.",
		OnlyIf:      plugin.PrepareDebug.ShouldRun,
		Outputs:     func() []string { return []string{plugin.PrepareDebug.MountDirectory} },
		Action:      plugin.PrepareDebug.Run,
	}); err != nil {
		return nil, err
	}

	task := &systemtest.Task{
		Name:                       SystemTestTaskName,
		TestDirectory:              ext.TestDirectory,
		ResultDirectory:            ext.ResultDirectory,
		VerificationTimeoutSeconds: ext.VerificationTimeoutSeconds,
		SuitesPathPattern:          ext.SuitePathPattern,
		ExtraArguments:             ext.ExtraArguments,
		DebugAttachMePort:          ext.Debugging.AttachMePort,
		DebugBaseServicePort:       ext.Debugging.BaseServicePort,
		DebugServiceNames:          ext.Debugging.ServiceNames,
		DebugServiceInstanceNames:  ext.Debugging.ServiceInstanceNames,
		SystemTestExecutor:         executor,
		SystemTestExtensions:       extensions,
		SystemTestComponents:       components,
		Executor:                   systemtest.ExecutorModule{Group: ExecutorDepGroupName, Artifact: ExecutorDepArtefactName},
		Debug:                      plugin.PrepareDebug,
		Project:                    p,
		Java:                       javaexec.NewJavaRuntime(optionalPath(p, cfg.JavaHome)),
	}
	plugin.SystemTest = task

	dependsOn := []string{PrepareDebugTaskName}
	if st.Coverage.Enabled {
		prepare, err := registerCoverage(p, st.Coverage, cfg.Tasks.PrepareCoverage)
		if err != nil {
			return nil, err
		}
		plugin.PrepareCoverage = prepare
		task.Coverage = coverage.NewExtension(task.Name, p.BuildDir,
			st.Coverage.ResultFileName, optionalPath(p, st.Coverage.ResultMountDirectory), prepare)
		dependsOn = append(dependsOn, PrepareCoverageTaskName)
	}

	systemTest := task.ProjectTask(dependsOn...)
	systemTest.Group = GroupName
	if err := p.Register(systemTest); err != nil {
		return nil, err
	}

	if check, ok := p.Task(project.CheckTaskName); ok {
		check.DependsOn = append(check.DependsOn, SystemTestTaskName)
	}

	if err := checkDeclaredBuckets(p); err != nil {
		return nil, err
	}

	logging.Debug(pluginSubsystem, "Applied %s.%s to %s", CreekExtensionName, TestExtensionName, p.Dir)
	return plugin, nil
}

func registerBuckets(p *project.Project) (executor, extensions, components *artifact.Bucket, err error) {
	executor, err = createHiddenBucket(p, ExecutorConfigurationName, "Dependency for the Creek system test executor")
	if err != nil {
		return nil, nil, nil, err
	}
	version, err := DefaultExecutorVersion()
	if err != nil {
		return nil, nil, nil, err
	}
	executor.SetDefaultDependencies(artifact.CoordinateEntry(artifact.Coordinate{
		Group:   ExecutorDepGroupName,
		Name:    ExecutorDepArtefactName,
		Version: version,
	}))

	extensions, err = createHiddenBucket(p, ExtensionConfigurationName, "Creek system test extensions")
	if err != nil {
		return nil, nil, nil, err
	}

	components, err = createHiddenBucket(p, ComponentConfigurationName,
		"Creek components: the services under test and any aggregates they interact with")
	if err != nil {
		return nil, nil, nil, err
	}
	return executor, extensions, components, nil
}

func createHiddenBucket(p *project.Project, name, description string) (*artifact.Bucket, error) {
	b, err := p.CreateBucket(name, description)
	if err != nil {
		return nil, err
	}
	b.Visible = false
	b.Transitive = true
	b.Consumable = false
	b.Resolvable = true
	return b, nil
}

func registerCoverage(p *project.Project, cov config.CoverageConfig, taskCfg config.PrepareCoverageConfig) (*coverage.PrepareTask, error) {
	agent, err := p.CreateBucket(JacocoAgentConfigurationName, "The JaCoCo agent to use to get coverage data.")
	if err != nil {
		return nil, err
	}
	agent.Visible = false
	agent.Transitive = false
	agent.Consumable = false
	agent.SetDefaultDependencies(artifact.CoordinateEntry(artifact.Coordinate{
		Group:   "org.jacoco",
		Name:    "org.jacoco.agent",
		Version: cov.ToolVersion,
	}))

	prepare := coverage.NewPrepareTask(p.BuildDir, optionalPath(p, taskCfg.MountDirectory), agent)
	if err := p.Register(&project.Task{
		Name:        PrepareCoverageTaskName,
		Group:       GroupName,
		Description: "Prepares the mount directory holding the JaCoCo agent.",
		OnlyIf:      prepare.ShouldRun,
		Outputs:     func() []string { return []string{prepare.MountDirectory} },
		Action:      prepare.Run,
	}); err != nil {
		return nil, err
	}
	return prepare, nil
}

// checkDeclaredBuckets rejects dependencies declared for buckets that do
// not exist.
func checkDeclaredBuckets(p *project.Project) error {
	var unknown []string
	for name := range p.Config.Dependencies {
		if _, ok := p.Bucket(name); !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)

	var errs config.ConfigurationErrorCollection
	for _, name := range unknown {
		errs.Add(config.NewConfigurationError(
			config.ResolveConfigPath(p.Dir, ""),
			"dependencies."+name,
			"validation",
			fmt.Sprintf("unknown dependency bucket '%s'", name),
			"Known buckets: "+ExecutorConfigurationName+", "+ExtensionConfigurationName+", "+ComponentConfigurationName+
				" and, with coverage enabled, "+JacocoAgentConfigurationName))
	}
	return errs
}

func optionalPath(p *project.Project, path string) string {
	if path == "" {
		return ""
	}
	return p.File(path)
}
