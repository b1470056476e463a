// Package plugin applies the Creek system test plugin to a project.
//
// Apply registers the creek.systemTest extension with its conventions, the
// systemTestPrepareDebug and systemTest tasks (plus systemTestPrepareCoverage
// when coverage is enabled), makes check depend on systemTest, and creates
// the three dependency buckets feeding the executor's class path:
//
//	systemTestExecutor   the executor itself; defaults to
//	                     org.creekservice:creek-system-test-executor:<DefaultExecutorVersion>
//	systemTestExtension  executor extensions
//	systemTestComponent  services under test and the aggregates they use
package plugin
