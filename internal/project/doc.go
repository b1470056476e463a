// Package project is the small host surface the system test plugin is
// applied to: a project directory, a build directory, properties, the fixed
// set of tasks and the named dependency buckets.
//
// It is deliberately not a general build system. The only tasks are the
// lifecycle tasks registered here (clean, check and the clean<Task> rule)
// and the ones the plugin registers.
package project
