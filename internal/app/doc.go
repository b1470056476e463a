// Package app bootstraps systest for a single invocation.
//
// Bootstrapping runs in two phases:
//
//  1. Load: initialise logging, read the project file, create the project
//     model and apply the system test plugin to it.
//  2. Execute: run the requested tasks once, or keep rerunning them as
//     inputs change when continuous mode is on.
//
// Commands in cmd/ construct a Config from their flags and hand it to
// NewApplication; nothing in this package reads flags or the environment
// directly.
package app
