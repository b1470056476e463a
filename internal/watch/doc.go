// Package watch reruns a build whenever its inputs change.
//
// A Watcher registers fsnotify watches on directory trees and single files,
// collapses bursts of events into one trigger with a debounce timer, and
// calls the build callback with the paths that changed. Directories created
// under a watched tree are picked up as they appear. Paths under an excluded
// directory, typically the build directory the build itself writes to, never
// trigger a rebuild.
package watch
