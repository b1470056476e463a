// Package report renders build progress and listings for the terminal.
//
// Console follows task execution the way a Gradle console does: one
// "> Task :name" line per task with its outcome, then a BUILD SUCCESSFUL or
// BUILD FAILED summary. While a task runs a spinner is shown on stderr unless
// the console is quiet.
//
// The table helpers render task and dependency bucket listings with
// go-pretty.
package report
