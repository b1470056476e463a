// Package javaexec launches a Java main class as a child process.
//
// The system test task uses it to start the executor: the JVM arguments,
// class path, main class and program arguments are assembled into a single
// `java` invocation whose standard streams are forwarded. The call blocks
// until the process exits; a non-zero exit is reported as an *ExitError.
// Cancelling the context kills the whole process group so containers the
// executor started get their shutdown signal.
package javaexec
