// Package debug prepares the mount directory holding the AttachMe agent.
//
// When services under test are to be debugged, the executor mounts this
// directory read-only into their containers and loads the agent through
// JAVA_TOOL_OPTIONS. The agent calls back to the AttachMe IntelliJ plugin,
// which attaches the debugger.
package debug
