// Package coverage captures JaCoCo coverage from services under test.
//
// PrepareTask extracts the JaCoCo agent jar into a mount directory the
// executor mounts read-only into each service container. Extension supplies
// the writable result mount, the JAVA_TOOL_OPTIONS fragment that loads the
// agent, and removes stale results before a run.
package coverage
