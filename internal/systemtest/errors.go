package systemtest

// MissingExecutorDependencyError is returned when the executor bucket does
// not declare the executor artifact.
type MissingExecutorDependencyError struct {
	Bucket   string
	Group    string
	Artifact string
}

func (e *MissingExecutorDependencyError) Error() string {
	return "No system test executor dependency found in " + e.Bucket +
		" configuration. Please ensure the configuration contains " + e.Group + ":" + e.Artifact
}
