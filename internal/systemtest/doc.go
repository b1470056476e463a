// Package systemtest implements the task that launches the Creek system
// test executor.
//
// The task resolves the executor, extension and component buckets into a
// class path and runs the executor's main class with arguments built from
// its inputs:
//
//	--test-directory=<abs>          --result-directory=<abs>
//	--verifier-timeout-seconds=<v>  --include-suites=<regex>
//	--debug-service-port=<port>     --debug-service=<csv>  --debug-service-instance=<csv>
//	--mount-read-only=<host>=<container>[,...]
//	--mount-writable=<host>=<container>
//	--env=JAVA_TOOL_OPTIONS=<coverage agent>
//	--debug-env=JAVA_TOOL_OPTIONS=<debug agent> [<coverage agent>]
//	<extra arguments>
//
// Debug arguments appear only when a service or service instance is named;
// coverage arguments only when coverage is enabled.
package systemtest
