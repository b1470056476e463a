// Package config loads a project's systest.yaml.
//
// The project file mirrors the `creek.systemTest { ... }` block a build script
// would carry, plus the handful of host settings the tool needs to stand on
// its own (build directory, JVM arguments, repositories and the dependency
// buckets). Every field is optional: values left unset take the conventions
// applied by the plugin package.
//
// # Loading
//
// LoadConfig reads <projectDir>/systest.yaml (or the file named by --config):
//
//  1. The raw bytes are rendered as a text/template with the sprig function
//     set, so `{{ env "CI_TIMEOUT" | default "60" }}` works. Data available
//     to the template is .ProjectDir and .Home.
//  2. The result is decoded with gopkg.in/yaml.v3 into a ProjectConfig
//     pre-populated with struct defaults (github.com/creasty/defaults).
//     Unknown keys are rejected.
//  3. Convenience forms are folded into canonical fields, e.g.
//     verificationTimeout: 2m sets verificationTimeoutSeconds to "120".
//  4. Validate collects every problem into a ConfigurationErrorCollection.
//
// A missing project file is not an error; the defaults are returned.
//
// # Example
//
//	buildDirectory: build
//	jvmArgs: "-Xmx512m"
//	dependencies:
//	  systemTestComponent:
//	    - com.acme:orders-service:1.2.0
//	creek:
//	  systemTest:
//	    suitePathPattern: "orders/.*"
//	    debugging:
//	      serviceNames: [orders-service]
//	    coverage:
//	      enabled: true
package config
