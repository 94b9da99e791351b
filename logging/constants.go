package logging

// SERVICE_KEY is the key used by every package when creating its sub-logger, so that log output can be filtered by
// the service which emitted it.
const SERVICE_KEY = "service"

// These constants are used to identify the various services that may do some logging
const (
	// DESCRIPTIONS_SERVICE is the constant used to identify the descriptions package
	DESCRIPTIONS_SERVICE = "descriptions"
	// BINDINGS_SERVICE is the constant used to identify the bindings package
	BINDINGS_SERVICE = "bindings"
	// COMPILATION_SERVICE is the constant used to identify the compilation package
	COMPILATION_SERVICE = "compilation"
	// HARNESS_SERVICE is the constant used to identify the harness package
	HARNESS_SERVICE = "harness"
	// CLI_SERVICE is the constant used to identify the cmd package
	CLI_SERVICE = "cli"
)
