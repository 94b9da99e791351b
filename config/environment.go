package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	// OutputDirectoryEnvironmentVariable names the environment variable holding the root directory generated sources
	// are written under.
	OutputDirectoryEnvironmentVariable = "ABIGEN_DIRECTORY"

	// AbiDirectoryEnvironmentVariable names the environment variable which overrides the directory scanned for ABI
	// descriptions.
	AbiDirectoryEnvironmentVariable = "ABIGEN_ABI_DIRECTORY"
)

// ConfigurationError describes a required setting which is missing or invalid. It is fatal at startup.
type ConfigurationError struct {
	// Setting describes the name of the setting or environment variable at fault.
	Setting string

	// Reason describes why the setting was rejected.
	Reason string
}

// NewConfigurationError creates a ConfigurationError for the given setting.
func NewConfigurationError(setting string, reason string) *ConfigurationError {
	return &ConfigurationError{
		Setting: setting,
		Reason:  reason,
	}
}

// Error returns the error message string, implementing the `error` interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %s: %s", e.Setting, e.Reason)
}

// OutputDirectory obtains the output root from the environment. Returns a *ConfigurationError if the variable is
// absent or empty.
func OutputDirectory() (string, error) {
	outputDirectory, ok := os.LookupEnv(OutputDirectoryEnvironmentVariable)
	if !ok || strings.TrimSpace(outputDirectory) == "" {
		return "", NewConfigurationError(OutputDirectoryEnvironmentVariable, "environment variable is not set")
	}
	return outputDirectory, nil
}

// AbiDirectory obtains the directory scanned for ABI descriptions from the environment, or DefaultAbiDirectory if
// it is not set.
func AbiDirectory() string {
	if abiDirectory, ok := os.LookupEnv(AbiDirectoryEnvironmentVariable); ok && abiDirectory != "" {
		return abiDirectory
	}
	return DefaultAbiDirectory
}
