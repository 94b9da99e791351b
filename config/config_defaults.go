package config

import (
	"github.com/crytic/abiharness/compilation"
	"github.com/rs/zerolog"
)

const (
	// DefaultAbiDirectory describes the directory scanned for ABI descriptions when none is configured.
	DefaultAbiDirectory = "testdata/abi"
	// DefaultPackagePath describes the import path bindings are generated into when none is configured.
	DefaultPackagePath = "abigen/test"
	// DefaultLoaderScope describes the error loader prefix used when none is configured.
	DefaultLoaderScope = "Test"
	// DefaultPlatform describes the compilation platform used when none is configured.
	DefaultPlatform = "gotypes"
)

// GetDefaultProjectConfig obtains a default configuration for a project. It populates a default compilation config
// based on the provided platform, or a nil one if an empty string is provided.
func GetDefaultProjectConfig(platform string) (*ProjectConfig, error) {
	var (
		compilationConfig *compilation.CompilationConfig
		err               error
	)
	if platform != "" {
		compilationConfig, err = compilation.NewCompilationConfig(platform)
		if err != nil {
			return nil, err
		}
	}

	// Create a project configuration
	projectConfig := &ProjectConfig{
		AbiDirectory:      DefaultAbiDirectory,
		OutputDirectory:   "",
		PackagePath:       DefaultPackagePath,
		LoaderScope:       DefaultLoaderScope,
		GenerationWorkers: 1,
		Compilation:       compilationConfig,
		Logging: LoggingConfig{
			Level:                zerolog.InfoLevel,
			EnableConsoleLogging: true,
			LogDirectory:         "",
		},
	}

	// Return the project configuration
	return projectConfig, nil
}

// GetProjectConfigFromEnvironment obtains the default configuration for the default platform, with the ABI and
// output directories taken from the environment. Returns a *ConfigurationError if the output directory is not set.
func GetProjectConfigFromEnvironment() (*ProjectConfig, error) {
	projectConfig, err := GetDefaultProjectConfig(DefaultPlatform)
	if err != nil {
		return nil, err
	}
	projectConfig.AbiDirectory = AbiDirectory()
	if err = projectConfig.ResolveOutputDirectory(); err != nil {
		return nil, err
	}
	return projectConfig, nil
}
