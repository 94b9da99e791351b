package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newValidConfig returns a default configuration with every required setting provided.
func newValidConfig(t *testing.T) *ProjectConfig {
	projectConfig, err := GetDefaultProjectConfig(DefaultPlatform)
	require.NoError(t, err)
	projectConfig.OutputDirectory = t.TempDir()
	return projectConfig
}

// TestDefaultProjectConfig ensures the defaults match the conventional harness layout.
func TestDefaultProjectConfig(t *testing.T) {
	projectConfig, err := GetDefaultProjectConfig(DefaultPlatform)
	require.NoError(t, err)

	assert.Equal(t, "testdata/abi", projectConfig.AbiDirectory)
	assert.Equal(t, "abigen/test", projectConfig.PackagePath)
	assert.Equal(t, "Test", projectConfig.LoaderScope)
	assert.Equal(t, 1, projectConfig.GenerationWorkers)
	assert.Equal(t, "gotypes", projectConfig.Compilation.Platform)
	assert.Equal(t, zerolog.InfoLevel, projectConfig.Logging.Level)

	_, err = GetDefaultProjectConfig("solc")
	assert.Error(t, err)
}

// TestProjectConfigFileRoundTrip ensures a written config reads back identically, and partial files keep defaults.
func TestProjectConfigFileRoundTrip(t *testing.T) {
	projectConfig := newValidConfig(t)
	projectConfig.PackagePath = "example.com/bindings"
	projectConfig.GenerationWorkers = 4
	projectConfig.Logging.Level = zerolog.DebugLevel

	configPath := filepath.Join(t.TempDir(), "abiharness.json")
	require.NoError(t, projectConfig.WriteToFile(configPath))

	readConfig, err := ReadProjectConfigFromFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, projectConfig.PackagePath, readConfig.PackagePath)
	assert.Equal(t, 4, readConfig.GenerationWorkers)
	assert.Equal(t, zerolog.DebugLevel, readConfig.Logging.Level)
	assert.Equal(t, "gotypes", readConfig.Compilation.Platform)
	require.NoError(t, readConfig.Validate())

	// Missing fields fall back to their defaults
	partialPath := filepath.Join(t.TempDir(), "partial.json")
	require.NoError(t, os.WriteFile(partialPath, []byte(`{"loaderScope": "Integration"}`), 0644))
	partialConfig, err := ReadProjectConfigFromFile(partialPath)
	require.NoError(t, err)
	assert.Equal(t, "Integration", partialConfig.LoaderScope)
	assert.Equal(t, DefaultPackagePath, partialConfig.PackagePath)

	_, err = ReadProjectConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

// TestProjectConfigValidation ensures invalid settings are rejected with the setting at fault.
func TestProjectConfigValidation(t *testing.T) {
	require.NoError(t, newValidConfig(t).Validate())

	testCases := []struct {
		name    string
		mutate  func(p *ProjectConfig)
		setting string
	}{
		{"no abi directory", func(p *ProjectConfig) { p.AbiDirectory = "" }, "abiDirectory"},
		{"no output directory", func(p *ProjectConfig) { p.OutputDirectory = "" }, "outputDirectory"},
		{"absolute package path", func(p *ProjectConfig) { p.PackagePath = "/abigen/test" }, "packagePath"},
		{"unclean package path", func(p *ProjectConfig) { p.PackagePath = "abigen//test" }, "packagePath"},
		{"escaping package path", func(p *ProjectConfig) { p.PackagePath = "../test" }, "packagePath"},
		{"unexported scope", func(p *ProjectConfig) { p.LoaderScope = "test" }, "loaderScope"},
		{"invalid scope", func(p *ProjectConfig) { p.LoaderScope = "My-Scope" }, "loaderScope"},
		{"no compilation", func(p *ProjectConfig) { p.Compilation = nil }, "compilation"},
		{"unsupported platform", func(p *ProjectConfig) { p.Compilation.Platform = "solc" }, "compilation"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			projectConfig := newValidConfig(t)
			tc.mutate(projectConfig)

			var configErr *ConfigurationError
			require.True(t, errors.As(projectConfig.Validate(), &configErr))
			assert.Equal(t, tc.setting, configErr.Setting)
		})
	}

	projectConfig := newValidConfig(t)
	projectConfig.GenerationWorkers = 0
	assert.Error(t, projectConfig.Validate())
}

// TestOutputDirectoryFromEnvironment ensures the output root is required from the environment.
func TestOutputDirectoryFromEnvironment(t *testing.T) {
	t.Setenv(OutputDirectoryEnvironmentVariable, "")
	_, err := OutputDirectory()
	var configErr *ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, OutputDirectoryEnvironmentVariable, configErr.Setting)

	_, err = GetProjectConfigFromEnvironment()
	assert.True(t, errors.As(err, &configErr))

	outputDirectory := t.TempDir()
	t.Setenv(OutputDirectoryEnvironmentVariable, outputDirectory)
	t.Setenv(AbiDirectoryEnvironmentVariable, "fixtures/abi")
	projectConfig, err := GetProjectConfigFromEnvironment()
	require.NoError(t, err)
	assert.Equal(t, outputDirectory, projectConfig.OutputDirectory)
	assert.Equal(t, "fixtures/abi", projectConfig.AbiDirectory)
	assert.NoError(t, projectConfig.Validate())
}

// TestResolveOutputDirectoryPrefersConfig ensures a configured output directory is not overridden.
func TestResolveOutputDirectoryPrefersConfig(t *testing.T) {
	t.Setenv(OutputDirectoryEnvironmentVariable, "/from/environment")
	projectConfig := newValidConfig(t)
	configured := projectConfig.OutputDirectory

	require.NoError(t, projectConfig.ResolveOutputDirectory())
	assert.Equal(t, configured, projectConfig.OutputDirectory)

	projectConfig.OutputDirectory = ""
	require.NoError(t, projectConfig.ResolveOutputDirectory())
	assert.Equal(t, "/from/environment", projectConfig.OutputDirectory)
}
