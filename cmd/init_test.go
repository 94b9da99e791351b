package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/abiharness/compilation/platforms"
	"github.com/crytic/abiharness/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestInitCmd creates a command carrying the init flags, isolated from the global init command.
func newTestInitCmd(t *testing.T, flags map[string]string) *cobra.Command {
	cmd := &cobra.Command{Use: "init"}
	original := initCmd
	initCmd = cmd
	t.Cleanup(func() { initCmd = original })
	require.NoError(t, addInitFlags())
	for name, value := range flags {
		require.NoError(t, cmd.Flags().Set(name, value))
	}
	return cmd
}

// TestInitWritesProjectConfig ensures init seeds the configuration from the environment, applies its flags and
// writes a configuration the build command can read.
func TestInitWritesProjectConfig(t *testing.T) {
	outputRoot := t.TempDir()
	t.Setenv(config.AbiDirectoryEnvironmentVariable, "contracts/abi")
	t.Setenv(config.OutputDirectoryEnvironmentVariable, outputRoot)

	configPath := filepath.Join(t.TempDir(), DefaultProjectConfigFilename)
	cmd := newTestInitCmd(t, map[string]string{
		"out":    configPath,
		"scope":  "Integration",
		"target": "/tmp/module",
	})
	require.NoError(t, cmdValidateInitArgs(cmd, []string{"gobuild"}))
	require.NoError(t, cmdRunInit(cmd, []string{"gobuild"}))

	projectConfig, err := config.ReadProjectConfigFromFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "contracts/abi", projectConfig.AbiDirectory)
	assert.Equal(t, outputRoot, projectConfig.OutputDirectory)
	assert.Equal(t, config.DefaultPackagePath, projectConfig.PackagePath)
	assert.Equal(t, "Integration", projectConfig.LoaderScope)
	assert.NoError(t, projectConfig.Validate())

	platformConfig, err := projectConfig.Compilation.GetPlatformConfig()
	require.NoError(t, err)
	goBuild, ok := platformConfig.(*platforms.GoBuildCompilationConfig)
	require.True(t, ok)
	assert.Equal(t, "/tmp/module", goBuild.GetTarget())
}

// TestInitWithoutOutputDirectory ensures the output directory may be left to the build environment.
func TestInitWithoutOutputDirectory(t *testing.T) {
	t.Setenv(config.AbiDirectoryEnvironmentVariable, "")
	t.Setenv(config.OutputDirectoryEnvironmentVariable, "")

	configPath := filepath.Join(t.TempDir(), "nested", "project.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0755))
	cmd := newTestInitCmd(t, map[string]string{"out": configPath})
	require.NoError(t, cmdRunInit(cmd, nil))

	projectConfig, err := config.ReadProjectConfigFromFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultAbiDirectory, projectConfig.AbiDirectory)
	assert.Empty(t, projectConfig.OutputDirectory)
	assert.Equal(t, DefaultCompilationPlatform, projectConfig.Compilation.Platform)
}

// TestInitRefusesOverwrite ensures an existing configuration is only replaced with --force.
func TestInitRefusesOverwrite(t *testing.T) {
	t.Setenv(config.OutputDirectoryEnvironmentVariable, t.TempDir())
	configPath := filepath.Join(t.TempDir(), DefaultProjectConfigFilename)
	require.NoError(t, os.WriteFile(configPath, []byte("{}"), 0644))

	cmd := newTestInitCmd(t, map[string]string{"out": configPath})
	assert.Error(t, cmdRunInit(cmd, nil))
	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(content))

	cmd = newTestInitCmd(t, map[string]string{"out": configPath, "force": "true"})
	require.NoError(t, cmdRunInit(cmd, nil))
	projectConfig, err := config.ReadProjectConfigFromFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultLoaderScope, projectConfig.LoaderScope)
}

// TestInitRejectsInvalidConfig ensures nothing is written when the resulting configuration is invalid.
func TestInitRejectsInvalidConfig(t *testing.T) {
	t.Setenv(config.OutputDirectoryEnvironmentVariable, t.TempDir())
	configPath := filepath.Join(t.TempDir(), DefaultProjectConfigFilename)

	cmd := newTestInitCmd(t, map[string]string{"out": configPath, "package": "../outside"})
	var configErr *config.ConfigurationError
	require.ErrorAs(t, cmdRunInit(cmd, nil), &configErr)
	assert.Equal(t, "packagePath", configErr.Setting)
	assert.NoFileExists(t, configPath)

	assert.Error(t, cmdValidateInitArgs(cmd, []string{"solc"}))
	assert.Error(t, cmdValidateInitArgs(cmd, []string{"gotypes", "gobuild"}))
}
