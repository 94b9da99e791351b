package cmd

import (
	"fmt"

	"github.com/crytic/abiharness/compilation"
	"github.com/crytic/abiharness/config"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// addBuildFlags adds the various flags for the build command
func addBuildFlags() error {
	// Get the default project config and throw an error if we cant
	defaultConfig, err := config.GetDefaultProjectConfig(DefaultCompilationPlatform)
	if err != nil {
		return err
	}

	// Prevent alphabetical sorting of usage message
	buildCmd.Flags().SortFlags = false

	// Config file
	buildCmd.Flags().String("config", "", "path to config file")

	// Output directory
	buildCmd.Flags().String("out", "",
		fmt.Sprintf("root directory generated sources are written under (unless a config file is provided, default is the %s environment variable)", config.OutputDirectoryEnvironmentVariable))

	// Package path
	buildCmd.Flags().String("package", "",
		fmt.Sprintf("import path of the generated package (unless a config file is provided, default is %q)", defaultConfig.PackagePath))

	// Loader scope
	buildCmd.Flags().String("scope", "",
		fmt.Sprintf("prefix of the generated error loader (unless a config file is provided, default is %q)", defaultConfig.LoaderScope))

	// Compilation platform
	buildCmd.Flags().String("platform", "",
		fmt.Sprintf("compilation platform (unless a config file is provided, default is %q)", DefaultCompilationPlatform))

	// Target
	buildCmd.Flags().String("target", "", TargetFlagDescription)

	// Number of workers
	buildCmd.Flags().Int("workers", 0,
		fmt.Sprintf("number of bindings generated concurrently (unless a config file is provided, default is %d)", defaultConfig.GenerationWorkers))

	// Log level
	buildCmd.Flags().String("log-level", "",
		fmt.Sprintf("log level (unless a config file is provided, default is %q)", defaultConfig.Logging.Level))

	return nil
}

// updateProjectConfigWithBuildFlags will update the given projectConfig with any CLI arguments that were provided to
// the build command
func updateProjectConfigWithBuildFlags(cmd *cobra.Command, args []string, projectConfig *config.ProjectConfig) error {
	var err error

	// The positional argument overrides the ABI directory
	if len(args) == 1 {
		projectConfig.AbiDirectory = args[0]
	}

	// If --out was used
	if cmd.Flags().Changed("out") {
		projectConfig.OutputDirectory, err = cmd.Flags().GetString("out")
		if err != nil {
			return err
		}
	}

	// If --package was used
	if cmd.Flags().Changed("package") {
		projectConfig.PackagePath, err = cmd.Flags().GetString("package")
		if err != nil {
			return err
		}
	}

	// If --scope was used
	if cmd.Flags().Changed("scope") {
		projectConfig.LoaderScope, err = cmd.Flags().GetString("scope")
		if err != nil {
			return err
		}
	}

	// If --platform was used, switch platforms while keeping the current target
	if cmd.Flags().Changed("platform") {
		platform, err := cmd.Flags().GetString("platform")
		if err != nil {
			return err
		}
		compilationConfig, err := compilation.NewCompilationConfig(platform)
		if err != nil {
			return err
		}
		if projectConfig.Compilation != nil {
			if current, err := projectConfig.Compilation.GetPlatformConfig(); err == nil {
				platformConfig, err := compilationConfig.GetPlatformConfig()
				if err != nil {
					return err
				}
				platformConfig.SetTarget(current.GetTarget())
				if err = compilationConfig.SetPlatformConfig(platformConfig); err != nil {
					return err
				}
			}
		}
		projectConfig.Compilation = compilationConfig
	}

	// If --target was used
	err = updateCompilationTarget(cmd, projectConfig)
	if err != nil {
		return err
	}

	// If --workers was used
	if cmd.Flags().Changed("workers") {
		projectConfig.GenerationWorkers, err = cmd.Flags().GetInt("workers")
		if err != nil {
			return err
		}
	}

	// If --log-level was used
	if cmd.Flags().Changed("log-level") {
		levelStr, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return err
		}
		level, err := zerolog.ParseLevel(levelStr)
		if err != nil {
			return errors.Wrapf(err, "invalid log level '%s'", levelStr)
		}
		projectConfig.Logging.Level = level
	}

	return nil
}
