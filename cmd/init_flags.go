package cmd

import (
	"fmt"

	"github.com/crytic/abiharness/config"
	"github.com/spf13/cobra"
)

// addInitFlags adds the various flags for the init command
func addInitFlags() error {
	// Prevent alphabetical sorting of usage message
	initCmd.Flags().SortFlags = false

	// Output path for configuration
	initCmd.Flags().String("out", "",
		fmt.Sprintf("output path for the new project configuration file (default is %s in the working directory)", DefaultProjectConfigFilename))

	// Overwrite an existing configuration
	initCmd.Flags().Bool("force", false, "overwrite an existing project configuration file")

	// Target module directory
	initCmd.Flags().String("target", "", TargetFlagDescription)

	// ABI directory
	initCmd.Flags().String("abi-dir", "",
		fmt.Sprintf("directory scanned for ABI descriptions (default is the %s environment variable, or %q)",
			config.AbiDirectoryEnvironmentVariable, config.DefaultAbiDirectory))

	// Generated sources root
	initCmd.Flags().String("output-dir", "",
		fmt.Sprintf("root directory generated sources are written under (default is the %s environment variable)",
			config.OutputDirectoryEnvironmentVariable))

	// Package path
	initCmd.Flags().String("package", "",
		fmt.Sprintf("import path of the generated package (default is %q)", config.DefaultPackagePath))

	// Loader scope
	initCmd.Flags().String("scope", "",
		fmt.Sprintf("prefix of the generated error loader (default is %q)", config.DefaultLoaderScope))

	return nil
}

// updateProjectConfigWithInitFlags will update the given projectConfig with any CLI arguments that were provided to the init command
func updateProjectConfigWithInitFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	// Update target if necessary
	err := updateCompilationTarget(cmd, projectConfig)
	if err != nil {
		return err
	}

	// String settings which are copied as is
	settings := []struct {
		flag   string
		target *string
	}{
		{"abi-dir", &projectConfig.AbiDirectory},
		{"output-dir", &projectConfig.OutputDirectory},
		{"package", &projectConfig.PackagePath},
		{"scope", &projectConfig.LoaderScope},
	}
	for _, setting := range settings {
		if !cmd.Flags().Changed(setting.flag) {
			continue
		}
		*setting.target, err = cmd.Flags().GetString(setting.flag)
		if err != nil {
			return err
		}
	}
	return nil
}
