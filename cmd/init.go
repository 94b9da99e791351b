package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crytic/abiharness/compilation"
	"github.com/crytic/abiharness/config"
	"github.com/crytic/abiharness/logging/colors"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// initCmd represents the command provider for init
var initCmd = &cobra.Command{
	Use:   "init [platform]",
	Short: "Writes a project configuration for the build command",
	Long: `Writes a project configuration for the build command. The ABI and output directories default to the ` +
		config.AbiDirectoryEnvironmentVariable + ` and ` + config.OutputDirectoryEnvironmentVariable + ` environment variables`,
	Args:              cmdValidateInitArgs,
	ValidArgsFunction: cmdValidInitArgs,
	RunE:              cmdRunInit,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add flags to init command
	err := addInitFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the init command", err)
	}

	// Add the init command and its associated flags to the root command
	rootCmd.AddCommand(initCmd)
}

// cmdValidInitArgs offers the unused flags and, until a platform is given, the supported compilation platforms
func cmdValidInitArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var suggestions []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			suggestions = append(suggestions, "--"+flag.Name)
		}
	})
	if len(args) == 0 {
		suggestions = append(suggestions, compilation.GetSupportedCompilationPlatforms()...)
	}
	return suggestions, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateInitArgs makes sure at most one supported compilation platform is provided to the init command
func cmdValidateInitArgs(cmd *cobra.Command, args []string) error {
	supportedPlatforms := strings.Join(compilation.GetSupportedCompilationPlatforms(), ", ")
	if err := cobra.RangeArgs(0, 1)(cmd, args); err != nil {
		err = fmt.Errorf("init accepts at most 1 platform argument (options: %s)", supportedPlatforms)
		cmdLogger.Error("Failed to validate args to the init command", err)
		return err
	}
	if len(args) == 1 && !compilation.IsSupportedCompilationPlatform(args[0]) {
		err := fmt.Errorf("init was provided invalid platform argument '%s' (options: %s)", args[0], supportedPlatforms)
		cmdLogger.Error("Failed to validate args to the init command", err)
		return err
	}
	return nil
}

// cmdRunInit executes the init CLI command. The configuration is seeded from the environment, updated with any
// flags, validated, and only then written. An existing file is kept unless --force is used.
func cmdRunInit(cmd *cobra.Command, args []string) error {
	outputPath, err := resolveInitOutputPath(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	// Refuse to replace an existing configuration unless asked to
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}
	if _, err = os.Stat(outputPath); err == nil && !force {
		err = fmt.Errorf("the project configuration %s already exists, use --force to overwrite it", outputPath)
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	platform := DefaultCompilationPlatform
	if len(args) == 1 {
		platform = args[0]
	}
	projectConfig, err := newInitProjectConfig(platform)
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	// Update the project configuration given whatever flags were set using the CLI
	err = updateProjectConfigWithInitFlags(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	err = validateInitProjectConfig(projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}

	// Write our project configuration
	err = projectConfig.WriteToFile(outputPath)
	if err != nil {
		cmdLogger.Error("Failed to run the init command", err)
		return err
	}
	cmdLogger.Info("Project configuration successfully output to: ", colors.Bold, outputPath, colors.Reset)
	return nil
}

// resolveInitOutputPath returns the absolute path the configuration is written to: the --out flag, or the default
// configuration file in the working directory.
func resolveInitOutputPath(cmd *cobra.Command) (string, error) {
	outputPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return "", err
	}
	if !cmd.Flags().Changed("out") {
		outputPath = DefaultProjectConfigFilename
	}
	absolutePath, err := filepath.Abs(outputPath)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return absolutePath, nil
}

// newInitProjectConfig creates the default project configuration for the given platform, with the ABI directory and
// the output directory taken from the environment where it provides them.
func newInitProjectConfig(platform string) (*config.ProjectConfig, error) {
	projectConfig, err := config.GetDefaultProjectConfig(platform)
	if err != nil {
		return nil, err
	}
	projectConfig.AbiDirectory = config.AbiDirectory()
	if outputDirectory, err := config.OutputDirectory(); err == nil {
		projectConfig.OutputDirectory = outputDirectory
	}
	return projectConfig, nil
}

// validateInitProjectConfig validates a configuration about to be written. The output directory may be left to the
// environment of the build, so its absence only produces a warning.
func validateInitProjectConfig(projectConfig *config.ProjectConfig) error {
	validated := *projectConfig
	if validated.OutputDirectory == "" {
		cmdLogger.Warn("No output directory was configured, the build command will require the ",
			config.OutputDirectoryEnvironmentVariable, " environment variable")
		validated.OutputDirectory = "."
	}
	return validated.Validate()
}
