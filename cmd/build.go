package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/crytic/abiharness/cmd/exitcodes"
	"github.com/crytic/abiharness/compilation/types"
	"github.com/crytic/abiharness/config"
	"github.com/crytic/abiharness/harness"
	"github.com/crytic/abiharness/logging"
	"github.com/crytic/abiharness/logging/colors"
	"github.com/crytic/abiharness/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// buildCmd represents the command provider for build
var buildCmd = &cobra.Command{
	Use:               "build [abi-dir]",
	Short:             "Generates and compiles the bindings of a directory of ABI descriptions",
	Long:              `Generates a binding for every ABI description in a directory, generates the error loader over them, and compiles them together`,
	Args:              cmdValidateBuildArgs,
	ValidArgsFunction: cmdValidBuildArgs,
	RunE:              cmdRunBuild,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the build command
	err := addBuildFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the build command", err)
	}

	// Add the build command and its associated flags to the root command
	rootCmd.AddCommand(buildCmd)
}

// cmdValidBuildArgs will return which flags are valid for dynamic completion for the build command
func cmdValidBuildArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})

	// The positional argument is a directory
	if len(args) == 0 {
		return unusedFlags, cobra.ShellCompDirectiveFilterDirs
	}
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateBuildArgs makes sure at most one ABI directory is provided to the build command
func cmdValidateBuildArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(0, 1)(cmd, args); err != nil {
		err = fmt.Errorf("build accepts at most 1 ABI directory argument")
		cmdLogger.Error("Failed to validate args to the build command", err)
		return err
	}
	return nil
}

// cmdRunBuild executes the CLI build command. The project configuration is obtained as follows:
// #1: We will search for either a custom config file (via --config) or the default (abiharness.json).
// If we find it, read it. If we can't read it, throw an error.
// #2: If a custom file was provided (--config was used), and we can't find the file, throw an error.
// #3: If abiharness.json can't be found, use the default project configuration.
func cmdRunBuild(cmd *cobra.Command, args []string) error {
	projectConfig, err := resolveBuildProjectConfig(cmd)
	if err != nil {
		cmdLogger.Error("Failed to run the build command", err)
		return err
	}

	// Update the project configuration given whatever flags and arguments were set using the CLI
	err = updateProjectConfigWithBuildFlags(cmd, args, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the build command", err)
		return err
	}

	// The output directory may still come from the environment
	err = projectConfig.ResolveOutputDirectory()
	if err != nil {
		cmdLogger.Error("Failed to run the build command", err)
		return err
	}

	// Set up logging before any service creates its sub-logger
	err = setupGlobalLogger(projectConfig.Logging)
	if err != nil {
		cmdLogger.Error("Failed to run the build command", err)
		return err
	}

	// Create the pipeline
	pipeline, err := harness.NewPipelineFromConfig(projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the build command", err)
		return err
	}

	// Build the artifacts. Failures are logged by the cache.
	start := time.Now()
	cache := harness.NewArtifactCache(pipeline)
	compilation, err := cache.Compilation()
	if err != nil {
		var compilationErr *types.CompilationError
		if errors.As(err, &compilationErr) {
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeCompilationFailed)
		}
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
	}

	// Print the compiled contracts
	cmdLogger.Info("Compiled package ", colors.Bold, compilation.PackagePath, colors.Reset, " in ", time.Since(start).Round(time.Millisecond))
	for _, name := range compilation.ArtifactNames() {
		artifact := compilation.Artifacts[name]
		if !artifact.HasMethod("ABI") {
			continue
		}
		cmdLogger.Info(colors.GreenBold, artifact.Name, colors.Reset, " (", len(artifact.Methods()), " methods) ", colors.DarkGray, artifact.Position.Filename, colors.Reset)
	}
	return nil
}

// resolveBuildProjectConfig reads the project configuration referenced by the --config flag, or the default project
// configuration file in the working directory, falling back to the default configuration.
func resolveBuildProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, error) {
	// Check to see if --config flag was used and store the value of --config flag
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If --config was not used, look for `abiharness.json` in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	// Check to see if the file exists at configPath
	_, existenceError := os.Stat(configPath)

	// Possibility #1: File was found
	if existenceError == nil {
		cmdLogger.Info("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		projectConfig, err := config.ReadProjectConfigFromFile(configPath)
		if err != nil {
			return nil, err
		}

		// Use the default compilation platform if the config file doesn't specify one
		if projectConfig.Compilation == nil {
			defaultConfig, err := config.GetDefaultProjectConfig(DefaultCompilationPlatform)
			if err != nil {
				return nil, err
			}
			projectConfig.Compilation = defaultConfig.Compilation
		}
		return projectConfig, nil
	}

	// Possibility #2: If the --config flag was used, and we couldn't find the file, we'll throw an error
	if configFlagUsed {
		return nil, errors.WithStack(existenceError)
	}

	// Possibility #3: --config flag was not used and abiharness.json was not found, so use the default project config
	cmdLogger.Warn(fmt.Sprintf("Unable to find the config file at %v, will use the default project configuration for the "+
		"%v compilation platform instead", configPath, DefaultCompilationPlatform))
	return config.GetDefaultProjectConfig(DefaultCompilationPlatform)
}

// setupGlobalLogger replaces the global logger with one configured by the provided logging configuration.
func setupGlobalLogger(loggingConfig config.LoggingConfig) error {
	logging.GlobalLogger = logging.NewLogger(loggingConfig.Level)
	cmdLogger.SetLevel(loggingConfig.Level)

	// Log to the console if enabled
	if loggingConfig.EnableConsoleLogging {
		logging.GlobalLogger.AddWriter(os.Stdout, logging.UNSTRUCTURED, true)
	}

	// Log to a file if a log directory is provided
	if loggingConfig.LogDirectory != "" {
		if err := utils.MakeDirectory(loggingConfig.LogDirectory); err != nil {
			return err
		}
		logFileName := fmt.Sprintf("abiharness-%d.log", time.Now().Unix())
		logFile, err := os.Create(filepath.Join(loggingConfig.LogDirectory, logFileName))
		if err != nil {
			return errors.WithStack(err)
		}
		logging.GlobalLogger.AddWriter(logFile, logging.STRUCTURED, false)
	}
	return nil
}
