package config

import (
	"encoding/json"
	"go/token"
	"os"
	"path"
	"strings"
	"unicode"

	"github.com/crytic/abiharness/compilation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ProjectConfig describes the configuration of a harness run: where ABI descriptions are read from, where generated
// bindings are written, and how they are compiled.
type ProjectConfig struct {
	// AbiDirectory describes the directory which is scanned recursively for ABI descriptions.
	AbiDirectory string `json:"abiDirectory"`

	// OutputDirectory describes the root directory generated sources are written under. If empty, it is obtained from
	// the environment (see OutputDirectoryEnvironmentVariable).
	OutputDirectory string `json:"outputDirectory"`

	// PackagePath describes the import path of the package every binding is generated into.
	PackagePath string `json:"packagePath"`

	// LoaderScope describes the prefix of the generated error loader, e.g. "Test" yields "TestErrorLoader".
	LoaderScope string `json:"loaderScope"`

	// GenerationWorkers describes how many bindings may be generated concurrently. A value of one generates
	// sequentially.
	GenerationWorkers int `json:"generationWorkers"`

	// Compilation describes the configuration used to compile the generated bindings.
	Compilation *compilation.CompilationConfig `json:"compilation"`

	// Logging describes the configuration used for logging to file and console
	Logging LoggingConfig `json:"logging"`
}

// LoggingConfig describes the configuration options for logging to console and file
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level"`

	// EnableConsoleLogging describes whether console logging is enabled.
	EnableConsoleLogging bool `json:"enableConsoleLogging"`

	// LogDirectory describes what directory log files should be outputted in. LogDirectory being a non-empty string is
	// equivalent to enabling file logging.
	LogDirectory string `json:"logDirectory"`
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from a provided file path. Fields which are not
// present in the file keep their default values.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	// Read our project configuration file data
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Parse the project configuration
	projectConfig, err := GetDefaultProjectConfig("")
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(b, projectConfig)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	// Serialize the configuration
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	// Save it to the provided output path and return the result
	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// ResolveOutputDirectory fills in the output directory from the environment if the configuration leaves it empty.
// Returns a *ConfigurationError if neither provides one.
func (p *ProjectConfig) ResolveOutputDirectory() error {
	if p.OutputDirectory != "" {
		return nil
	}
	outputDirectory, err := OutputDirectory()
	if err != nil {
		return err
	}
	p.OutputDirectory = outputDirectory
	return nil
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	// Verify the directories are provided
	if p.AbiDirectory == "" {
		return NewConfigurationError("abiDirectory", "the ABI directory must be provided")
	}
	if p.OutputDirectory == "" {
		return NewConfigurationError("outputDirectory", "the output directory must be provided, either in the "+
			"project config or through the "+OutputDirectoryEnvironmentVariable+" environment variable")
	}

	// Verify the package path is a clean, relative import path
	if p.PackagePath == "" || strings.HasPrefix(p.PackagePath, "/") || path.Clean(p.PackagePath) != p.PackagePath ||
		strings.HasPrefix(p.PackagePath, "..") {
		return NewConfigurationError("packagePath", "'"+p.PackagePath+"' is not a valid relative import path")
	}

	// Verify the loader scope yields an exported identifier
	if !token.IsIdentifier(p.LoaderScope) || !unicode.IsUpper([]rune(p.LoaderScope)[0]) {
		return NewConfigurationError("loaderScope", "'"+p.LoaderScope+"' must be an exported Go identifier")
	}

	// Verify the worker count is a positive number.
	if p.GenerationWorkers <= 0 {
		return errors.Errorf("generation worker count must be a positive number")
	}

	// Verify the compilation platform is supported
	if p.Compilation == nil {
		return NewConfigurationError("compilation", "a compilation config must be provided")
	}
	if !compilation.IsSupportedCompilationPlatform(p.Compilation.Platform) {
		return NewConfigurationError("compilation", "platform '"+p.Compilation.Platform+"' is unsupported")
	}

	return nil
}
