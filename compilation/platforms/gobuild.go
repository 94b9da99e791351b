package platforms

import (
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/crytic/abiharness/compilation/types"
	"github.com/crytic/abiharness/utils"
	"github.com/pkg/errors"
)

// DefaultMinimumGoVersion describes the oldest toolchain generated sources are known to build with.
const DefaultMinimumGoVersion = "1.21.0"

// GoBuildCompilationConfig describes the configuration for compiling generated sources with the system go
// toolchain. The toolchain build verifies the sources, after which they are type-checked in-process to load their
// artifacts.
type GoBuildCompilationConfig struct {
	// ModuleDirectory describes the directory the toolchain is invoked from.
	ModuleDirectory string `json:"moduleDirectory"`

	// BuildFlags describes additional flags passed to `go build`.
	BuildFlags []string `json:"buildFlags"`

	// MinimumGoVersion describes the oldest toolchain version allowed to build. An empty value disables the check.
	MinimumGoVersion string `json:"minimumGoVersion"`
}

// NewGoBuildCompilationConfig returns a GoBuildCompilationConfig invoking the toolchain from the module directory.
func NewGoBuildCompilationConfig(moduleDirectory string) *GoBuildCompilationConfig {
	return &GoBuildCompilationConfig{
		ModuleDirectory:  moduleDirectory,
		BuildFlags:       []string{},
		MinimumGoVersion: DefaultMinimumGoVersion,
	}
}

// Platform returns the platform identifier for this configuration.
func (g *GoBuildCompilationConfig) Platform() string {
	return "gobuild"
}

// GetTarget returns the target for compilation
func (g *GoBuildCompilationConfig) GetTarget() string {
	return g.ModuleDirectory
}

// SetTarget sets the new target for compilation
func (g *GoBuildCompilationConfig) SetTarget(newTarget string) {
	g.ModuleDirectory = newTarget
}

// GetSystemGoVersion obtains the version of the go toolchain on the PATH.
func GetSystemGoVersion() (*semver.Version, error) {
	// Run go env GOVERSION to obtain our toolchain version.
	out, err := exec.Command("go", "env", "GOVERSION").CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("error while executing go:\nOUTPUT:\n%s\nERROR: %s\n", string(out), err.Error())
	}

	// Parse the toolchain version out of the output
	exp := regexp.MustCompile(`\d+\.\d+(\.\d+)?`)
	versionStr := exp.FindString(string(out))
	if versionStr == "" {
		return nil, errors.New("could not parse go version using 'go env GOVERSION'")
	}

	// Parse our semver string and return it
	return semver.NewVersion(versionStr)
}

// checkGoVersion verifies the system toolchain satisfies the configured minimum version.
func (g *GoBuildCompilationConfig) checkGoVersion() error {
	if g.MinimumGoVersion == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(">= " + g.MinimumGoVersion)
	if err != nil {
		return errors.Wrapf(err, "invalid minimum go version '%s'", g.MinimumGoVersion)
	}
	version, err := GetSystemGoVersion()
	if err != nil {
		return err
	}
	if !constraint.Check(version) {
		return errors.Errorf("go %s is older than the minimum supported version %s", version, g.MinimumGoVersion)
	}
	return nil
}

// Compile builds the provided sources with `go build`. If the build fails, its output is returned within a
// *types.CompilationError. Otherwise the sources are type-checked in-process to obtain their artifacts.
func (g *GoBuildCompilationConfig) Compile(packagePath string, sourcePaths []string) (*types.Compilation, string, error) {
	if len(sourcePaths) == 0 {
		return nil, "", errors.New("could not compile: no source files were provided")
	}
	if err := g.checkGoVersion(); err != nil {
		return nil, "", err
	}

	// Build the sources as one package, discarding the result
	args := append([]string{"build"}, g.BuildFlags...)
	args = append(args, "-o", os.DevNull)
	args = append(args, sourcePaths...)
	cmd := exec.Command("go", args...)
	cmd.Dir = g.ModuleDirectory
	cmd.Env = os.Environ()

	// Run the command and collect its output
	_, _, cmdCombined, err := utils.RunCommandWithOutputAndError(cmd)
	output := string(cmdCombined)
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, output, errors.Wrap(err, "error while executing go build")
		}
		return nil, output, types.NewCompilationError(buildDiagnostics(output), output)
	}

	// Load the artifacts of the verified sources
	typesConfig := &GoTypesCompilationConfig{
		ModuleDirectory: g.ModuleDirectory,
		BuildFlags:      g.BuildFlags,
	}
	compilation, _, err := typesConfig.Compile(packagePath, sourcePaths)
	return compilation, output, err
}

// buildDiagnostics extracts the diagnostic lines from `go build` output, omitting package headers.
func buildDiagnostics(output string) []string {
	diagnostics := make([]string, 0)
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		diagnostics = append(diagnostics, line)
	}
	return diagnostics
}
