package platforms

import "github.com/crytic/abiharness/compilation/types"

// PlatformConfig describes the interface all compilation platform configs must implement.
type PlatformConfig interface {
	// Compile compiles the provided source files as a single package with the given import path, in one pass.
	// Returns the compilation, the toolchain output, or an error if one occurred. A failed compilation is reported
	// as a *types.CompilationError.
	Compile(packagePath string, sourcePaths []string) (*types.Compilation, string, error)
	Platform() string
	GetTarget() string
	SetTarget(string)
}
