package types

import (
	"fmt"
	"strings"
)

// CompilationError describes a compilation which the toolchain reported as failed. No artifacts are available for
// a failed compilation.
type CompilationError struct {
	// Diagnostics describes every diagnostic the toolchain reported, in the order they were reported.
	Diagnostics []string

	// Output describes the full toolchain output.
	Output string
}

// NewCompilationError creates a CompilationError from the provided diagnostics. If the output is empty, it is
// assembled from the diagnostics.
func NewCompilationError(diagnostics []string, output string) *CompilationError {
	if output == "" {
		output = strings.Join(diagnostics, "\n")
	}
	return &CompilationError{
		Diagnostics: diagnostics,
		Output:      output,
	}
}

// Error returns the error message string, implementing the `error` interface.
func (e *CompilationError) Error() string {
	return fmt.Sprintf("compilation failed with %d diagnostic(s):\n%s", len(e.Diagnostics), e.Output)
}
