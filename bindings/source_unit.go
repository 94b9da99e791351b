package bindings

import (
	"path/filepath"
	"strings"

	"github.com/crytic/abiharness/descriptions"
)

// GeneratedSourceUnit describes one unit of generated Go source: a contract binding or the package error loader.
type GeneratedSourceUnit struct {
	// Name describes the logical name of the unit (the contract name, or the loader type name).
	Name string

	// PackagePath describes the import path of the package the unit belongs to.
	PackagePath string

	// Source describes the generated Go source text.
	Source string

	// Path describes the location the unit was written to. It is empty until the unit is written.
	Path string
}

// Generator describes a binding generator which turns one contract ABI model into one unit of Go source.
type Generator interface {
	// Generate produces the binding for the named contract within the given package. The errorLoader argument is the
	// canonical name of the package error loader which the binding delegates revert decoding to.
	Generate(contractName string, packagePath string, model *descriptions.AbiModel, options map[string]string, errorLoader string) (*GeneratedSourceUnit, error)
}

// SourcePath returns the location a unit with the given name and package path is written to beneath the output root.
func SourcePath(outputRoot string, packagePath string, name string) string {
	return filepath.Join(outputRoot, filepath.FromSlash(packagePath), name+".go")
}

// PackageName returns the Go package name for the given package path: its last path element, sanitized into an
// identifier.
func PackageName(packagePath string) string {
	name := packagePath
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.ToLower(sanitizeIdentifier(name))
}
