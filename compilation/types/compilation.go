package types

import (
	"go/token"
	goTypes "go/types"

	"golang.org/x/exp/slices"
)

// Compilation represents the artifacts of compiling a generated Go package.
type Compilation struct {
	// PackagePath describes the import path the package was compiled under.
	PackagePath string

	// Package describes the type-checked package.
	Package *goTypes.Package

	// FileSet describes the file set positions within the package resolve against.
	FileSet *token.FileSet

	// Artifacts maps the qualified name ("<packagePath>.<Name>") of every type declared by the package to its
	// loaded representation.
	Artifacts map[string]*LoadedType

	// SourcePaths describes the source files the package was compiled from, in the order they were provided.
	SourcePaths []string
}

// NewCompilation returns a new, empty Compilation object for the given package path and sources.
func NewCompilation(packagePath string, sourcePaths []string) *Compilation {
	// Create our compilation
	compilation := &Compilation{
		PackagePath: packagePath,
		FileSet:     token.NewFileSet(),
		Artifacts:   make(map[string]*LoadedType),
		SourcePaths: slices.Clone(sourcePaths),
	}

	// Return the compilation.
	return compilation
}

// QualifiedName returns the fully qualified artifact name for a type name declared by the package.
func (c *Compilation) QualifiedName(name string) string {
	return c.PackagePath + "." + name
}

// GetArtifact returns the artifact for the type with the given (unqualified) name, and whether it exists.
func (c *Compilation) GetArtifact(name string) (*LoadedType, bool) {
	artifact, ok := c.Artifacts[c.QualifiedName(name)]
	return artifact, ok
}

// ArtifactNames returns the qualified names of every artifact, sorted.
func (c *Compilation) ArtifactNames() []string {
	names := make([]string, 0, len(c.Artifacts))
	for name := range c.Artifacts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// AddArtifacts records a LoadedType for every type name declared in the package scope.
func (c *Compilation) AddArtifacts() {
	if c.Package == nil {
		return
	}
	scope := c.Package.Scope()
	for _, name := range scope.Names() {
		if typeName, ok := scope.Lookup(name).(*goTypes.TypeName); ok {
			c.Artifacts[c.QualifiedName(name)] = NewLoadedType(c.QualifiedName(name), typeName, c.FileSet)
		}
	}
}
