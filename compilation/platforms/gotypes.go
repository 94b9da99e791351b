package platforms

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	goTypes "go/types"
	"os"
	"strconv"
	"strings"

	"github.com/crytic/abiharness/compilation/types"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/packages"
)

// importLoadMode describes the information loaded for every package imported by the compiled sources.
const importLoadMode = packages.NeedName | packages.NeedTypes | packages.NeedImports | packages.NeedDeps

// GoTypesCompilationConfig describes the configuration for compiling generated sources in-process, by parsing and
// type-checking them against the packages visible from a module directory.
type GoTypesCompilationConfig struct {
	// ModuleDirectory describes the directory imports are resolved from. It must lie within a module which
	// requires every package the generated sources import.
	ModuleDirectory string `json:"moduleDirectory"`

	// BuildFlags describes additional flags passed to the build system when resolving imports.
	BuildFlags []string `json:"buildFlags"`
}

// NewGoTypesCompilationConfig returns a GoTypesCompilationConfig resolving imports from the given module directory.
func NewGoTypesCompilationConfig(moduleDirectory string) *GoTypesCompilationConfig {
	return &GoTypesCompilationConfig{
		ModuleDirectory: moduleDirectory,
		BuildFlags:      []string{},
	}
}

// Platform returns the platform identifier for this configuration.
func (g *GoTypesCompilationConfig) Platform() string {
	return "gotypes"
}

// GetTarget returns the target for compilation
func (g *GoTypesCompilationConfig) GetTarget() string {
	return g.ModuleDirectory
}

// SetTarget sets the new target for compilation
func (g *GoTypesCompilationConfig) SetTarget(newTarget string) {
	g.ModuleDirectory = newTarget
}

// Compile parses and type-checks every source as one package. Every diagnostic of the pass is collected, so a
// failed compilation reports all of them at once.
func (g *GoTypesCompilationConfig) Compile(packagePath string, sourcePaths []string) (*types.Compilation, string, error) {
	if len(sourcePaths) == 0 {
		return nil, "", errors.New("could not compile: no source files were provided")
	}

	// Create our compilation and parse every source into its file set
	compilation := types.NewCompilation(packagePath, sourcePaths)
	files, diagnostics, err := parseSources(compilation, sourcePaths)
	if err != nil {
		return nil, "", err
	}
	if len(diagnostics) > 0 {
		compilationErr := types.NewCompilationError(diagnostics, "")
		return nil, compilationErr.Output, compilationErr
	}

	// Resolve every import the sources declare
	imported, err := g.loadImports(files)
	if err != nil {
		return nil, "", err
	}

	// Type-check the package, collecting every diagnostic rather than stopping at the first
	conf := goTypes.Config{
		Importer: importerFunc(func(path string) (*goTypes.Package, error) {
			pkg, ok := imported[path]
			if !ok || pkg.Types == nil {
				return nil, fmt.Errorf("could not import %s: package was not resolved", path)
			}
			if len(pkg.Errors) > 0 {
				return nil, fmt.Errorf("could not import %s: %v", path, pkg.Errors[0])
			}
			return pkg.Types, nil
		}),
		Error: func(err error) {
			diagnostics = append(diagnostics, err.Error())
		},
	}
	pkg, _ := conf.Check(packagePath, compilation.FileSet, files, nil)
	if len(diagnostics) > 0 {
		compilationErr := types.NewCompilationError(diagnostics, "")
		return nil, compilationErr.Output, compilationErr
	}

	// Record every declared type as an artifact
	compilation.Package = pkg
	compilation.AddArtifacts()
	return compilation, "", nil
}

// parseSources parses every source path into the compilation's file set. A path provided more than once is parsed
// once per occurrence. Syntax errors are returned as diagnostics, while failures to read a source are returned as
// an error.
func parseSources(compilation *types.Compilation, sourcePaths []string) ([]*ast.File, []string, error) {
	files := make([]*ast.File, 0, len(sourcePaths))
	diagnostics := make([]string, 0)
	for _, sourcePath := range sourcePaths {
		file, err := parser.ParseFile(compilation.FileSet, sourcePath, nil, parser.AllErrors|parser.SkipObjectResolution)
		if err != nil {
			var errorList scanner.ErrorList
			if !errors.As(err, &errorList) {
				return nil, nil, errors.Wrapf(err, "could not read source %s", sourcePath)
			}
			for _, parseErr := range errorList {
				diagnostics = append(diagnostics, parseErr.Error())
			}
			continue
		}
		files = append(files, file)
	}
	return files, diagnostics, nil
}

// loadImports loads the type information of every package imported by the provided files, keyed by import path.
func (g *GoTypesCompilationConfig) loadImports(files []*ast.File) (map[string]*packages.Package, error) {
	// Collect the unique import paths
	importPaths := make([]string, 0)
	for _, file := range files {
		for _, importSpec := range file.Imports {
			importPath, err := strconv.Unquote(importSpec.Path.Value)
			if err != nil {
				continue
			}
			if !slices.Contains(importPaths, importPath) {
				importPaths = append(importPaths, importPath)
			}
		}
	}
	imported := make(map[string]*packages.Package)
	if len(importPaths) == 0 {
		return imported, nil
	}
	slices.Sort(importPaths)

	// Load the packages from the module directory
	loaded, err := packages.Load(&packages.Config{
		Mode:       importLoadMode,
		Dir:        g.ModuleDirectory,
		Env:        os.Environ(),
		BuildFlags: g.BuildFlags,
	}, importPaths...)
	if err != nil {
		return nil, errors.Wrapf(err, "could not load imports %s", strings.Join(importPaths, ", "))
	}
	for _, pkg := range loaded {
		key := pkg.PkgPath
		if key == "" {
			key = pkg.ID
		}
		imported[key] = pkg
	}
	return imported, nil
}

// importerFunc adapts a function to the go/types Importer interface.
type importerFunc func(path string) (*goTypes.Package, error)

func (f importerFunc) Import(path string) (*goTypes.Package, error) {
	return f(path)
}
