package harness

import (
	"iter"
	"path/filepath"

	"github.com/crytic/abiharness/bindings"
	"github.com/crytic/abiharness/compilation"
	"github.com/crytic/abiharness/compilation/types"
	"github.com/crytic/abiharness/config"
	"github.com/crytic/abiharness/descriptions"
	"github.com/crytic/abiharness/logging"
	"github.com/crytic/abiharness/logging/colors"
	"github.com/crytic/abiharness/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Compiler describes a compiler which compiles a set of source files as one package in a single pass.
type Compiler interface {
	Compile(packagePath string, sourcePaths []string) (*types.Compilation, string, error)
}

// Pipeline turns a directory of ABI descriptions into a compiled package: it generates a binding per description,
// the error loader over all of them, and compiles the complete set at once.
type Pipeline struct {
	// AbiDirectory describes the directory scanned recursively for ABI descriptions.
	AbiDirectory string

	// OutputRoot describes the directory generated sources are written under.
	OutputRoot string

	// PackagePath describes the import path of the generated package.
	PackagePath string

	// LoaderScope describes the prefix of the generated error loader.
	LoaderScope string

	// Workers describes how many bindings may be generated concurrently.
	Workers int

	// Reader reads ABI descriptions.
	Reader descriptions.Reader

	// Generator generates a binding per description.
	Generator bindings.Generator

	// Compiler compiles the generated sources.
	Compiler Compiler

	// logger describes the Pipeline's log object that can be used to log important events
	logger *logging.Logger
}

// NewPipeline creates a Pipeline with default collaborators and settings which reads descriptions from abiDirectory,
// writes sources under outputRoot and compiles them with the provided compiler.
func NewPipeline(abiDirectory string, outputRoot string, compiler Compiler) *Pipeline {
	return &Pipeline{
		AbiDirectory: abiDirectory,
		OutputRoot:   outputRoot,
		PackagePath:  config.DefaultPackagePath,
		LoaderScope:  config.DefaultLoaderScope,
		Workers:      1,
		Reader:       descriptions.NewDefaultReaderRegistry(),
		Generator:    bindings.NewTemplateGenerator(),
		Compiler:     compiler,
		logger:       logging.GlobalLogger.NewSubLogger(logging.SERVICE_KEY, logging.HARNESS_SERVICE),
	}
}

// NewPipelineFromConfig validates the project configuration and creates a Pipeline from it.
func NewPipelineFromConfig(projectConfig *config.ProjectConfig) (*Pipeline, error) {
	if err := projectConfig.Validate(); err != nil {
		return nil, err
	}

	pipeline := NewPipeline(projectConfig.AbiDirectory, projectConfig.OutputDirectory, projectConfig.Compilation)
	pipeline.PackagePath = projectConfig.PackagePath
	pipeline.LoaderScope = projectConfig.LoaderScope
	pipeline.Workers = projectConfig.GenerationWorkers
	return pipeline, nil
}

// Run scans the ABI directory, generates every binding and the error loader, and compiles them in one pass. Any
// failure aborts the run and is returned. A failed compilation is returned as a *types.CompilationError.
func (p *Pipeline) Run() (*types.Compilation, error) {
	runId := uuid.New()
	p.logger.Info("Generating bindings from ", colors.Bold, p.AbiDirectory, colors.Reset, " (run ", runId.String(), ")")

	// Scan for descriptions before creating anything
	files, err := descriptions.Scan(p.AbiDirectory)
	if err != nil {
		return nil, err
	}

	// Generate and register every binding. The error loader is only built once every binding is registered.
	builder := bindings.NewErrorLoaderBuilder(p.LoaderScope, p.PackagePath, p.OutputRoot)
	units, err := p.generateUnits(files, builder)
	if err != nil {
		return nil, err
	}
	loaderUnit, err := builder.Build()
	if err != nil {
		return nil, errors.Wrapf(err, "could not build %s", builder.CanonicalName())
	}
	p.logger.Debug("Generated error loader ", loaderUnit.Path)
	units = append(units, loaderUnit)
	p.logger.Info("Generated ", colors.Bold, len(units)-1, colors.Reset, " binding(s) into ", filepath.Join(p.OutputRoot, filepath.FromSlash(p.PackagePath)))

	// Report whether this generated set differs from the last one
	sourcePaths := make([]string, len(units))
	artifacts := make([]compilation.SourceArtifact, len(units))
	for i, unit := range units {
		sourcePaths[i] = unit.Path
		artifacts[i] = compilation.SourceArtifact{Name: unit.Name, Source: unit.Source}
	}
	compilation.NotifyArtifactHashStatus(artifacts, p.OutputRoot, p.logger)

	// Compile the whole set at once
	result, output, err := p.Compiler.Compile(p.PackagePath, sourcePaths)
	if output != "" {
		p.logger.Debug("Compiler output:\n", output)
	}
	if err != nil {
		p.logger.Error("Failed to compile the generated bindings", err)
		return nil, err
	}
	p.logger.Info("Compiled ", colors.Bold, len(result.Artifacts), colors.Reset, " type(s) in package ", result.PackagePath)
	return result, nil
}

// generateUnits generates the binding of every scanned description and registers it with the builder. Units are
// returned in scan order.
func (p *Pipeline) generateUnits(files iter.Seq2[descriptions.DescriptionFile, error], builder *bindings.ErrorLoaderBuilder) ([]*bindings.GeneratedSourceUnit, error) {
	// Generate sequentially, in scan order, failing on the first error
	if p.Workers <= 1 {
		units := make([]*bindings.GeneratedSourceUnit, 0)
		for file, err := range files {
			if err != nil {
				return nil, err
			}
			unit, err := p.generateUnit(file, builder)
			if err != nil {
				return nil, err
			}
			if err = p.emitUnit(unit, builder); err != nil {
				return nil, err
			}
			units = append(units, unit)
		}
		return units, nil
	}

	// Otherwise fan out over the complete scan
	scanned := make([]descriptions.DescriptionFile, 0)
	for file, err := range files {
		if err != nil {
			return nil, err
		}
		scanned = append(scanned, file)
	}
	units := make([]*bindings.GeneratedSourceUnit, len(scanned))
	var group errgroup.Group
	group.SetLimit(p.Workers)
	for i, file := range scanned {
		group.Go(func() error {
			unit, err := p.generateUnit(file, builder)
			if err != nil {
				return err
			}
			units[i] = unit
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	// Units sharing a logical name share a path, so they are written one at a time in scan order
	for _, unit := range units {
		if err := p.emitUnit(unit, builder); err != nil {
			return nil, err
		}
	}
	return units, nil
}

// generateUnit reads a single description and generates its binding against the builder's loader.
func (p *Pipeline) generateUnit(file descriptions.DescriptionFile, builder *bindings.ErrorLoaderBuilder) (*bindings.GeneratedSourceUnit, error) {
	// Read the description
	model, err := p.Reader.ReadAbi(file.Path)
	if err != nil || model == nil {
		return nil, descriptions.NewInvalidDescriptionError(file, err)
	}

	// Generate the binding against the package's error loader
	unit, err := p.Generator.Generate(file.Name, p.PackagePath, model, map[string]string{}, builder.CanonicalName())
	if err != nil {
		return nil, bindings.NewGenerationError(file.Name, err)
	}
	if unit == nil {
		return nil, bindings.NewGenerationError(file.Name, errors.New("generator produced no source"))
	}

	unit.Path = bindings.SourcePath(p.OutputRoot, p.PackagePath, file.Name)
	p.logger.Debug("Generated binding ", unit.Name, " from ", file.Path)
	return unit, nil
}

// emitUnit writes a generated binding to its canonical location and registers it with the builder.
func (p *Pipeline) emitUnit(unit *bindings.GeneratedSourceUnit, builder *bindings.ErrorLoaderBuilder) error {
	if err := utils.WriteFile(unit.Path, []byte(unit.Source)); err != nil {
		return bindings.NewGenerationError(unit.Name, err)
	}
	return builder.AddContract(unit)
}
