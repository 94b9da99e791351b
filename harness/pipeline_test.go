package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/abiharness/bindings"
	"github.com/crytic/abiharness/compilation"
	"github.com/crytic/abiharness/compilation/platforms"
	"github.com/crytic/abiharness/compilation/types"
	"github.com/crytic/abiharness/config"
	"github.com/crytic/abiharness/descriptions"
	"github.com/crytic/abiharness/utils/testutils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDataPath returns a path within the repository's shared testdata directory.
func testDataPath(elem ...string) string {
	return filepath.Join(append([]string{"..", "testdata"}, elem...)...)
}

// failingGenerator is a Generator which always fails.
type failingGenerator struct{}

func (f failingGenerator) Generate(contractName string, packagePath string, model *descriptions.AbiModel, options map[string]string, errorLoader string) (*bindings.GeneratedSourceUnit, error) {
	return nil, errors.New("template exploded")
}

// TestPipelineTokenEndToEnd ensures the fixture ABIs generate, compile together, and expose their bindings.
func TestPipelineTokenEndToEnd(t *testing.T) {
	outputRoot := t.TempDir()
	compiler := &countingCompiler{delegate: platforms.NewGoTypesCompilationConfig(".")}
	cache := NewArtifactCache(NewPipeline(testDataPath("abi"), outputRoot, compiler))

	token, err := cache.GetContract("Token")
	require.NoError(t, err)
	assert.Equal(t, "abigen/test.Token", token.QualifiedName)
	assert.True(t, token.IsStruct())
	for _, method := range []string{"ABI", "PackConstructor", "PackTransfer", "UnpackBalanceOf", "UnpackTransferEvent", "UnpackInsufficientBalanceError", "DecodeRevert"} {
		assert.True(t, token.HasMethod(method), "Token should declare %s", method)
	}
	assert.Equal(t, filepath.Join(outputRoot, "abigen", "test", "Token.go"), token.Position.Filename)

	vault, err := cache.GetContract("Vault")
	require.NoError(t, err)
	assert.True(t, vault.HasMethod("DeployData"))

	loader, err := cache.GetContract("TestErrorLoader")
	require.NoError(t, err)
	assert.True(t, loader.HasMethod("Decode"))

	// Tuple structs are declared with the contract prefix
	account, err := cache.GetContract("Token_Account")
	require.NoError(t, err)
	assert.EqualValues(t, []string{"Owner", "Balance", "Frozen"}, account.Fields())

	// The sources and the artifact hash were written into the output root
	for _, name := range []string{"Token.go", "Vault.go", "TestErrorLoader.go"} {
		_, err = os.Stat(filepath.Join(outputRoot, "abigen", "test", name))
		assert.NoError(t, err)
	}
	assert.NotNil(t, compilation.LoadArtifactHashCache(outputRoot))
	assert.EqualValues(t, 1, compiler.calls.Load())
}

// TestPipelineDuplicateLogicalNames ensures two descriptions with the same name fail compilation at both
// occurrences, and the failure is latched.
func TestPipelineDuplicateLogicalNames(t *testing.T) {
	compiler := &countingCompiler{delegate: platforms.NewGoTypesCompilationConfig(".")}
	cache := NewArtifactCache(NewPipeline(testDataPath("duplicates"), t.TempDir(), compiler))

	_, err := cache.GetContract("Token")
	var compilationErr *types.CompilationError
	require.True(t, errors.As(err, &compilationErr))
	assert.Contains(t, compilationErr.Output, "redeclared")

	// Both registrations reached the compiler
	require.Len(t, compiler.sourcePaths, 3)
	assert.Equal(t, compiler.sourcePaths[0], compiler.sourcePaths[1])

	_, secondErr := cache.GetContract("Token")
	assert.Equal(t, err, secondErr)
	assert.Equal(t, Failed, cache.State())
	assert.EqualValues(t, 1, compiler.calls.Load())
}

// TestPipelineContractMemberNames ensures the symbols generated alongside a contract never collide with other
// contracts whose names extend it, nor with the binding's own constants.
func TestPipelineContractMemberNames(t *testing.T) {
	compiler := &countingCompiler{delegate: platforms.NewGoTypesCompilationConfig(".")}
	cache := NewArtifactCache(NewPipeline(testDataPath("collisions"), t.TempDir(), compiler))

	for _, name := range []string{"Token", "TokenTransfer", "NewToken", "Token_Transfer", "TokenTransfer_ABI1", "TokenTransfer_Bin1"} {
		artifact, err := cache.GetContract(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, artifact.Name)
	}

	transfer, err := cache.GetContract("TokenTransfer")
	require.NoError(t, err)
	assert.True(t, transfer.HasMethod("UnpackABIEvent"))
	assert.True(t, transfer.HasMethod("UnpackBinError"))
	assert.EqualValues(t, 1, compiler.calls.Load())
}

// TestPipelineParallelDuplicateLogicalNames ensures concurrent generation still writes every duplicate binding
// whole, so compilation reports the redeclaration rather than a corrupted file.
func TestPipelineParallelDuplicateLogicalNames(t *testing.T) {
	outputRoot := t.TempDir()
	compiler := &countingCompiler{delegate: platforms.NewGoTypesCompilationConfig(".")}
	pipeline := NewPipeline(testDataPath("duplicates"), outputRoot, compiler)
	pipeline.Workers = 4

	_, err := pipeline.Run()
	var compilationErr *types.CompilationError
	require.True(t, errors.As(err, &compilationErr))
	assert.Contains(t, compilationErr.Output, "redeclared")
	assert.NotContains(t, compilationErr.Output, "expected")

	// The last description in scan order owns the file on disk
	model, err := descriptions.NewDefaultReaderRegistry().ReadAbi(testDataPath("duplicates", "b", "Token.json"))
	require.NoError(t, err)
	expected, err := bindings.NewTemplateGenerator().Generate("Token", pipeline.PackagePath, model, map[string]string{}, "abigen/test.TestErrorLoader")
	require.NoError(t, err)
	written, err := os.ReadFile(filepath.Join(outputRoot, "abigen", "test", "Token.go"))
	require.NoError(t, err)
	assert.Equal(t, expected.Source, string(written))
}

// TestPipelineMalformedDescription ensures an unreadable description aborts the run before compilation.
func TestPipelineMalformedDescription(t *testing.T) {
	compiler := &countingCompiler{}
	cache := NewArtifactCache(NewPipeline(testDataPath("malformed"), t.TempDir(), compiler))

	_, err := cache.GetContract("Token")
	var invalidErr *descriptions.InvalidDescriptionError
	require.True(t, errors.As(err, &invalidErr))
	assert.Equal(t, "Broken.json", invalidErr.FileName)

	assert.EqualValues(t, 0, compiler.calls.Load())
	assert.Equal(t, Failed, cache.State())
}

// TestPipelineMissingRoot ensures a missing ABI directory fails the build.
func TestPipelineMissingRoot(t *testing.T) {
	compiler := &countingCompiler{}
	pipeline := NewPipeline(filepath.Join(t.TempDir(), "missing"), t.TempDir(), compiler)

	_, err := pipeline.Run()
	assert.True(t, errors.Is(err, descriptions.ErrRootNotFound))
	assert.EqualValues(t, 0, compiler.calls.Load())
}

// TestPipelineEmptyDirectory ensures a directory without descriptions cannot produce an error loader.
func TestPipelineEmptyDirectory(t *testing.T) {
	compiler := &countingCompiler{}
	pipeline := NewPipeline(t.TempDir(), t.TempDir(), compiler)

	_, err := pipeline.Run()
	assert.True(t, errors.Is(err, bindings.ErrNoContracts))
	assert.EqualValues(t, 0, compiler.calls.Load())
}

// TestPipelineGenerationFailure ensures a generator failure aborts the run with the contract at fault.
func TestPipelineGenerationFailure(t *testing.T) {
	compiler := &countingCompiler{}
	pipeline := NewPipeline(testDataPath("abi"), t.TempDir(), compiler)
	pipeline.Generator = failingGenerator{}

	_, err := pipeline.Run()
	var generationErr *bindings.GenerationError
	require.True(t, errors.As(err, &generationErr))
	assert.Equal(t, "Token", generationErr.ContractName)
	assert.EqualValues(t, 0, compiler.calls.Load())
}

// TestPipelineParallelGeneration ensures concurrent generation yields the same sources as sequential generation.
func TestPipelineParallelGeneration(t *testing.T) {
	// Copy the token ABI under many names
	abiDirectory := t.TempDir()
	tokenAbi, err := os.ReadFile(testDataPath("abi", "Token.json"))
	require.NoError(t, err)
	for _, name := range []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf", "Hotel"} {
		testutils.WriteTestFile(t, abiDirectory, filepath.Join(name[:1], name+".json"), string(tokenAbi))
	}

	run := func(workers int) (string, []string) {
		outputRoot := t.TempDir()
		compiler := &countingCompiler{}
		pipeline := NewPipeline(abiDirectory, outputRoot, compiler)
		pipeline.Workers = workers
		compilation, err := pipeline.Run()
		require.NoError(t, err)
		assert.Len(t, compilation.Artifacts, 9)

		loaderSource, err := os.ReadFile(filepath.Join(outputRoot, "abigen", "test", "TestErrorLoader.go"))
		require.NoError(t, err)
		relative := make([]string, len(compiler.sourcePaths))
		for i, sourcePath := range compiler.sourcePaths {
			relative[i], err = filepath.Rel(outputRoot, sourcePath)
			require.NoError(t, err)
		}
		return string(loaderSource), relative
	}

	sequentialLoader, sequentialSources := run(1)
	parallelLoader, parallelSources := run(4)
	assert.Equal(t, sequentialLoader, parallelLoader)
	assert.EqualValues(t, sequentialSources, parallelSources)
}

// TestNewPipelineFromConfig ensures the project configuration is validated and applied.
func TestNewPipelineFromConfig(t *testing.T) {
	projectConfig, err := config.GetDefaultProjectConfig(config.DefaultPlatform)
	require.NoError(t, err)

	_, err = NewPipelineFromConfig(projectConfig)
	var configErr *config.ConfigurationError
	require.True(t, errors.As(err, &configErr))

	projectConfig.OutputDirectory = t.TempDir()
	projectConfig.PackagePath = "example.com/contracts"
	projectConfig.LoaderScope = "Integration"
	projectConfig.GenerationWorkers = 3
	pipeline, err := NewPipelineFromConfig(projectConfig)
	require.NoError(t, err)
	assert.Equal(t, "example.com/contracts", pipeline.PackagePath)
	assert.Equal(t, "Integration", pipeline.LoaderScope)
	assert.Equal(t, 3, pipeline.Workers)
	assert.Equal(t, projectConfig.Compilation, pipeline.Compiler)
}
