package descriptions

import (
	"encoding/hex"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDataPath resolves a path within the repository's shared testdata directory.
func testDataPath(elem ...string) string {
	return filepath.Join(append([]string{"..", "testdata"}, elem...)...)
}

// TestReadPlainAbi ensures a plain ABI array is parsed, including overloads, events and errors.
func TestReadPlainAbi(t *testing.T) {
	model, err := NewDefaultReaderRegistry().ReadAbi(testDataPath("abi", "Token.json"))
	require.NoError(t, err)
	require.NotNil(t, model)

	assert.Contains(t, model.Abi.Methods, "transfer")
	assert.Contains(t, model.Abi.Methods, "mint")
	assert.Contains(t, model.Abi.Methods, "mint0")
	assert.Contains(t, model.Abi.Events, "Transfer")
	assert.Contains(t, model.Abi.Errors, "InsufficientBalance")
	assert.Len(t, model.Abi.Constructor.Inputs, 2)
	assert.Nil(t, model.Bytecode)
	assert.Nil(t, model.Metadata)

	// The raw ABI is compacted
	assert.NotContains(t, string(model.RawAbi), "\n")
	assert.Equal(t, byte('['), model.RawAbi[0])
}

// TestReadHardhatArtifact ensures hardhat artifacts yield their ABI, bytecode and embedded metadata.
func TestReadHardhatArtifact(t *testing.T) {
	model, err := NewDefaultReaderRegistry().ReadAbi(testDataPath("abi", "nested", "Vault.json"))
	require.NoError(t, err)
	require.NotNil(t, model)

	assert.Contains(t, model.Abi.Methods, "deposit")
	assert.Contains(t, model.Abi.Errors, "Locked")
	assert.NotEmpty(t, model.Bytecode)
	assert.NotEmpty(t, model.DeployedBytecode)

	require.NotNil(t, model.Metadata)
	assert.Equal(t, "0.8.19", model.Metadata.CompilerVersion())
	hash := model.Metadata.BytecodeHash()
	require.Len(t, hash, 34)
	assert.Equal(t, "1220", hex.EncodeToString(hash[:2]))
}

// TestReadFoundryArtifact ensures foundry artifacts with bytecode objects are recognized.
func TestReadFoundryArtifact(t *testing.T) {
	model, err := NewDefaultReaderRegistry().ReadAbi(testDataPath("formats", "foundry", "Counter.json"))
	require.NoError(t, err)
	require.NotNil(t, model)

	assert.Contains(t, model.Abi.Methods, "increment")
	assert.Equal(t, "6080604052348015600e575f80fd5b50", hex.EncodeToString(model.Bytecode))
	assert.Equal(t, "6080604052", hex.EncodeToString(model.DeployedBytecode))
}

// TestReadUnrecognizedDescription ensures files no reader understands yield a nil model without an error.
func TestReadUnrecognizedDescription(t *testing.T) {
	model, err := NewDefaultReaderRegistry().ReadAbi(testDataPath("formats", "unknown", "Notes.json"))
	assert.NoError(t, err)
	assert.Nil(t, model)

	model, err = NewDefaultReaderRegistry().ReadAbi(testDataPath("malformed", "Broken.json"))
	assert.NoError(t, err)
	assert.Nil(t, model)
}

// TestReadInvalidAbiArray ensures an array which is not a valid ABI produces a reader error.
func TestReadInvalidAbiArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Bad.json")
	writeTestFile(t, path, `[{"type": "function", "name": "f", "inputs": [{"name": "x", "type": "notatype"}]}]`)

	model, err := NewDefaultReaderRegistry().ReadAbi(path)
	assert.Error(t, err)
	assert.Nil(t, model)
}

// TestReaderRegistryOrder ensures readers are consulted in registration order.
func TestReaderRegistryOrder(t *testing.T) {
	registry := NewReaderRegistry(&FoundryArtifactReader{})
	model, err := registry.ReadAbi(testDataPath("abi", "Token.json"))
	require.NoError(t, err)
	assert.Nil(t, model)

	registry.Register(&PlainAbiReader{})
	assert.Equal(t, []string{"foundry", "abi"}, registry.Readers())
	model, err = registry.ReadAbi(testDataPath("abi", "Token.json"))
	require.NoError(t, err)
	assert.NotNil(t, model)
}

// TestInvalidDescriptionError ensures the error names the offending file.
func TestInvalidDescriptionError(t *testing.T) {
	err := NewInvalidDescriptionError(NewDescriptionFile(filepath.Join("abi", "Broken.json")), nil)
	assert.Equal(t, "Broken.json", err.FileName)
	assert.Contains(t, err.Error(), "Broken.json")
	assert.Nil(t, err.Unwrap())
}
