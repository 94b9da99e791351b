package bindings

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/crytic/abiharness/descriptions"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPackagePath = "abigen/test"
	testLoaderName  = "abigen/test.TestErrorLoader"
)

// readTestModel reads an ABI model from the repository's shared testdata directory.
func readTestModel(t *testing.T, elem ...string) *descriptions.AbiModel {
	path := filepath.Join(append([]string{"..", "testdata"}, elem...)...)
	model, err := descriptions.NewDefaultReaderRegistry().ReadAbi(path)
	require.NoError(t, err)
	require.NotNil(t, model)
	return model
}

// TestGenerateTokenBinding ensures the binding of a plain ABI declares every expected symbol.
func TestGenerateTokenBinding(t *testing.T) {
	model := readTestModel(t, "abi", "Token.json")

	unit, err := NewTemplateGenerator().Generate("Token", testPackagePath, model, map[string]string{}, testLoaderName)
	require.NoError(t, err)
	assert.Equal(t, "Token", unit.Name)
	assert.Equal(t, testPackagePath, unit.PackagePath)
	assert.Empty(t, unit.Path)

	expected := []string{
		"package test",
		"const Token_ABI = ",
		"type Token struct",
		"func Token_New() (*Token, error)",
		"func (c *Token) PackConstructor(name string, supply *big.Int) ([]byte, error)",
		"func (c *Token) PackTransfer(to common.Address, amount *big.Int) ([]byte, error)",
		"func (c *Token) UnpackTransfer(data []byte) (bool, error)",
		"func (c *Token) UnpackDecimals(data []byte) (uint8, error)",
		"func (c *Token) PackAllowance(arg0 common.Address, arg1 common.Address) ([]byte, error)",
		"func (c *Token) PackMint(to common.Address, amount *big.Int) ([]byte, error)",
		"func (c *Token) PackMint0(amount *big.Int) ([]byte, error)",
		"func (c *Token) PackBatchTransfer(recipients []common.Address, amounts [2]*big.Int) ([]byte, error)",
		"type Token_Account struct",
		"func (c *Token) UnpackGetAccount(data []byte) (Token_Account, error)",
		"type Token_GetReservesOutput struct",
		"func (c *Token) UnpackGetReserves(data []byte) (*Token_GetReservesOutput, error)",
		"type Token_Transfer struct",
		"func (c *Token) UnpackTransferEvent(topics []common.Hash, data []byte) (*Token_Transfer, error)",
		"type Token_InsufficientBalance struct",
		"func (c *Token) UnpackInsufficientBalanceError(data []byte) (*Token_InsufficientBalance, error)",
		"func (c *Token) UnpackUnauthorizedError(data []byte) (*Token_Unauthorized, error)",
		"func (c *Token) DecodeRevert(data []byte) (*TestErrorLoader_DecodedError, error)",
		"return TestErrorLoader{}.Decode(data)",
	}
	for _, symbol := range expected {
		assert.Contains(t, unit.Source, symbol)
	}

	// Methods without outputs have no unpack function, and plain ABIs have no bytecode
	assert.NotContains(t, unit.Source, "UnpackMint(")
	assert.NotContains(t, unit.Source, "Token_Bin")
	assert.NotContains(t, unit.Source, "DeployData")
}

// TestGenerateIndexedDynamicEventField ensures indexed dynamic event arguments are bound as topic hashes.
func TestGenerateIndexedDynamicEventField(t *testing.T) {
	model := readTestModel(t, "abi", "Token.json")

	unit, err := NewTemplateGenerator().Generate("Token", testPackagePath, model, nil, testLoaderName)
	require.NoError(t, err)

	memo := unit.Source[strings.Index(unit.Source, "type Token_Memo struct"):]
	memo = memo[:strings.Index(memo, "}")]
	assert.Contains(t, memo, "Tag  common.Hash")
	assert.Contains(t, memo, "Data []byte")
}

// TestGenerateArtifactBinding ensures artifacts with bytecode produce deployment helpers and a metadata header.
func TestGenerateArtifactBinding(t *testing.T) {
	model := readTestModel(t, "abi", "nested", "Vault.json")

	unit, err := NewTemplateGenerator().Generate("Vault", testPackagePath, model, nil, testLoaderName)
	require.NoError(t, err)
	assert.Contains(t, unit.Source, "// Compiler: solc 0.8.19")
	assert.Contains(t, unit.Source, "const Vault_Bin = \"0x6080")
	assert.Contains(t, unit.Source, "func (c *Vault) DeployData() ([]byte, error)")
	assert.Contains(t, unit.Source, "type Vault_Locked struct")
	assert.Contains(t, unit.Source, "Until uint64")
}

// TestGenerateMemberNames ensures symbols declared alongside the contract type are its members, and never reuse the
// names of the binding's constants.
func TestGenerateMemberNames(t *testing.T) {
	model := readTestModel(t, "collisions", "TokenTransfer.json")

	unit, err := NewTemplateGenerator().Generate("TokenTransfer", testPackagePath, model, nil, testLoaderName)
	require.NoError(t, err)
	for _, symbol := range []string{
		"const TokenTransfer_ABI = ",
		"func TokenTransfer_New() (*TokenTransfer, error)",
		"type TokenTransfer_ABI1 struct",
		"func (c *TokenTransfer) UnpackABIEvent(topics []common.Hash, data []byte) (*TokenTransfer_ABI1, error)",
		"type TokenTransfer_Bin1 struct",
		"func (c *TokenTransfer) UnpackBinError(data []byte) (*TokenTransfer_Bin1, error)",
	} {
		assert.Contains(t, unit.Source, symbol)
	}
}

// TestGenerateRejectsForeignLoader ensures the loader must be declared within the target package.
func TestGenerateRejectsForeignLoader(t *testing.T) {
	model := readTestModel(t, "abi", "Token.json")
	generator := NewTemplateGenerator()

	_, err := generator.Generate("Token", testPackagePath, model, nil, "other/pkg.TestErrorLoader")
	var generationErr *GenerationError
	require.True(t, errors.As(err, &generationErr))
	assert.Equal(t, "Token", generationErr.ContractName)

	_, err = generator.Generate("Token", testPackagePath, model, nil, "abigen/test.Loader")
	assert.True(t, errors.As(err, &generationErr))

	_, err = generator.Generate("Token", testPackagePath, nil, nil, testLoaderName)
	assert.True(t, errors.As(err, &generationErr))
}

// TestContractIdentifier ensures logical names are turned into exported Go identifiers.
func TestContractIdentifier(t *testing.T) {
	testCases := map[string]string{
		"Token":         "Token",
		"erc20":         "Erc20",
		"my-token":      "MyToken",
		"uniswap_v2":    "UniswapV2",
		"1inch":         "X1inch",
		"Token.flatten": "TokenFlatten",
		"__init__":      "Init",
		"_":             "X",
	}
	for input, expected := range testCases {
		identifier := ContractIdentifier(input)
		assert.Equal(t, expected, identifier, input)
		assert.NotContains(t, identifier, "_", input)
	}
}

// TestPackageName ensures package paths map to their last element.
func TestPackageName(t *testing.T) {
	assert.Equal(t, "test", PackageName("abigen/test"))
	assert.Equal(t, "bindings", PackageName("bindings"))
	assert.Equal(t, "my_pkg", PackageName("example.com/my-pkg"))
}
