package descriptions

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"os"
	"strings"

	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/pkg/errors"
)

// AbiModel describes the parsed representation of a single ABI description. It is consumed by a binding generator
// and never persisted.
type AbiModel struct {
	// Abi describes the parsed contract ABI.
	Abi abi.ABI

	// RawAbi describes the ABI JSON array exactly as it appeared in the description.
	RawAbi []byte

	// Bytecode describes the contract creation bytecode, if the description carried it.
	Bytecode []byte

	// DeployedBytecode describes the contract runtime bytecode, if the description carried it.
	DeployedBytecode []byte

	// Metadata describes the solc metadata embedded in the runtime bytecode, if any could be extracted.
	Metadata *ContractMetadata
}

// Reader describes a component which reads the ABI description at a given path into an AbiModel. A nil model with a
// nil error indicates that the file is not a recognized description.
type Reader interface {
	ReadAbi(path string) (*AbiModel, error)
}

// FormatReader describes a parser for one description format. Read returns a nil model and nil error when the data
// is not in the reader's format.
type FormatReader interface {
	// Name returns an identifier for the format.
	Name() string

	// Read parses the raw description data.
	Read(data []byte) (*AbiModel, error)
}

// ReaderRegistry is a Reader which tries each of its registered FormatReaders in order and returns the first model
// produced.
type ReaderRegistry struct {
	readers []FormatReader
}

// NewReaderRegistry creates a ReaderRegistry over the provided format readers.
func NewReaderRegistry(readers ...FormatReader) *ReaderRegistry {
	return &ReaderRegistry{readers: readers}
}

// NewDefaultReaderRegistry creates a ReaderRegistry which understands plain ABI arrays, hardhat/truffle artifacts
// and foundry artifacts.
func NewDefaultReaderRegistry() *ReaderRegistry {
	return NewReaderRegistry(
		&PlainAbiReader{},
		&HardhatArtifactReader{},
		&FoundryArtifactReader{},
	)
}

// Register appends a format reader to the registry. Readers are consulted in registration order.
func (r *ReaderRegistry) Register(reader FormatReader) {
	r.readers = append(r.readers, reader)
}

// Readers returns the names of the registered format readers.
func (r *ReaderRegistry) Readers() []string {
	names := make([]string, len(r.readers))
	for i, reader := range r.readers {
		names[i] = reader.Name()
	}
	return names
}

// ReadAbi reads the file at the given path and returns the model produced by the first format reader which
// recognizes it. If no reader recognizes the file, nil is returned.
func (r *ReaderRegistry) ReadAbi(path string) (*AbiModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	for _, reader := range r.readers {
		model, err := reader.Read(data)
		if err != nil {
			return nil, errors.Wrapf(err, "%s reader failed", reader.Name())
		}
		if model != nil {
			return model, nil
		}
	}
	return nil, nil
}

// PlainAbiReader reads descriptions which consist solely of an ABI JSON array.
type PlainAbiReader struct{}

// Name returns an identifier for the format.
func (p *PlainAbiReader) Name() string {
	return "abi"
}

// Read parses the raw description data.
func (p *PlainAbiReader) Read(data []byte) (*AbiModel, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil
	}
	return newAbiModel(trimmed, nil, nil)
}

// HardhatArtifactReader reads hardhat and truffle artifacts, which carry an "abi" array alongside hex-encoded
// bytecode strings.
type HardhatArtifactReader struct{}

// hardhatArtifact describes the subset of a hardhat/truffle artifact which is of interest.
type hardhatArtifact struct {
	Abi              json.RawMessage `json:"abi"`
	Bytecode         *string         `json:"bytecode"`
	DeployedBytecode *string         `json:"deployedBytecode"`
}

// Name returns an identifier for the format.
func (h *HardhatArtifactReader) Name() string {
	return "hardhat"
}

// Read parses the raw description data.
func (h *HardhatArtifactReader) Read(data []byte) (*AbiModel, error) {
	var artifact hardhatArtifact
	if err := json.Unmarshal(data, &artifact); err != nil || len(artifact.Abi) == 0 {
		return nil, nil
	}
	return newAbiModel(artifact.Abi, decodeBytecode(artifact.Bytecode), decodeBytecode(artifact.DeployedBytecode))
}

// FoundryArtifactReader reads foundry artifacts, which carry an "abi" array alongside bytecode objects.
type FoundryArtifactReader struct{}

// foundryBytecode describes a foundry bytecode object.
type foundryBytecode struct {
	Object string `json:"object"`
}

// foundryArtifact describes the subset of a foundry artifact which is of interest.
type foundryArtifact struct {
	Abi              json.RawMessage  `json:"abi"`
	Bytecode         *foundryBytecode `json:"bytecode"`
	DeployedBytecode *foundryBytecode `json:"deployedBytecode"`
}

// Name returns an identifier for the format.
func (f *FoundryArtifactReader) Name() string {
	return "foundry"
}

// Read parses the raw description data.
func (f *FoundryArtifactReader) Read(data []byte) (*AbiModel, error) {
	var artifact foundryArtifact
	if err := json.Unmarshal(data, &artifact); err != nil || len(artifact.Abi) == 0 {
		return nil, nil
	}

	var bytecode, deployedBytecode []byte
	if artifact.Bytecode != nil {
		bytecode = decodeBytecode(&artifact.Bytecode.Object)
	}
	if artifact.DeployedBytecode != nil {
		deployedBytecode = decodeBytecode(&artifact.DeployedBytecode.Object)
	}
	return newAbiModel(artifact.Abi, bytecode, deployedBytecode)
}

// newAbiModel parses the raw ABI array and assembles an AbiModel around it.
func newAbiModel(rawAbi []byte, bytecode []byte, deployedBytecode []byte) (*AbiModel, error) {
	// A null ABI field is not a description
	if bytes.Equal(bytes.TrimSpace(rawAbi), []byte("null")) {
		return nil, nil
	}

	parsedAbi, err := abi.JSON(bytes.NewReader(rawAbi))
	if err != nil {
		return nil, errors.Wrap(err, "could not parse ABI")
	}

	// Compact the raw ABI so it can be embedded in generated code
	var compacted bytes.Buffer
	if err = json.Compact(&compacted, rawAbi); err != nil {
		return nil, errors.WithStack(err)
	}

	model := &AbiModel{
		Abi:              parsedAbi,
		RawAbi:           compacted.Bytes(),
		Bytecode:         bytecode,
		DeployedBytecode: deployedBytecode,
	}
	if len(deployedBytecode) > 0 {
		model.Metadata = ExtractContractMetadata(deployedBytecode)
	}
	return model, nil
}

// decodeBytecode decodes a hex-encoded bytecode string. Unlinked bytecode (containing library placeholders) and
// malformed strings are treated as absent.
func decodeBytecode(encoded *string) []byte {
	if encoded == nil {
		return nil
	}
	b, err := hex.DecodeString(strings.TrimPrefix(*encoded, "0x"))
	if err != nil || len(b) == 0 {
		return nil
	}
	return b
}
