package descriptions

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor"
)

// ContractMetadata is a CBOR-encoded structure which the Solidity compiler appends to the runtime bytecode of a
// contract (unless explicitly directed not to).
// Reference: https://docs.soliditylang.org/en/v0.8.16/metadata.html
type ContractMetadata map[string]any

// metadataHashPrefixes defines patterns to use in search for CBOR-encoded contract metadata appended to the end of
// bytecode.
var metadataHashPrefixes = [][]byte{
	{0xa1, 0x65, 98, 122, 122, 114, 48, 0x58, 0x20},  // a1 65 "bzzr0" 0x58 0x20 (solc <= 0.5.8)
	{0xa2, 0x65, 98, 122, 122, 114, 48, 0x58, 0x20},  // a2 65 "bzzr0" 0x58 0x20 (solc >= 0.5.9)
	{0xa2, 0x65, 98, 122, 122, 114, 49, 0x58, 0x20},  // a2 65 "bzzr1" 0x58 0x20 (solc >= 0.5.11)
	{0xa2, 0x64, 0x69, 0x70, 0x66, 0x73, 0x58, 0x22}, // a2 64 "ipfs" 0x58 0x22 (solc >= 0.6.0)
}

// bytecodeHashMetadataKeys defines the keys in the CBOR-encoded ContractMetadata which contain bytecode hashes.
var bytecodeHashMetadataKeys = [...]string{
	"bzzr0",
	"bzzr1",
	"ipfs",
}

// ExtractContractMetadata extracts contract metadata from the provided bytecode. If no metadata could be located or
// decoded, nil is returned.
func ExtractContractMetadata(bytecode []byte) *ContractMetadata {
	for _, metadataHashPrefix := range metadataHashPrefixes {
		metadataOffset := bytes.LastIndex(bytecode, metadataHashPrefix)
		if metadataOffset == -1 {
			continue
		}

		var metadata ContractMetadata
		if err := cbor.Unmarshal(bytecode[metadataOffset:], &metadata); err != nil {
			continue
		}
		return &metadata
	}
	return nil
}

// BytecodeHash returns the bytecode hash stored in the metadata under any known key, or nil if none exists.
func (m ContractMetadata) BytecodeHash() []byte {
	for _, key := range bytecodeHashMetadataKeys {
		if value, ok := m[key]; ok {
			if hash, ok := value.([]byte); ok {
				return hash
			}
		}
	}
	return nil
}

// CompilerVersion returns the solc version recorded in the metadata as a dotted string, or an empty string if it
// is absent.
func (m ContractMetadata) CompilerVersion() string {
	value, ok := m["solc"]
	if !ok {
		return ""
	}

	// Release builds encode the version as three bytes, pre-release builds as a string.
	switch version := value.(type) {
	case []byte:
		if len(version) != 3 {
			return hex.EncodeToString(version)
		}
		return fmt.Sprintf("%d.%d.%d", version[0], version[1], version[2])
	case string:
		return version
	default:
		return ""
	}
}
