package bindings

// contractTemplate renders the binding of a single contract.
const contractTemplate = `// Code generated by abiharness. DO NOT EDIT.
// Source: {{.LogicalName}}.json
{{- if .CompilerVersion}}
// Compiler: solc {{.CompilerVersion}}
{{- end}}
{{- if .BytecodeHash}}
// Bytecode hash: {{.BytecodeHash}}
{{- end}}

package {{.Package}}

import (
	"bytes"
	"errors"
	"math/big"
	"strings"

	"github.com/crytic/medusa-geth/accounts/abi"
	"github.com/crytic/medusa-geth/common"
)

// Reference imports to suppress errors if they are not otherwise used.
var (
	_ = bytes.Equal
	_ = errors.New
	_ = big.NewInt
	_ = strings.NewReader
	_ = abi.ConvertType
	_ = common.HexToAddress
)

// {{.AbiConstant}} is the input ABI used to generate the binding from.
const {{.AbiConstant}} = {{.RawAbi}}
{{if .Bin}}
// {{.BinConstant}} is the compiled bytecode used for deploying new contracts.
const {{.BinConstant}} = "{{.Bin}}"
{{end}}
{{- range .Structs}}
// {{.Name}} is an auto generated low-level Go binding around a user-defined struct.
type {{.Name}} struct {
{{- range .Fields}}
	{{.Name}} {{.Type}}
{{- end}}
}
{{end}}
// {{.Type}} is a binding around the {{.LogicalName}} contract ABI.
type {{.Type}} struct {
	abi abi.ABI
}

// {{.NewFunc}} parses the contract ABI and creates a new {{.Type}} binding.
func {{.NewFunc}}() (*{{.Type}}, error) {
	parsed, err := abi.JSON(strings.NewReader({{.AbiConstant}}))
	if err != nil {
		return nil, err
	}
	return &{{.Type}}{abi: parsed}, nil
}

// ABI returns the parsed contract ABI.
func (c *{{.Type}}) ABI() abi.ABI {
	return c.abi
}

// PackConstructor packs the constructor arguments of the {{.LogicalName}} contract.
func (c *{{.Type}}) PackConstructor({{params .Constructor.Inputs}}) ([]byte, error) {
	return c.abi.Pack(""{{args .Constructor.Inputs}})
}
{{if .Bin}}
// DeployData returns the creation bytecode of the {{.LogicalName}} contract followed by the packed constructor
// arguments.
func (c *{{.Type}}) DeployData({{params .Constructor.Inputs}}) ([]byte, error) {
	packed, err := c.PackConstructor({{names .Constructor.Inputs}})
	if err != nil {
		return nil, err
	}
	return append(common.FromHex({{.BinConstant}}), packed...), nil
}
{{end}}
{{- range .Methods}}
{{- if .OutputStruct}}
// {{.OutputStruct}} holds the return values of the {{.Name}} method.
type {{.OutputStruct}} struct {
{{- range .Outputs}}
	{{.Name}} {{.Type}}
{{- end}}
}
{{end}}
// Pack{{.GoName}} packs the parameters for the {{.Name}} method.
//
// Solidity: {{.Signature}}
func (c *{{$.Type}}) Pack{{.GoName}}({{params .Inputs}}) ([]byte, error) {
	return c.abi.Pack("{{.Name}}"{{args .Inputs}})
}
{{if .Outputs}}
// Unpack{{.GoName}} unpacks the return values of the {{.Name}} method.
//
// Solidity: {{.Signature}}
func (c *{{$.Type}}) Unpack{{.GoName}}(data []byte) ({{.ResultType}}, error) {
	out, err := c.abi.Unpack("{{.Name}}", data)
	if err != nil {
		return {{.ResultZero}}, err
	}
{{- if .OutputStruct}}
	result := new({{.OutputStruct}})
{{- range $i, $output := .Outputs}}
	result.{{$output.Name}} = *abi.ConvertType(out[{{$i}}], new({{$output.Type}})).(*{{$output.Type}})
{{- end}}
	return result, nil
{{- else}}
{{- with index .Outputs 0}}
	return *abi.ConvertType(out[0], new({{.Type}})).(*{{.Type}}), nil
{{- end}}
{{- end}}
}
{{end}}
{{- end}}
{{- range .Events}}
// {{.StructName}} represents a {{.Name}} event raised by the {{$.LogicalName}} contract.
type {{.StructName}} struct {
{{- range .Fields}}
	{{.Name}} {{.Type}}
{{- end}}
}

// Unpack{{.GoName}}Event unpacks a {{.Name}} event from the given log topics and data.
//
// Solidity: {{.Signature}}
func (c *{{$.Type}}) Unpack{{.GoName}}Event(topics []common.Hash, data []byte) (*{{.StructName}}, error) {
	event := c.abi.Events["{{.Name}}"]
{{- if not .Anonymous}}
	if len(topics) == 0 || topics[0] != event.ID {
		return nil, errors.New("event signature mismatch")
	}
	topics = topics[1:]
{{- end}}
	out := new({{.StructName}})
{{- if .HasData}}
	if err := c.abi.UnpackIntoInterface(out, "{{.Name}}", data); err != nil {
		return nil, err
	}
{{- end}}
{{- if .HasIndexed}}
	var indexed abi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if err := abi.ParseTopics(out, indexed, topics); err != nil {
		return nil, err
	}
{{- else}}
	_ = topics
{{- end}}
	return out, nil
}
{{end}}
{{- range .Errors}}
// {{.StructName}} represents a {{.Name}} error raised by the {{$.LogicalName}} contract.
type {{.StructName}} struct {
{{- range .Fields}}
	{{.Name}} {{.Type}}
{{- end}}
}

// Unpack{{.GoName}}Error unpacks a {{.Name}} error from the given revert data.
//
// Solidity: {{.Signature}}
func (c *{{$.Type}}) Unpack{{.GoName}}Error(data []byte) (*{{.StructName}}, error) {
	abiError := c.abi.Errors["{{.Name}}"]
	if len(data) < 4 || !bytes.Equal(data[:4], abiError.ID[:4]) {
		return nil, errors.New("error selector mismatch")
	}
	out := new({{.StructName}})
{{- if .Fields}}
	values, err := abiError.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	if err := abiError.Inputs.Copy(out, values); err != nil {
		return nil, err
	}
{{- end}}
	return out, nil
}
{{end}}
// DecodeRevert decodes revert data raised by the {{.LogicalName}} contract, or by any other contract known to the
// {{.LoaderType}}.
func (c *{{.Type}}) DecodeRevert(data []byte) (*{{.DecodedType}}, error) {
	return {{.LoaderType}}{}.Decode(data)
}
`

// errorLoaderTemplate renders the package error loader, which references the ABI of every bound contract.
const errorLoaderTemplate = `// Code generated by abiharness. DO NOT EDIT.

package {{.Package}}

import (
	"errors"
	"fmt"
	"strings"

	"github.com/crytic/medusa-geth/accounts/abi"
)

// {{.DecodedType}} describes revert data decoded by the {{.LoaderType}}.
type {{.DecodedType}} struct {
	// Contract is the name of the contract declaring the error. It is empty for builtin errors.
	Contract string

	// Name is the name of the error.
	Name string

	// Args holds the decoded error arguments.
	Args []any
}

// {{.ContractErrorType}} describes a custom error declared by a contract known to the {{.LoaderType}}.
type {{.ContractErrorType}} struct {
	Contract string
	Error    abi.Error
}

// {{.LoaderType}} resolves revert data raised by any contract bound in this package.
type {{.LoaderType}} struct{}

// {{.Prefix}}Contracts lists the ABI of every contract known to the {{.LoaderType}}, ordered by name.
var {{.Prefix}}Contracts = []struct {
	name string
	abi  string
}{
{{- range .Contracts}}
	{"{{.Name}}", {{.AbiConstant}}},
{{- end}}
}

var (
	{{.Prefix}}RevertSelector = [4]byte{0x08, 0xc3, 0x79, 0xa0}
	{{.Prefix}}PanicSelector  = [4]byte{0x4e, 0x48, 0x7b, 0x71}
)

// Contracts returns the names of every contract known to the loader.
func ({{.LoaderType}}) Contracts() []string {
	names := make([]string, 0, len({{.Prefix}}Contracts))
	for _, contract := range {{.Prefix}}Contracts {
		names = append(names, contract.name)
	}
	return names
}

// Errors returns every custom error declared by the loader's contracts, keyed by selector.
func ({{.LoaderType}}) Errors() (map[[4]byte]{{.ContractErrorType}}, error) {
	errs := make(map[[4]byte]{{.ContractErrorType}})
	for _, contract := range {{.Prefix}}Contracts {
		parsed, err := abi.JSON(strings.NewReader(contract.abi))
		if err != nil {
			return nil, fmt.Errorf("could not parse the ABI of %s: %w", contract.name, err)
		}
		for _, abiError := range parsed.Errors {
			var selector [4]byte
			copy(selector[:], abiError.ID[:4])
			errs[selector] = {{.ContractErrorType}}{Contract: contract.name, Error: abiError}
		}
	}
	return errs, nil
}

// Decode resolves revert data into the builtin Error(string) or Panic(uint256) errors, or into a custom error
// declared by any of the loader's contracts.
func (l {{.LoaderType}}) Decode(data []byte) (*{{.DecodedType}}, error) {
	if len(data) < 4 {
		return nil, errors.New("revert data is shorter than an error selector")
	}
	var selector [4]byte
	copy(selector[:], data[:4])

	switch selector {
	case {{.Prefix}}RevertSelector:
		return {{.Prefix}}DecodeBuiltin("Error", "string", data[4:])
	case {{.Prefix}}PanicSelector:
		return {{.Prefix}}DecodeBuiltin("Panic", "uint256", data[4:])
	}

	errs, err := l.Errors()
	if err != nil {
		return nil, err
	}
	contractError, ok := errs[selector]
	if !ok {
		return nil, fmt.Errorf("unknown error selector 0x%x", selector[:])
	}
	args, err := contractError.Error.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	return &{{.DecodedType}}{Contract: contractError.Contract, Name: contractError.Error.Name, Args: args}, nil
}

// {{.Prefix}}DecodeBuiltin decodes the single argument of a builtin error.
func {{.Prefix}}DecodeBuiltin(name string, kind string, data []byte) (*{{.DecodedType}}, error) {
	typ, err := abi.NewType(kind, "", nil)
	if err != nil {
		return nil, err
	}
	args, err := abi.Arguments{abi.Argument{Type: typ}}.Unpack(data)
	if err != nil {
		return nil, err
	}
	return &{{.DecodedType}}{Name: name, Args: args}, nil
}
`
