package bindings

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/crytic/abiharness/descriptions"
	"github.com/crytic/medusa-geth/accounts/abi"
	"golang.org/x/exp/slices"
)

// boundField describes a named, typed Go struct field or parameter.
type boundField struct {
	Name string
	Type string
}

// boundStruct describes a Go struct generated for an ABI tuple.
type boundStruct struct {
	Name   string
	Fields []boundField
}

// boundMethod describes a contract method (or the constructor) bound to Go.
type boundMethod struct {
	Name         string
	GoName       string
	Signature    string
	Inputs       []boundField
	Outputs      []boundField
	OutputStruct string
}

// ResultType returns the Go type returned by the method's unpack function.
func (m boundMethod) ResultType() string {
	if m.OutputStruct != "" {
		return "*" + m.OutputStruct
	}
	return m.Outputs[0].Type
}

// ResultZero returns the zero value expression of the method's result type.
func (m boundMethod) ResultZero() string {
	if m.OutputStruct != "" {
		return "nil"
	}
	return fmt.Sprintf("*new(%s)", m.Outputs[0].Type)
}

// boundEvent describes a contract event bound to Go.
type boundEvent struct {
	Name       string
	GoName     string
	StructName string
	Signature  string
	Anonymous  bool
	HasData    bool
	HasIndexed bool
	Fields     []boundField
}

// boundError describes a custom contract error bound to Go.
type boundError struct {
	Name       string
	GoName     string
	StructName string
	Signature  string
	Fields     []boundField
}

// boundContract describes everything the contract template renders.
type boundContract struct {
	Package         string
	Type            string
	NewFunc         string
	AbiConstant     string
	BinConstant     string
	LogicalName     string
	RawAbi          string
	Bin             string
	CompilerVersion string
	BytecodeHash    string
	Constructor     boundMethod
	Methods         []boundMethod
	Events          []boundEvent
	Errors          []boundError
	Structs         []boundStruct
	LoaderType      string
	DecodedType     string
}

// binder converts an ABI model into a boundContract. Every package-level symbol other than the contract type is a
// member of the contract type, and member names are tracked so they stay unique.
type binder struct {
	contractType string
	typeNames    nameSet
	structs      map[string]*boundStruct
}

// bindContract builds the template model for a contract.
func bindContract(contractName string, packagePath string, model *descriptions.AbiModel, loader loaderSymbols) (*boundContract, error) {
	b := &binder{
		contractType: ContractIdentifier(contractName),
		typeNames:    make(nameSet),
		structs:      make(map[string]*boundStruct),
	}

	contract := &boundContract{
		Package:     PackageName(packagePath),
		Type:        b.contractType,
		NewFunc:     b.typeNames.reserve(memberName(b.contractType, "New")),
		AbiConstant: b.typeNames.reserve(abiConstantName(b.contractType)),
		BinConstant: b.typeNames.reserve(memberName(b.contractType, "Bin")),
		LogicalName: contractName,
		RawAbi:      strconv.Quote(string(model.RawAbi)),
		LoaderType:  loader.LoaderType,
		DecodedType: loader.DecodedType,
	}
	if len(model.Bytecode) > 0 {
		contract.Bin = "0x" + hex.EncodeToString(model.Bytecode)
	}
	if model.Metadata != nil {
		contract.CompilerVersion = model.Metadata.CompilerVersion()
		if hash := model.Metadata.BytecodeHash(); hash != nil {
			contract.BytecodeHash = hex.EncodeToString(hash)
		}
	}

	// Methods are bound before events and errors so that tuple structs claim their names first.
	var err error
	contract.Constructor, err = b.bindMethod("", model.Abi.Constructor)
	if err != nil {
		return nil, err
	}
	for _, name := range sortedKeys(model.Abi.Methods) {
		method, err := b.bindMethod(name, model.Abi.Methods[name])
		if err != nil {
			return nil, err
		}
		contract.Methods = append(contract.Methods, method)
	}
	for _, name := range sortedKeys(model.Abi.Events) {
		event, err := b.bindEvent(name, model.Abi.Events[name])
		if err != nil {
			return nil, err
		}
		contract.Events = append(contract.Events, event)
	}
	for _, name := range sortedKeys(model.Abi.Errors) {
		abiError, err := b.bindError(name, model.Abi.Errors[name])
		if err != nil {
			return nil, err
		}
		contract.Errors = append(contract.Errors, abiError)
	}

	// Output structs are named last, once every user-defined struct has claimed its name.
	for i := range contract.Methods {
		if len(contract.Methods[i].Outputs) > 1 {
			contract.Methods[i].OutputStruct = b.typeNames.reserve(memberName(b.contractType, contract.Methods[i].GoName+"Output"))
		}
	}

	for _, bound := range b.structs {
		contract.Structs = append(contract.Structs, *bound)
	}
	slices.SortFunc(contract.Structs, func(a, b boundStruct) int {
		return strings.Compare(a.Name, b.Name)
	})
	return contract, nil
}

// bindMethod binds a method. Methods are keyed by their unique ABI name, which disambiguates overloads.
func (b *binder) bindMethod(name string, method abi.Method) (boundMethod, error) {
	bound := boundMethod{
		Name:      name,
		GoName:    exportedName(name, "Method"),
		Signature: method.String(),
	}

	// Inputs become parameters
	paramNames := parameterNames(method.Inputs)
	for i, input := range method.Inputs {
		goType, err := b.goType(input.Type)
		if err != nil {
			return bound, err
		}
		bound.Inputs = append(bound.Inputs, boundField{Name: paramNames[i], Type: goType})
	}

	// Outputs become fields of the result struct when there is more than one
	fieldNames := make(nameSet)
	for i, output := range method.Outputs {
		goType, err := b.goType(output.Type)
		if err != nil {
			return bound, err
		}
		fieldName := fieldNames.reserve(exportedName(output.Name, fmt.Sprintf("Arg%d", i)))
		bound.Outputs = append(bound.Outputs, boundField{Name: fieldName, Type: goType})
	}
	return bound, nil
}

// bindEvent binds an event. Indexed arguments of dynamic types are only available as their topic hash.
func (b *binder) bindEvent(name string, event abi.Event) (boundEvent, error) {
	bound := boundEvent{
		Name:      name,
		GoName:    exportedName(name, "Event"),
		Signature: event.String(),
		Anonymous: event.Anonymous,
	}

	fieldNames := make(nameSet)
	for i, input := range event.Inputs {
		goType, err := b.goType(input.Type)
		if err != nil {
			return bound, err
		}
		if input.Indexed {
			bound.HasIndexed = true
			if isDynamicTopic(input.Type) {
				goType = "common.Hash"
			}
		} else {
			bound.HasData = true
		}
		fieldName := fieldNames.reserve(exportedName(input.Name, fmt.Sprintf("Arg%d", i)))
		bound.Fields = append(bound.Fields, boundField{Name: fieldName, Type: goType})
	}
	bound.StructName = b.typeNames.reserve(memberName(b.contractType, bound.GoName))
	return bound, nil
}

// bindError binds a custom error.
func (b *binder) bindError(name string, abiError abi.Error) (boundError, error) {
	bound := boundError{
		Name:      name,
		GoName:    exportedName(name, "Error"),
		Signature: abiError.String(),
	}

	fieldNames := make(nameSet)
	for i, input := range abiError.Inputs {
		goType, err := b.goType(input.Type)
		if err != nil {
			return bound, err
		}
		fieldName := fieldNames.reserve(exportedName(input.Name, fmt.Sprintf("Arg%d", i)))
		bound.Fields = append(bound.Fields, boundField{Name: fieldName, Type: goType})
	}
	bound.StructName = b.typeNames.reserve(memberName(b.contractType, bound.GoName))
	return bound, nil
}

// goType returns the Go type the ABI decoder produces for the given ABI type, generating tuple structs as needed.
func (b *binder) goType(t abi.Type) (string, error) {
	switch t.T {
	case abi.IntTy, abi.UintTy:
		prefix := "int"
		if t.T == abi.UintTy {
			prefix = "uint"
		}
		switch t.Size {
		case 8, 16, 32, 64:
			return fmt.Sprintf("%s%d", prefix, t.Size), nil
		}
		return "*big.Int", nil
	case abi.BoolTy:
		return "bool", nil
	case abi.StringTy:
		return "string", nil
	case abi.AddressTy:
		return "common.Address", nil
	case abi.HashTy:
		return "common.Hash", nil
	case abi.BytesTy:
		return "[]byte", nil
	case abi.FixedBytesTy:
		return fmt.Sprintf("[%d]byte", t.Size), nil
	case abi.FunctionTy:
		return "[24]byte", nil
	case abi.SliceTy:
		elem, err := b.goType(*t.Elem)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case abi.ArrayTy:
		elem, err := b.goType(*t.Elem)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%d]%s", t.Size, elem), nil
	case abi.TupleTy:
		return b.bindStruct(t)
	default:
		return "", fmt.Errorf("unsupported ABI type '%s'", t.String())
	}
}

// bindStruct returns the name of the struct generated for a tuple type. Tuples are keyed by their declared struct
// name, or by their canonical signature when the ABI carries no internal type information.
func (b *binder) bindStruct(t abi.Type) (string, error) {
	key := t.TupleRawName
	if key == "" {
		key = t.String()
	}
	if existing, ok := b.structs[key]; ok {
		return existing.Name, nil
	}

	// Solidity qualifies struct names with their declaring contract, which is dropped when it is this contract.
	name := "Tuple"
	if t.TupleRawName != "" {
		name = exportedName(t.TupleRawName, "Tuple")
		if local, ok := strings.CutPrefix(name, b.contractType); ok && local != "" && unicode.IsUpper([]rune(local)[0]) {
			name = local
		}
	}
	bound := &boundStruct{Name: b.typeNames.reserve(memberName(b.contractType, name))}
	b.structs[key] = bound

	for i, elem := range t.TupleElems {
		goType, err := b.goType(*elem)
		if err != nil {
			return "", err
		}
		bound.Fields = append(bound.Fields, boundField{Name: abi.ToCamelCase(t.TupleRawNames[i]), Type: goType})
	}
	return bound.Name, nil
}

// isDynamicTopic reports whether an indexed argument of the given type is stored as a hash in its log topic.
func isDynamicTopic(t abi.Type) bool {
	switch t.T {
	case abi.StringTy, abi.BytesTy, abi.SliceTy, abi.ArrayTy, abi.TupleTy:
		return true
	}
	return false
}

// sortedKeys returns the keys of a string-keyed map in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
