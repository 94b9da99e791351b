package bindings

import (
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/crytic/abiharness/utils"
	"golang.org/x/exp/slices"
)

// errorLoaderSuffix is appended to the loader scope to form the loader type name.
const errorLoaderSuffix = "ErrorLoader"

// loaderPhase describes the phase of an ErrorLoaderBuilder.
type loaderPhase int

const (
	// loaderAccumulating indicates contracts may still be registered.
	loaderAccumulating loaderPhase = iota
	// loaderFinalized indicates the loader was built and no longer accepts contracts.
	loaderFinalized
)

// ErrorLoaderBuilder accumulates the generated contract bindings of one package and, once every binding is
// registered, generates the package error loader which references all of them.
type ErrorLoaderBuilder struct {
	// symbols describes the identifiers the generated loader declares.
	symbols loaderSymbols

	// outputRoot describes the root directory generated sources are written beneath.
	outputRoot string

	// contracts describes the registered contract bindings.
	contracts []*GeneratedSourceUnit

	// phase describes whether the builder is still accumulating.
	phase loaderPhase

	// lock guards contracts and phase.
	lock sync.Mutex
}

// loaderContract describes a contract entry rendered in the error loader.
type loaderContract struct {
	Name        string
	AbiConstant string
}

// loaderModel describes everything the error loader template renders.
type loaderModel struct {
	Package           string
	Prefix            string
	LoaderType        string
	DecodedType       string
	ContractErrorType string
	Contracts         []loaderContract
}

// NewErrorLoaderBuilder creates a builder for the error loader of the given scope. The loader is declared in the
// package with the given import path and written beneath the output root.
func NewErrorLoaderBuilder(scope string, packagePath string, outputRoot string) *ErrorLoaderBuilder {
	return &ErrorLoaderBuilder{
		symbols:    newLoaderSymbols(scope, packagePath),
		outputRoot: outputRoot,
		contracts:  make([]*GeneratedSourceUnit, 0),
		phase:      loaderAccumulating,
	}
}

// CanonicalName returns the fully qualified name of the loader, "<packagePath>.<Scope>ErrorLoader".
func (b *ErrorLoaderBuilder) CanonicalName() string {
	return b.symbols.PackagePath + "." + b.symbols.LoaderType
}

// LoaderType returns the name of the loader type.
func (b *ErrorLoaderBuilder) LoaderType() string {
	return b.symbols.LoaderType
}

// OutputPath returns the location the loader is written to: the canonical name as a path beneath the output root.
func (b *ErrorLoaderBuilder) OutputPath() string {
	return filepath.Join(b.outputRoot, filepath.FromSlash(path.Join(b.symbols.PackagePath, b.symbols.LoaderType))+".go")
}

// AddContract registers a generated contract binding. It is safe for concurrent use, and fails with
// ErrLoaderFinalized once the loader was built.
func (b *ErrorLoaderBuilder) AddContract(unit *GeneratedSourceUnit) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.phase == loaderFinalized {
		return ErrLoaderFinalized
	}
	b.contracts = append(b.contracts, unit)
	return nil
}

// ContractCount returns the amount of registered contract bindings.
func (b *ErrorLoaderBuilder) ContractCount() int {
	b.lock.Lock()
	defer b.lock.Unlock()
	return len(b.contracts)
}

// Build generates the error loader over every registered contract and writes it to OutputPath. Contracts are
// rendered in name order, so the output does not depend on registration order. Build moves the builder to its final
// phase: it fails with ErrNoContracts if nothing was registered, and with ErrLoaderFinalized if called again.
func (b *ErrorLoaderBuilder) Build() (*GeneratedSourceUnit, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.phase == loaderFinalized {
		return nil, ErrLoaderFinalized
	}
	if len(b.contracts) == 0 {
		return nil, ErrNoContracts
	}

	// Snapshot the registered contracts in name order
	contracts := make([]loaderContract, 0, len(b.contracts))
	for _, unit := range b.contracts {
		contracts = append(contracts, loaderContract{Name: unit.Name, AbiConstant: abiConstantName(ContractIdentifier(unit.Name))})
	}
	slices.SortStableFunc(contracts, func(x, y loaderContract) int {
		return strings.Compare(x.Name, y.Name)
	})

	model := loaderModel{
		Package:           PackageName(b.symbols.PackagePath),
		Prefix:            decapitalize(b.symbols.LoaderType),
		LoaderType:        b.symbols.LoaderType,
		DecodedType:       b.symbols.DecodedType,
		ContractErrorType: memberName(b.symbols.LoaderType, "ContractError"),
		Contracts:         contracts,
	}
	source, err := render(errorLoaderTmpl, model)
	if err != nil {
		return nil, NewGenerationError(b.symbols.LoaderType, err)
	}

	unit := &GeneratedSourceUnit{
		Name:        b.symbols.LoaderType,
		PackagePath: b.symbols.PackagePath,
		Source:      source,
		Path:        b.OutputPath(),
	}
	if err = utils.WriteFile(unit.Path, []byte(source)); err != nil {
		return nil, err
	}

	b.phase = loaderFinalized
	return unit, nil
}
