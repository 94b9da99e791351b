package bindings

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoContracts indicates the error loader was built before any contract was registered with it.
	ErrNoContracts = errors.New("error loader has no registered contracts")

	// ErrLoaderFinalized indicates the error loader was modified or built after it was already built.
	ErrLoaderFinalized = errors.New("error loader has already been built")
)

// GenerationError describes a failure to generate the binding for a contract.
type GenerationError struct {
	// ContractName describes the logical name of the contract whose binding failed to generate.
	ContractName string

	// Err describes the underlying failure.
	Err error
}

// NewGenerationError wraps the provided error as a GenerationError for the given contract. If the error already is a
// GenerationError, it is returned as is.
func NewGenerationError(contractName string, err error) *GenerationError {
	var generationErr *GenerationError
	if errors.As(err, &generationErr) {
		return generationErr
	}
	return &GenerationError{ContractName: contractName, Err: err}
}

// Error returns the error message string, implementing the `error` interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("could not generate binding for contract '%s': %v", e.ContractName, e.Err)
}

// Unwrap returns the underlying failure.
func (e *GenerationError) Unwrap() error {
	return e.Err
}
