package descriptions

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrRootNotFound indicates that the directory to scan for descriptions does not exist.
var ErrRootNotFound = errors.New("description root directory not found")

// InvalidDescriptionError describes a scanned file which could not be read as a contract ABI description.
type InvalidDescriptionError struct {
	// FileName describes the name of the offending file.
	FileName string

	// Path describes the full path of the offending file.
	Path string

	// Err describes the underlying reader error, if the reader produced one. It is nil when no reader recognized
	// the file.
	Err error
}

// NewInvalidDescriptionError creates an InvalidDescriptionError for the given description file.
func NewInvalidDescriptionError(file DescriptionFile, err error) *InvalidDescriptionError {
	return &InvalidDescriptionError{
		FileName: fmt.Sprintf("%s%s", file.Name, DescriptionFileExtension),
		Path:     file.Path,
		Err:      err,
	}
}

// Error returns the error message string, implementing the `error` interface.
func (e *InvalidDescriptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid ABI description '%s': %v", e.FileName, e.Err)
	}
	return fmt.Sprintf("invalid ABI description '%s'", e.FileName)
}

// Unwrap returns the underlying reader error.
func (e *InvalidDescriptionError) Unwrap() error {
	return e.Err
}
