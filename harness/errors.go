package harness

import "fmt"

// LookupError describes a request for a contract which is not among the compiled artifacts. It only concerns the
// caller which made the request: the cache remains usable.
type LookupError struct {
	// Name describes the logical contract name which was requested.
	Name string

	// QualifiedName describes the artifact name the request resolved to.
	QualifiedName string
}

// Error returns the error message string, implementing the `error` interface.
func (e *LookupError) Error() string {
	return fmt.Sprintf("contract '%s' was not found among the compiled artifacts (looked up '%s')", e.Name, e.QualifiedName)
}
