/*
errors.go - Centralized error types for the reconciliation engine

PURPOSE:
  All error types in one place. Note the narrow role of errors here:
  almost everything that goes wrong during a run is a data-quality
  event and becomes an Anomaly, not an error. Errors are reserved for
  misuse of the engine (nil provider, empty input) and for geometry
  backend failures that the merger isolates per call.

SEE ALSO:
  - types.go: Anomaly, the non-fatal reporting channel
  - merger.go: Per-call isolation of geometry failures
*/
package recon

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoProvider is returned when the engine is run without a
	// geometry provider.
	ErrNoProvider = errors.New("geometry provider required")

	// ErrGeometryOperation wraps a failing geometry backend call.
	ErrGeometryOperation = errors.New("geometry operation failed")

	// ErrDuplicateFragmentID is returned when run input carries the
	// same fragment id twice.
	ErrDuplicateFragmentID = errors.New("duplicate fragment id")

	// ErrDuplicateParcel is returned when run input carries the same
	// parcel key twice.
	ErrDuplicateParcel = errors.New("duplicate parcel key")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// GeometryOperationError reports which operation failed against which
// fragment pairing. The merger records it and moves on.
type GeometryOperationError struct {
	Op       string
	Fragment FragmentID
	Other    FragmentID
	Err      error
}

func (e *GeometryOperationError) Error() string {
	if e.Other != 0 {
		return fmt.Sprintf("geometry %s failed for fragments %d/%d: %v", e.Op, e.Fragment, e.Other, e.Err)
	}
	return fmt.Sprintf("geometry %s failed for fragment %d: %v", e.Op, e.Fragment, e.Err)
}

func (e *GeometryOperationError) Unwrap() error {
	return ErrGeometryOperation
}
