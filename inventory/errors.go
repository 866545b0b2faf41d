/*
errors.go - Centralized error types for the inventory engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers classify with errors.Is; structured variants carry the offending
  field or the shortfall for display.

ERROR CATEGORIES:
  1. Validation errors - rejected before any store call
  2. Conflict errors   - duplicate names, insufficient stock, CAS exhaustion
  3. Collaborator errors - the external record store failed

SEE ALSO:
  - ledger.go: Uses these errors
  - sales.go: Uses these errors
  - api/handlers.go: Maps these to HTTP status codes
*/
package inventory

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned for non-positive prices/quantities, empty
	// names, and other inputs rejected before any store call.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicateName is returned when an item with the same name
	// (case-insensitive) already exists.
	ErrDuplicateName = errors.New("duplicate item name")

	// ErrInsufficientStock is returned when a sale or deduction exceeds the
	// current stock. Stock is left unchanged.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNotFound is returned when an operation references an id absent from
	// the current snapshot. The caller should re-fetch.
	ErrNotFound = errors.New("record not found")

	// ErrConcurrentModification is returned when the optimistic-concurrency
	// retry budget is exhausted. The caller must re-fetch and retry the whole
	// intent, not just the failed sub-step.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrStoreConflict is returned by a store when a compare-and-swap write
	// finds the record changed since it was read. The ledger retries on it.
	ErrStoreConflict = errors.New("stale read: record changed in store")

	// ErrCollaborator is returned when an external store call failed
	// (network, timeout, bad status). Writes are not retried automatically to
	// avoid duplicate submission.
	ErrCollaborator = errors.New("record store call failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// InsufficientStockError reports how short the stock is.
type InsufficientStockError struct {
	ItemName  string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.ItemName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if re-fetching and retrying the intent may succeed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrInsufficientStock)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func collaboratorErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrCollaborator, err)
}
