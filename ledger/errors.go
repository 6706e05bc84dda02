/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The HTTP layer maps these onto status codes; nothing outside this
  package should invent its own error taxonomy.

ERROR CATEGORIES:
  1. Authorization errors - role not permitted for the operation
  2. Validation errors - rejected before any mutation
  3. Storage errors - surfaced as wrapped errors, operation aborted

USAGE:
  if errors.Is(err, ledger.ErrUnauthorized) {
      // 403
  }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnauthorized is returned when the caller's role does not permit
	// the attempted operation. No state change occurs.
	ErrUnauthorized = errors.New("operation not permitted for role")

	// ErrInvalidArgument is returned for malformed commands: non-positive
	// quantity, unknown ids, same-base transfer. Rejected before mutation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSameBaseTransfer is returned when a transfer names the same base
	// as both source and destination.
	ErrSameBaseTransfer = errors.New("transfer source and destination must differ")

	// ErrInsufficientStock is returned only when the gateway runs with
	// negative stock disallowed and the operation would drive a quantity
	// below zero. In the default configuration this never fires.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrBaseNotFound is returned when a command references a base that
	// does not exist in the catalog.
	ErrBaseNotFound = errors.New("base not found")

	// ErrAssetNotFound is returned when a command references an asset that
	// does not exist in the catalog.
	ErrAssetNotFound = errors.New("asset not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnauthorizedError reports which role attempted which operation.
type UnauthorizedError struct {
	Role      Role
	Operation Operation
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("role %q may not perform %s", e.Role, e.Operation)
}

func (e *UnauthorizedError) Unwrap() error { return ErrUnauthorized }

// InsufficientStockError reports the shortfall that blocked an operation.
// Only produced when negative stock is disallowed.
type InsufficientStockError struct {
	BaseID    BaseID
	AssetID   AssetID
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock at base %d for asset %d: available %d, requested %d",
		e.BaseID, e.AssetID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ValidationError reports a rejected command field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input,
// as opposed to a storage failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrSameBaseTransfer) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrBaseNotFound) ||
		errors.Is(err, ErrAssetNotFound)
}

// IsUnauthorized returns true if the error is a role rejection.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
