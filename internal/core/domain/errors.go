package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Authentication Errors.

	// ErrAuthRequired indicates the table service needs a token but none is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the table service rejected the token.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Formula Errors.

	// ErrInvalidAddress indicates malformed or out-of-bounds address text.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrSyntax indicates a formula failed the static syntax check.
	// It is stored on the cell and only reported when evaluation is attempted.
	ErrSyntax = errors.New("syntax error")

	// ErrCircularDependency indicates a formula reached itself, possibly
	// through cells of other tables.
	ErrCircularDependency = errors.New("circular dependency")

	// ErrUnsupportedExpression indicates a construct outside the formula grammar
	// or a function that is not on the allow-list.
	ErrUnsupportedExpression = errors.New("unsupported expression")

	// ErrEvaluation indicates a runtime failure inside an allowed function.
	// Every *EvaluationError also matches this sentinel.
	ErrEvaluation = errors.New("evaluation error")

	// ErrDepthExceeded indicates the dependency chain is deeper than the
	// configured evaluation budget.
	ErrDepthExceeded = errors.New("evaluation depth exceeded")

	// ErrDanglingReference indicates a reference to a cell that does not exist.
	// Only raised when strict references are enabled.
	ErrDanglingReference = errors.New("dangling reference")
)

// EvaluationError is the single error type reported for a failed formula cell.
// Kind keeps the underlying sentinel for programmatic inspection.
type EvaluationError struct {
	// TableID identifies the table owning the failing cell.
	TableID string

	// Address is the canonical address of the failing cell.
	Address string

	// Kind is one of the formula error sentinels.
	Kind error

	// Message describes the failure.
	Message string
}

// NewEvaluationError creates an EvaluationError for the cell at tableID!address.
func NewEvaluationError(tableID, address string, kind error, message string) *EvaluationError {
	if kind == nil {
		kind = ErrEvaluation
	}
	return &EvaluationError{
		TableID: tableID,
		Address: address,
		Kind:    kind,
		Message: message,
	}
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	return fmt.Sprintf("%s!%s: %s", e.TableID, e.Address, e.Message)
}

// Unwrap exposes the underlying kind to errors.Is and errors.As.
func (e *EvaluationError) Unwrap() error {
	return e.Kind
}

// Is reports true for ErrEvaluation so callers can match every formula failure.
func (e *EvaluationError) Is(target error) bool {
	return target == ErrEvaluation
}

// Key returns the table-qualified address of the failing cell.
func (e *EvaluationError) Key() string {
	return e.TableID + "!" + e.Address
}
