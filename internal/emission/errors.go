package emission

import "fmt"

// constError is an immutable error type for sentinel errors
type constError string

func (e constError) Error() string { return string(e) }

// Validation codes. A ValidationError unwraps to one of these
var (
	ErrInvalidUsername      = constError("invalid username")
	ErrInvalidVehicleType   = constError("invalid vehicle type")
	ErrInvalidFuelType      = constError("invalid fuel type")
	ErrInvalidNumericField  = constError("invalid numeric field")
	ErrInvalidMonth         = constError("invalid month")
	ErrInconsistentFuelData = constError("inconsistent fuel data")
)

// Internal invariant codes. These are only reachable when a record
// bypassed NewInputRecord
var (
	ErrUnknownFuelType = constError("unknown fuel type")
	ErrDivisionByZero  = constError("division by zero")
)

// ValidationError reports a user-supplied field that failed validation
type ValidationError struct {
	Code  error
	Field string
	Value string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("%s: %s %q", e.Code, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Code }

// InvariantError reports a programming-contract violation inside the
// formulas, distinct from user-facing validation failures
type InvariantError struct {
	Code   error
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("internal invariant violated: %s (%s)", e.Code, e.Detail)
}

func (e *InvariantError) Unwrap() error { return e.Code }

func invalid(code error, field, value, msg string) *ValidationError {
	return &ValidationError{Code: code, Field: field, Value: value, Msg: msg}
}
