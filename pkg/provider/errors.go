package provider

import (
	"errors"
	"fmt"
)

// Code classifies a provider failure. The distinction matters for display:
// a user declining to sign is not a network incident.
type Code string

const (
	CodeUserRejected   Code = "USER_REJECTED"
	CodeNetworkFailure Code = "NETWORK_FAILURE"
	CodeTimeout        Code = "TIMEOUT"
)

// Error is a structured provider failure.
type Error struct {
	Code Code
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Op, e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err as a structured provider failure.
func NewError(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

// CodeOf extracts the failure code from err, defaulting to NETWORK_FAILURE
// for errors that did not originate in a provider.
func CodeOf(err error) Code {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return CodeNetworkFailure
}

// IsUserRejected reports whether err represents the user declining to sign.
func IsUserRejected(err error) bool {
	return CodeOf(err) == CodeUserRejected
}
