package lifecycle

import (
	"errors"
	"fmt"
)

// FailureReason distinguishes why an attempt ended, for display. The reasons
// are never collapsed into one generic error: a user declining to sign reads
// very differently from a revert.
type FailureReason string

const (
	ReasonUserRejected   FailureReason = "USER_REJECTED"
	ReasonNetworkFailure FailureReason = "NETWORK_FAILURE"
	ReasonReverted       FailureReason = "REVERTED"
	ReasonTimeout        FailureReason = "TIMEOUT"
)

// ValidationError is a local, pre-submission failure. It is always recoverable
// by correcting input and is surfaced inline at the field, never as a toast.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidationError reports whether err is a pre-submission validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// OperationError is a terminal failure of one submission attempt. The
// lifecycle resets to idle; the user must re-initiate.
type OperationError struct {
	Reason FailureReason
	Err    error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation failed (%s): %v", e.Reason, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the failure reason from err, defaulting to NETWORK_FAILURE.
func ReasonOf(err error) FailureReason {
	var oe *OperationError
	if errors.As(err, &oe) {
		return oe.Reason
	}
	return ReasonNetworkFailure
}

// ErrNoFeeEstimate is returned when submission is attempted without a current
// fee estimate and without the user acknowledging its absence.
var ErrNoFeeEstimate = errors.New("no current fee estimate; acknowledge to proceed without one")

// ErrSessionClosed is returned when the wallet session has been torn down.
var ErrSessionClosed = errors.New("wallet session is not active")
