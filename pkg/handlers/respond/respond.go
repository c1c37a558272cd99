// Package respond centralizes JSON response writing and the mapping from
// lifecycle errors to HTTP statuses, so every handler surfaces the same
// behavior for the same failure.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/meridianfi/txlifecycle/pkg/api"
	"github.com/meridianfi/txlifecycle/pkg/lifecycle"
	"github.com/meridianfi/txlifecycle/pkg/mapping"
	"github.com/meridianfi/txlifecycle/pkg/storage"
)

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to write response", http.StatusInternalServerError)
	}
}

// Err writes a JSON error body.
func Err(w http.ResponseWriter, status int, msg, field string) {
	JSON(w, status, api.Error{Error: msg, Field: field})
}

// Result writes the consolidated outcome of one operation.
//
// Validation failures are 422 with the offending field: they are inline field
// feedback, never a generic error page. A terminal on-chain failure is still a
// well-formed result (the outcome carries the display message), so it is
// returned as 200 with the failure reason in the body. Only unexpected errors
// become 500s.
func Result(w http.ResponseWriter, out lifecycle.Outcome, err error) {
	if err == nil {
		JSON(w, http.StatusOK, mapping.ToApiResult(out))
		return
	}

	var ve *lifecycle.ValidationError
	switch {
	case errors.As(err, &ve):
		Err(w, http.StatusUnprocessableEntity, ve.Reason, ve.Field)
	case errors.Is(err, lifecycle.ErrNoFeeEstimate):
		Err(w, http.StatusConflict, err.Error(), "")
	case errors.Is(err, lifecycle.ErrSessionClosed):
		Err(w, http.StatusConflict, err.Error(), "")
	case errors.Is(err, storage.ErrNotFound):
		Err(w, http.StatusNotFound, err.Error(), "")
	case out.FailureReason != "":
		JSON(w, http.StatusOK, mapping.ToApiResult(out))
	default:
		Err(w, http.StatusInternalServerError, err.Error(), "")
	}
}
