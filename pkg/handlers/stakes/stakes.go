package stakes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/meridianfi/txlifecycle/pkg/api"
	"github.com/meridianfi/txlifecycle/pkg/handlers/respond"
	"github.com/meridianfi/txlifecycle/pkg/lifecycle"
)

// Controller is the slice of the lifecycle controller this handler drives.
type Controller interface {
	Stake(ctx context.Context, rawAmount string, lockDays int, ackNoEstimate bool) (lifecycle.Outcome, error)
	Unstake(ctx context.Context, positionID string, ackNoEstimate bool) (lifecycle.Outcome, error)
	Refresh(ctx context.Context) (synced, failed int, err error)
}

// StakesHandler holds the dependencies for staking-related handlers.
type StakesHandler struct {
	Controller Controller
}

// NewStakesHandler creates a new StakesHandler.
func NewStakesHandler(controller Controller) *StakesHandler {
	return &StakesHandler{Controller: controller}
}

// Stake handles the logic for submitting a new stake.
func (h *StakesHandler) Stake(w http.ResponseWriter, r *http.Request) {
	var newStake api.NewStake
	if err := json.NewDecoder(r.Body).Decode(&newStake); err != nil {
		respond.Err(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), "")
		return
	}

	outcome, err := h.Controller.Stake(r.Context(), newStake.Amount, newStake.LockDays, newStake.AcknowledgeNoFee)
	respond.Result(w, outcome, err)
}

// Unstake handles withdrawing an unlocked position.
func (h *StakesHandler) Unstake(w http.ResponseWriter, r *http.Request, positionID string) {
	var body api.Unstake
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respond.Err(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), "")
			return
		}
	}

	outcome, err := h.Controller.Unstake(r.Context(), positionID, body.AcknowledgeNoFee)
	respond.Result(w, outcome, err)
}

// Refresh re-attempts reconciliation for confirmed-but-unsynced records.
func (h *StakesHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	synced, failed, err := h.Controller.Refresh(r.Context())
	if err != nil {
		respond.Err(w, http.StatusInternalServerError, fmt.Sprintf("resync failed: %v", err), "")
		return
	}
	respond.JSON(w, http.StatusOK, api.ResyncResult{Synced: synced, Failed: failed})
}
