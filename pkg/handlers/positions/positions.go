package positions

import (
	"fmt"
	"net/http"
	"time"

	"github.com/meridianfi/txlifecycle/pkg/api"
	"github.com/meridianfi/txlifecycle/pkg/handlers/respond"
	"github.com/meridianfi/txlifecycle/pkg/mapping"
	"github.com/meridianfi/txlifecycle/pkg/storage"
)

// PositionsHandler holds the dependencies for position-related handlers.
type PositionsHandler struct {
	Positions storage.PositionStore

	// Now is swappable for tests.
	Now func() time.Time
}

// NewPositionsHandler creates a new PositionsHandler.
func NewPositionsHandler(positions storage.PositionStore) *PositionsHandler {
	return &PositionsHandler{Positions: positions, Now: time.Now}
}

// ListPositions handles retrieving all positions with live countdowns.
// The countdown is derived from absolute timestamps at request time; polling
// this endpoint every second gives a drift-free display.
func (h *PositionsHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")

	positions, err := h.Positions.ListPositions(r.Context(), owner)
	if err != nil {
		respond.Err(w, http.StatusInternalServerError, fmt.Sprintf("failed to list positions: %v", err), "")
		return
	}

	now := h.Now()
	apiPositions := make([]*api.Position, len(positions))
	for i := range positions {
		apiPositions[i] = mapping.ToApiPosition(&positions[i], now)
	}
	respond.JSON(w, http.StatusOK, apiPositions)
}

// GetPositionById handles retrieving one position with its live countdown.
func (h *PositionsHandler) GetPositionById(w http.ResponseWriter, r *http.Request, id string) {
	pos, err := h.Positions.GetPosition(r.Context(), id)
	if err != nil {
		respond.Err(w, http.StatusNotFound, fmt.Sprintf("position %s not found", id), "")
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiPosition(pos, h.Now()))
}
