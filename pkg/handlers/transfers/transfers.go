package transfers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/meridianfi/txlifecycle/pkg/api"
	"github.com/meridianfi/txlifecycle/pkg/handlers/respond"
	"github.com/meridianfi/txlifecycle/pkg/lifecycle"
	"github.com/meridianfi/txlifecycle/pkg/mapping"
	"github.com/meridianfi/txlifecycle/pkg/storage"
)

// Controller is the slice of the lifecycle controller this handler drives.
type Controller interface {
	SendTransfer(ctx context.Context, rawAmount, to string, ackNoEstimate bool) (lifecycle.Outcome, error)
}

// TransfersHandler holds the dependencies for transfer-related handlers.
type TransfersHandler struct {
	Controller Controller
	Records    storage.RecordReader
}

// NewTransfersHandler creates a new TransfersHandler.
func NewTransfersHandler(controller Controller, records storage.RecordReader) *TransfersHandler {
	return &TransfersHandler{Controller: controller, Records: records}
}

// SendTransfer handles the logic for submitting a new transfer.
func (h *TransfersHandler) SendTransfer(w http.ResponseWriter, r *http.Request) {
	var newTransfer api.NewTransfer
	if err := json.NewDecoder(r.Body).Decode(&newTransfer); err != nil {
		respond.Err(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), "")
		return
	}

	outcome, err := h.Controller.SendTransfer(r.Context(), newTransfer.Amount, newTransfer.To, newTransfer.AcknowledgeNoFee)
	respond.Result(w, outcome, err)
}

// GetTransactionById handles retrieving a tracked transaction by its hash.
func (h *TransfersHandler) GetTransactionById(w http.ResponseWriter, r *http.Request, txID string) {
	rec, err := h.Records.GetRecord(r.Context(), txID)
	if err != nil {
		respond.Err(w, http.StatusNotFound, fmt.Sprintf("transaction %s not found", txID), "")
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiTransaction(rec))
}

// ListTransactions handles retrieving all locally-tracked transactions.
func (h *TransfersHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	records, err := h.Records.ListRecords(r.Context())
	if err != nil {
		respond.Err(w, http.StatusInternalServerError, fmt.Sprintf("failed to list transactions: %v", err), "")
		return
	}

	apiTxs := make([]*api.Transaction, len(records))
	for i := range records {
		apiTxs[i] = mapping.ToApiTransaction(&records[i])
	}
	respond.JSON(w, http.StatusOK, apiTxs)
}
