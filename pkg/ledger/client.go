package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meridianfi/txlifecycle/pkg/models"
)

// RecordWriter defines the interface for persisting a confirmed operation's
// outcome into a backend record store. Both endpoints are idempotent on txId.
type RecordWriter interface {
	// WriteTransfer persists a confirmed transfer outcome.
	WriteTransfer(ctx context.Context, rec *models.TransactionRecord) error

	// WriteStakeSync links a stake position to its confirmed transaction.
	WriteStakeSync(ctx context.Context, stakeID, txID string) error
}

// transferPayload is the backend contract for POST /transfers.
type transferPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Amount  string `json:"amount"`
	TxID    string `json:"txId"`
	FeeUsed string `json:"feeUsed,omitempty"`
	Status  string `json:"status"`
}

// stakeSyncPayload is the backend contract for POST /stakes/sync.
type stakeSyncPayload struct {
	StakeID string `json:"stakeId"`
	TxID    string `json:"txId"`
}

// Client is a RecordWriter over one backend record-store endpoint.
type Client struct {
	// Name labels the endpoint in logs and metrics ("primary" or "legacy").
	Name       string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a record-store client for the given base URL.
func NewClient(name, baseURL string) *Client {
	return &Client{
		Name:       name,
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Make sure we conform to the interface
var _ RecordWriter = (*Client)(nil)

// WriteTransfer persists a confirmed transfer outcome to the record store.
func (c *Client) WriteTransfer(ctx context.Context, rec *models.TransactionRecord) error {
	payload := transferPayload{
		From:   rec.From,
		To:     rec.To,
		Amount: rec.Amount.String(),
		TxID:   rec.TxID,
		Status: "success",
	}
	if rec.FeeUsed != nil {
		payload.FeeUsed = rec.FeeUsed.String()
	}
	return c.post(ctx, "/transfers", payload)
}

// WriteStakeSync links a stake position to its confirmed transaction.
func (c *Client) WriteStakeSync(ctx context.Context, stakeID, txID string) error {
	return c.post(ctx, "/stakes/sync", stakeSyncPayload{StakeID: stakeID, TxID: txID})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s endpoint unreachable: %w", c.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s endpoint returned %d for %s: %s", c.Name, resp.StatusCode, path, detail)
	}
	return nil
}
