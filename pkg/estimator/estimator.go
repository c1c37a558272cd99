package estimator

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/meridianfi/txlifecycle/pkg/metrics"
	"github.com/meridianfi/txlifecycle/pkg/models"
	"github.com/meridianfi/txlifecycle/pkg/provider"
)

const (
	// DefaultDebounce is the quiet period after the last input change before
	// an estimate is actually requested.
	DefaultDebounce = 400 * time.Millisecond
)

// FallbackGasPrice is used when the provider cannot supply a quote. Estimates
// priced with it carry the Fallback flag; they are estimates, not guarantees.
var FallbackGasPrice = big.NewInt(20_000_000_000) // 20 gwei

// EstimationError is a soft failure: it clears the displayed estimate but does
// not block submission. Fee volatility is expected; the caller shows a warning.
type EstimationError struct {
	Err error
}

func (e *EstimationError) Error() string {
	return fmt.Sprintf("fee estimation failed: %v", e.Err)
}

func (e *EstimationError) Unwrap() error {
	return e.Err
}

// Estimator computes debounced fee estimates for a form's current inputs.
// A new request supersedes an in-flight one: results are applied last-write-wins
// using a monotonically increasing token, so a stale response can never
// overwrite a newer one.
type Estimator struct {
	Provider provider.WalletProvider
	Debounce time.Duration
	Logger   *slog.Logger

	// OnResult, when set, is invoked with every applied result: a fresh
	// estimate, or nil with a soft error when estimation failed.
	OnResult func(est *models.FeeEstimate, err error)

	mu     sync.Mutex
	timer  *time.Timer
	token  uint64
	latest *models.FeeEstimate
}

// New creates an Estimator with the default debounce.
func New(p provider.WalletProvider, logger *slog.Logger) *Estimator {
	return &Estimator{
		Provider: p,
		Debounce: DefaultDebounce,
		Logger:   logger,
	}
}

// Latest returns the most recently applied estimate, or nil if none is current.
func (e *Estimator) Latest() *models.FeeEstimate {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.latest
}

// Invalidate clears the current estimate and supersedes any in-flight request.
// Called when the form inputs become invalid.
func (e *Estimator) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.token++
	e.latest = nil
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

// Schedule queues an estimate for req after the debounce quiet period. Any
// previously queued estimate is cancelled; any in-flight one is superseded.
func (e *Estimator) Schedule(ctx context.Context, req models.TransferRequest) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.token++
	token := e.token
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.Debounce, func() {
		est, err := e.compute(ctx, req)
		est, applied := e.apply(token, req, est, err)
		if applied && e.OnResult != nil {
			e.OnResult(est, err)
		}
	})
}

// EstimateNow computes an estimate immediately, bypassing the debounce. Used
// at submission time when no current estimate exists.
func (e *Estimator) EstimateNow(ctx context.Context, req models.TransferRequest) (*models.FeeEstimate, error) {
	e.mu.Lock()
	e.token++
	token := e.token
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.mu.Unlock()

	est, err := e.compute(ctx, req)
	est, _ = e.apply(token, req, est, err)
	if err != nil {
		return nil, err
	}
	return est, nil
}

// apply installs a result if its token is still current. A stale result is
// dropped on the floor: it must never be processed against a newer request.
func (e *Estimator) apply(token uint64, req models.TransferRequest, est *models.FeeEstimate, err error) (*models.FeeEstimate, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if token != e.token {
		metrics.FeeEstimates.WithLabelValues(metrics.EstimateStale).Inc()
		e.Logger.Debug("discarding stale fee estimate", "token", token, "current", e.token)
		return nil, false
	}

	if err != nil {
		metrics.FeeEstimates.WithLabelValues(metrics.EstimateError).Inc()
		e.Logger.Warn("fee estimation failed", "error", err, "recipient", req.To)
		e.latest = nil
		return nil, true
	}

	est.Token = token
	est.Amount = req.Amount
	est.Recipient = req.To
	e.latest = est
	if est.Fallback {
		metrics.FeeEstimates.WithLabelValues(metrics.EstimateFallback).Inc()
	} else {
		metrics.FeeEstimates.WithLabelValues(metrics.EstimateOK).Inc()
	}
	return est, true
}

// compute performs the provider round-trips and prices the operation.
func (e *Estimator) compute(ctx context.Context, req models.TransferRequest) (*models.FeeEstimate, error) {
	gasLimit, err := e.Provider.EstimateOperationCost(ctx, req)
	if err != nil {
		return nil, &EstimationError{Err: err}
	}

	fallback := false
	gasPrice, err := e.Provider.GetFeeQuote(ctx)
	if err != nil || gasPrice == nil || gasPrice.Sign() == 0 {
		gasPrice = new(big.Int).Set(FallbackGasPrice)
		fallback = true
	}

	total := new(big.Int).Mul(gasPrice, new(big.Int).SetUint64(gasLimit))
	return &models.FeeEstimate{
		GasPrice:  gasPrice,
		GasLimit:  gasLimit,
		TotalCost: total,
		Formatted: models.FormatBaseUnits(total),
		Fallback:  fallback,
	}, nil
}
