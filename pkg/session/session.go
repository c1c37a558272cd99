package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/meridianfi/txlifecycle/pkg/provider"
	"github.com/shopspring/decimal"
)

// ErrClosed is returned when an operation is attempted on a torn-down session.
var ErrClosed = errors.New("wallet session is closed")

// Session is the explicitly-owned wallet session context: the connected
// account and its cached available balance. It is created on connect, passed
// to the lifecycle controller, and torn down on disconnect. Nothing reads
// wallet identity from ambient global state.
type Session struct {
	address  string
	balances provider.BalanceReader

	mu          sync.RWMutex
	available   decimal.Decimal
	refreshedAt time.Time
	closed      bool
}

// New creates a session for the connected account.
func New(address string, balances provider.BalanceReader) *Session {
	return &Session{address: address, balances: balances}
}

// Address returns the connected account's identifier.
func (s *Session) Address() string {
	return s.address
}

// AvailableBalance returns the cached spendable balance.
func (s *Session) AvailableBalance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.available
}

// RefreshBalance re-reads the spendable balance from the wallet read API.
func (s *Session) RefreshBalance(ctx context.Context) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	available, err := s.balances.AvailableBalance(ctx, s.address)
	if err != nil {
		return fmt.Errorf("failed to refresh balance: %w", err)
	}

	s.mu.Lock()
	s.available = available
	s.refreshedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Active reports whether the session is still connected.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.closed
}

// Close tears the session down on disconnect. Further refreshes fail; cached
// reads keep working so in-flight views can finish rendering.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
