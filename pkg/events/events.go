package events

import (
	"context"
	"sync"
	"time"

	"github.com/meridianfi/txlifecycle/pkg/models"
)

// StatusEvent announces one state transition of a tracked operation.
type StatusEvent struct {
	TxID   string                   `json:"tx_id"`
	Kind   models.OperationKind     `json:"kind"`
	Status models.TransactionStatus `json:"status"`
	Detail string                   `json:"detail,omitempty"`
	At     time.Time                `json:"at"`
}

// Publisher defines the interface for publishing status events to observers.
type Publisher interface {
	Publish(ctx context.Context, event StatusEvent) error
}

// NoOpPublisher is a publisher that does nothing.
type NoOpPublisher struct{}

// Publish does nothing.
func (p *NoOpPublisher) Publish(ctx context.Context, event StatusEvent) error {
	return nil
}

// Broadcaster fans events out to in-process subscribers. Slow subscribers drop
// events rather than block the lifecycle.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[int]chan StatusEvent
	next int
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan StatusEvent)}
}

// Make sure we conform to the interface
var _ Publisher = (*Broadcaster)(nil)

// Subscribe registers a new observer. The returned cancel func removes it.
func (b *Broadcaster) Subscribe() (<-chan StatusEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan StatusEvent, 16)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking.
func (b *Broadcaster) Publish(ctx context.Context, event StatusEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}
