package notify

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/freightmesh/core"
)

// Delivery records one delivery attempt made through InMemoryNotifier.
type Delivery struct {
	ID            string
	NegotiationID string
	Message       string
	Amount        float64
	SentAt        time.Time
}

// InMemoryNotifier records deliveries in a process-local slice. It is safe
// for concurrent access and best suited for tests or demo setups. An
// injected failure makes every subsequent Send fail, which is how tests
// exercise the engine's no-partial-transition guarantee.
type InMemoryNotifier struct {
	mu         sync.Mutex
	deliveries []Delivery
	err        error
}

var _ core.Notifier = (*InMemoryNotifier)(nil)

// NewInMemoryNotifier constructs an empty recording notifier.
func NewInMemoryNotifier() *InMemoryNotifier {
	return &InMemoryNotifier{}
}

// FailWith makes every subsequent Send return err; nil restores delivery.
func (n *InMemoryNotifier) FailWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

// Deliveries returns a copy of all recorded deliveries.
func (n *InMemoryNotifier) Deliveries() []Delivery {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Delivery, len(n.deliveries))
	copy(out, n.deliveries)
	return out
}

// Send implements core.Notifier.
func (n *InMemoryNotifier) Send(_ context.Context, negotiationID, message string, amount float64) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return "", n.err
	}
	d := Delivery{
		ID:            core.NewEventID(),
		NegotiationID: negotiationID,
		Message:       message,
		Amount:        amount,
		SentAt:        time.Now().UTC(),
	}
	n.deliveries = append(n.deliveries, d)
	return d.ID, nil
}
