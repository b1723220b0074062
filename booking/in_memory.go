package booking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/freightmesh/core"
)

// Booking is a confirmed load assignment created from an accepted
// negotiation.
type Booking struct {
	ID            string    `json:"id"`
	NegotiationID string    `json:"negotiation_id"`
	LoadID        string    `json:"load_id"`
	DriverID      string    `json:"driver_id"`
	FinalRate     float64   `json:"final_rate"`
	Document      string    `json:"document,omitempty"`
	Created       time.Time `json:"created"`
}

// DocumentFunc renders the rate confirmation document for a booking.
type DocumentFunc func(b Booking) string

// DefaultDocument is the built-in rate confirmation renderer.
func DefaultDocument(b Booking) string {
	return fmt.Sprintf(
		"RATE CONFIRMATION\nBooking: %s\nLoad: %s\nDriver: %s\nAgreed rate: $%.2f\nIssued: %s\n",
		b.ID, b.LoadID, b.DriverID, b.FinalRate, b.Created.Format(time.RFC3339),
	)
}

// Options configure the in-memory initiator.
type Options struct {
	// Document renders the rate confirmation. Defaults to DefaultDocument.
	Document DocumentFunc
}

// InMemoryInitiator is a BookingInitiator keeping bookings in a
// process-local map, keyed by negotiation id so a repeated CreateBooking
// for the same negotiation returns the existing booking instead of
// creating a second one. An injected failure makes CreateBooking fail,
// which is how tests exercise the engine's at-most-once guarantee.
type InMemoryInitiator struct {
	mu       sync.Mutex
	bookings map[string]Booking
	opts     Options
	err      error
}

var _ core.BookingInitiator = (*InMemoryInitiator)(nil)

// NewInMemoryInitiator constructs an empty in-memory booking initiator.
func NewInMemoryInitiator(optFns ...func(o *Options)) *InMemoryInitiator {
	opts := Options{Document: DefaultDocument}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryInitiator{bookings: make(map[string]Booking), opts: opts}
}

// FailWith makes every subsequent CreateBooking return err.
func (b *InMemoryInitiator) FailWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// CreateBooking implements core.BookingInitiator.
func (b *InMemoryInitiator) CreateBooking(_ context.Context, req core.BookingRequest) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return "", b.err
	}
	if existing, ok := b.bookings[req.NegotiationID]; ok {
		return existing.ID, nil
	}

	bk := Booking{
		ID:            core.NewNegotiationID(),
		NegotiationID: req.NegotiationID,
		LoadID:        req.LoadID,
		DriverID:      req.DriverID,
		FinalRate:     req.FinalRate,
		Created:       time.Now().UTC(),
	}
	if b.opts.Document != nil {
		bk.Document = b.opts.Document(bk)
	}
	b.bookings[req.NegotiationID] = bk
	return bk.ID, nil
}

// Get returns the booking for a negotiation id, if any.
func (b *InMemoryInitiator) Get(negotiationID string) (Booking, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bk, ok := b.bookings[negotiationID]
	return bk, ok
}

// List returns all bookings.
func (b *InMemoryInitiator) List() []Booking {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Booking, 0, len(b.bookings))
	for _, bk := range b.bookings {
		out = append(out, bk)
	}
	return out
}
