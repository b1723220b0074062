package core

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Status is the lifecycle state of a negotiation. Transitions between
// statuses are governed exclusively by the engine's transition table; no
// caller mutates Status directly.
type Status string

const (
	// StatusInitiated is the creation state before the opening offer went out.
	StatusInitiated Status = "INITIATED"
	// StatusOfferSent means the agent's latest offer is with the broker.
	StatusOfferSent Status = "OFFER_SENT"
	// StatusCountered means a broker counter-offer is awaiting the engine's decision.
	StatusCountered Status = "COUNTERED"
	// StatusAccepted is terminal: both sides agreed on a rate.
	StatusAccepted Status = "ACCEPTED"
	// StatusRejected is terminal: one side walked away.
	StatusRejected Status = "REJECTED"
	// StatusExpired is terminal: the deadline passed without agreement.
	StatusExpired Status = "EXPIRED"
)

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusExpired:
		return true
	default:
		return false
	}
}

// Actor identifies which side of the negotiation produced an offer event.
type Actor string

const (
	// ActorAgent is the carrier-side agent (this system).
	ActorAgent Actor = "agent"
	// ActorBroker is the freight broker on the other side.
	ActorBroker Actor = "broker"
)

// OfferEvent is one entry in a negotiation's offer history. The history is
// append-only and insertion order is significant: it is both the audit
// trail and the conversational context handed to the strategy advisor.
type OfferEvent struct {
	ID        string    `json:"id"`
	Actor     Actor     `json:"actor"`
	Amount    float64   `json:"amount"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Negotiation is the central persisted record: one back-and-forth rate
// agreement process for a single load between the carrier agent and a
// broker. All mutations flow through the engine and are persisted with a
// conditional write on Version.
type Negotiation struct {
	ID       string `json:"id"`
	LoadID   string `json:"load_id"`
	DriverID string `json:"driver_id"`

	Status Status `json:"status"`

	TargetRate   float64  `json:"target_rate"`
	FloorRate    float64  `json:"floor_rate"`
	CurrentOffer float64  `json:"current_offer"`
	CounterOffer *float64 `json:"counter_offer,omitempty"`

	Round     int `json:"round"`
	MaxRounds int `json:"max_rounds"`

	ExpiresAt        time.Time `json:"expires_at"`
	BookingTriggered bool      `json:"booking_triggered"`

	OfferHistory []OfferEvent `json:"offer_history"`

	// Version increments on every persisted mutation and backs the
	// store's conditional writes.
	Version int64 `json:"version"`

	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

// NewNegotiation creates a record in StatusInitiated with a fresh ULID and
// version 1 (the version the create itself persists at).
func NewNegotiation(loadID, driverID string, targetRate, floorRate float64, maxRounds int, expiresAt time.Time) *Negotiation {
	now := time.Now().UTC()
	return &Negotiation{
		ID:         NewNegotiationID(),
		LoadID:     loadID,
		DriverID:   driverID,
		Status:     StatusInitiated,
		TargetRate: targetRate,
		FloorRate:  floorRate,
		MaxRounds:  maxRounds,
		ExpiresAt:  expiresAt,
		Version:    1,
		Created:    now,
		Updated:    now,
	}
}

// AppendOffer records an offer event at the end of the history and updates
// the Updated timestamp. The history is never truncated or reordered.
func (n *Negotiation) AppendOffer(actor Actor, amount float64, message string) OfferEvent {
	ev := OfferEvent{
		ID:        NewEventID(),
		Actor:     actor,
		Amount:    amount,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	n.OfferHistory = append(n.OfferHistory, ev)
	n.Updated = ev.Timestamp
	return ev
}

// LastAgentOffer returns the amount of the most recent agent-authored
// offer, or the target rate when no agent offer exists yet.
func (n *Negotiation) LastAgentOffer() float64 {
	for i := len(n.OfferHistory) - 1; i >= 0; i-- {
		if n.OfferHistory[i].Actor == ActorAgent {
			return n.OfferHistory[i].Amount
		}
	}
	return n.TargetRate
}

// Expired reports whether the negotiation deadline has passed at t.
func (n *Negotiation) Expired(t time.Time) bool {
	return t.After(n.ExpiresAt)
}

// Clone returns a deep copy safe for independent mutation. Stores clone on
// both read and write so callers can never alias stored state.
func (n *Negotiation) Clone() *Negotiation {
	clone := *n
	if n.CounterOffer != nil {
		v := *n.CounterOffer
		clone.CounterOffer = &v
	}
	clone.OfferHistory = make([]OfferEvent, len(n.OfferHistory))
	copy(clone.OfferHistory, n.OfferHistory)
	return &clone
}

// NewNegotiationID generates a lexicographically sortable ULID identifier
// for negotiations and bookings.
func NewNegotiationID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// NewEventID generates a UUID for offer events and delivery receipts.
func NewEventID() string { return uuid.NewString() }
