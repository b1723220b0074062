package core

import "context"

// DraftKind distinguishes the two drafting situations the advisor handles.
type DraftKind string

const (
	// DraftOpening asks for the first offer of a fresh negotiation.
	DraftOpening DraftKind = "opening"
	// DraftCounter asks for a response to a broker counter-offer.
	DraftCounter DraftKind = "counter"
)

// ActionHint is the advisor's non-binding recommendation. The engine's own
// guard conditions are authoritative; the hint never overrides them.
type ActionHint string

const (
	// HintAccept recommends taking the broker's amount.
	HintAccept ActionHint = "accept"
	// HintCounter recommends sending the drafted counter-proposal.
	HintCounter ActionHint = "counter"
	// HintReject recommends walking away.
	HintReject ActionHint = "reject"
)

// DraftContext is everything the advisor sees when drafting. The floor
// rate is deliberately absent: the model drafts, the engine disposes, and
// a completion can never leak or negotiate against the hard floor it
// does not know.
type DraftContext struct {
	NegotiationID string
	LoadID        string
	Kind          DraftKind
	TargetRate    float64
	// CounterOffer is the broker's latest counter; zero for an opening draft.
	CounterOffer float64
	Round        int
	MaxRounds    int
	History      []OfferEvent
}

// Draft is the advisor's output: a message to send the broker, a proposed
// amount and an advisory action hint.
type Draft struct {
	Message string
	Amount  float64
	Hint    ActionHint
}

// StrategyAdvisor wraps a text-generation model (or a deterministic
// stand-in) that drafts offers and counter-offers. Implementations report
// transport or model failures by wrapping ErrAdvisorUnavailable.
type StrategyAdvisor interface {
	Draft(ctx context.Context, dc DraftContext) (*Draft, error)
}
