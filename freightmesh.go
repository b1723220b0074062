// Package freightmesh provides a high-level façade over the negotiation
// engine and its service abstractions (store, advisor, notifier, booking
// and logging), enabling automated freight rate negotiation. Most
// applications interact with this package by:
//  1. Creating a FreightMesh via New() (optionally overriding the default
//     in-memory services and the heuristic advisor)
//  2. Starting negotiations for loads (StartNegotiation)
//  3. Feeding broker responses back in (RecordBrokerResponse) and running
//     the expiry sweep periodically (ExpireStaleNegotiations)
//
// The façade delegates orchestration to engine.Engine while keeping setup
// and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a
// durable store, a model-backed advisor, a real notifier and a structured
// logger.
package freightmesh

import (
	"context"
	"time"

	"github.com/hupe1980/freightmesh/advisor"
	"github.com/hupe1980/freightmesh/booking"
	"github.com/hupe1980/freightmesh/core"
	"github.com/hupe1980/freightmesh/engine"
	"github.com/hupe1980/freightmesh/logging"
	"github.com/hupe1980/freightmesh/notify"
	"github.com/hupe1980/freightmesh/store"
)

// Options configures the FreightMesh instance.
type Options struct {
	// EngineConfig holds policy defaults (round cap, TTL, history limit).
	EngineConfig engine.Config

	// Services (default to in-memory implementations if not provided)
	Store    core.NegotiationStore
	Advisor  core.StrategyAdvisor
	Notifier core.Notifier
	Booking  core.BookingInitiator

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// FreightMesh is the high-level façade aggregating the underlying engine
// and services.
type FreightMesh struct {
	opts   Options
	engine *engine.Engine
}

// New creates a new FreightMesh instance with optional overrides. Any
// unset service is initialized with an in-memory implementation; the
// advisor defaults to the deterministic heuristic.
func New(optFns ...func(o *Options)) *FreightMesh {
	opts := Options{
		EngineConfig: engine.DefaultConfig,
		Store:        store.NewInMemoryStore(),
		Advisor:      advisor.NewHeuristic(),
		Notifier:     notify.NewInMemoryNotifier(),
		Booking:      booking.NewInMemoryInitiator(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	e := engine.New(func(o *engine.Options) {
		o.Config = opts.EngineConfig
		o.Store = opts.Store
		o.Advisor = opts.Advisor
		o.Notifier = opts.Notifier
		o.Booking = opts.Booking
		o.Logger = opts.Logger
	})

	return &FreightMesh{opts: opts, engine: e}
}

// StartNegotiation creates a negotiation and sends the opening offer.
func (m *FreightMesh) StartNegotiation(ctx context.Context, req engine.StartRequest) (*core.Negotiation, error) {
	return m.engine.StartNegotiation(ctx, req)
}

// SendOpeningOffer retries a failed INITIATED→OFFER_SENT transition.
func (m *FreightMesh) SendOpeningOffer(ctx context.Context, negotiationID string) (*core.Negotiation, error) {
	return m.engine.SendOpeningOffer(ctx, negotiationID)
}

// RecordBrokerResponse applies an inbound broker accept/counter/reject.
func (m *FreightMesh) RecordBrokerResponse(ctx context.Context, req engine.ResponseRequest) (*core.Negotiation, error) {
	return m.engine.RecordBrokerResponse(ctx, req)
}

// GetNegotiation returns the current record including its offer history.
func (m *FreightMesh) GetNegotiation(ctx context.Context, negotiationID string) (*core.Negotiation, error) {
	return m.engine.GetNegotiation(ctx, negotiationID)
}

// ExpireStaleNegotiations sweeps past-deadline negotiations into EXPIRED.
func (m *FreightMesh) ExpireStaleNegotiations(ctx context.Context, now time.Time) (int, error) {
	return m.engine.ExpireStaleNegotiations(ctx, now)
}
