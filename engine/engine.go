package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/freightmesh/advisor"
	"github.com/hupe1980/freightmesh/booking"
	"github.com/hupe1980/freightmesh/core"
	"github.com/hupe1980/freightmesh/logging"
	"github.com/hupe1980/freightmesh/notify"
	"github.com/hupe1980/freightmesh/store"
)

// Config defines tuning parameters for the engine's policy behavior.
//
// These are policy defaults, not hard limits: StartNegotiation accepts
// explicit per-negotiation values and falls back to the config only for
// zero-valued fields. The exact floor-rate derivation and round cap are
// deliberately configuration inputs rather than constants.
type Config struct {
	// DefaultMaxRounds caps offer/counter-offer exchanges when a
	// StartRequest leaves MaxRounds unset.
	DefaultMaxRounds int

	// DefaultTTL bounds a negotiation's lifetime when a StartRequest
	// leaves TTL unset. Past the deadline the record is auto-expired.
	DefaultTTL time.Duration

	// HistoryLimit caps the number of trailing offer events handed to the
	// strategy advisor as context. Zero passes the full history.
	HistoryLimit int
}

// DefaultConfig provides conservative defaults: three exchange rounds and
// a one-day negotiation window.
var DefaultConfig = Config{
	DefaultMaxRounds: 3,
	DefaultTTL:       24 * time.Hour,
	HistoryLimit:     50,
}

// Options configures an Engine instance using the functional options
// pattern. Every service has an in-memory default so the engine is usable
// out of the box for development and tests; production deployments supply
// durable implementations.
type Options struct {
	// Config contains policy defaults. Defaults to DefaultConfig.
	Config Config

	// Store persists negotiation records with conditional writes.
	// Defaults to the in-memory implementation.
	Store core.NegotiationStore

	// Advisor drafts offers and counter-offers. Defaults to the
	// deterministic heuristic advisor.
	Advisor core.StrategyAdvisor

	// Notifier delivers outbound offers to the broker. Defaults to the
	// in-memory recording notifier.
	Notifier core.Notifier

	// Booking turns accepted negotiations into bookings. Defaults to the
	// in-memory initiator.
	Booking core.BookingInitiator

	// Logger provides structured logging. Defaults to NoOp if nil.
	Logger logging.Logger

	// Clock supplies the current time; override in tests for
	// deterministic expiry behavior. Defaults to time.Now.
	Clock func() time.Time
}

// Engine orchestrates the negotiation lifecycle. It owns all transition
// logic and concurrency control; everything else (drafting, delivery,
// booking, persistence) is delegated through the core interfaces.
//
// The engine holds no per-negotiation state and no locks across external
// calls. Each operation reads the record, performs its external side
// effects, and then attempts a single conditional write at the version it
// read; a concurrent transition is detected at that point rather than
// clobbered.
type Engine struct {
	store    core.NegotiationStore
	advisor  core.StrategyAdvisor
	notifier core.Notifier
	booking  core.BookingInitiator
	logger   logging.Logger
	config   Config
	clock    func() time.Time
}

// New creates an Engine with sensible defaults and optional overrides.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:   DefaultConfig,
		Store:    store.NewInMemoryStore(),
		Advisor:  advisor.NewHeuristic(),
		Notifier: notify.NewInMemoryNotifier(),
		Booking:  booking.NewInMemoryInitiator(),
		Logger:   logging.NoOpLogger{},
		Clock:    time.Now,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Engine{
		store:    opts.Store,
		advisor:  opts.Advisor,
		notifier: opts.Notifier,
		booking:  opts.Booking,
		logger:   opts.Logger,
		config:   opts.Config,
		clock:    opts.Clock,
	}
}

// StartRequest are the inputs to StartNegotiation. MaxRounds and TTL fall
// back to the engine config when zero.
type StartRequest struct {
	LoadID     string
	DriverID   string
	TargetRate float64
	FloorRate  float64
	MaxRounds  int
	TTL        time.Duration
}

func (r StartRequest) validate() error {
	switch {
	case r.LoadID == "":
		return &core.ValidationError{Field: "load_id", Reason: "required"}
	case r.DriverID == "":
		return &core.ValidationError{Field: "driver_id", Reason: "required"}
	case r.TargetRate <= 0:
		return &core.ValidationError{Field: "target_rate", Reason: "must be positive"}
	case r.FloorRate < 0:
		return &core.ValidationError{Field: "floor_rate", Reason: "must be non-negative"}
	case r.FloorRate > r.TargetRate:
		return &core.ValidationError{Field: "floor_rate", Reason: "must not exceed target rate"}
	case r.MaxRounds < 0:
		return &core.ValidationError{Field: "max_rounds", Reason: "must be non-negative"}
	case r.TTL < 0:
		return &core.ValidationError{Field: "ttl", Reason: "must be non-negative"}
	}
	return nil
}

// ResponseKind classifies an inbound broker response.
type ResponseKind string

const (
	// ResponseAccept means the broker takes the agent's current offer.
	ResponseAccept ResponseKind = "accept"
	// ResponseCounter means the broker proposes a different amount.
	ResponseCounter ResponseKind = "counter"
	// ResponseReject means the broker walks away.
	ResponseReject ResponseKind = "reject"
)

func (k ResponseKind) event() EventKind {
	switch k {
	case ResponseAccept:
		return EventBrokerAccept
	case ResponseCounter:
		return EventBrokerCounter
	default:
		return EventBrokerReject
	}
}

// ResponseRequest are the inputs to RecordBrokerResponse. ExpectedVersion
// is the version the caller last read; a mismatch yields
// core.ErrConcurrencyConflict and the caller must re-read before retrying.
type ResponseRequest struct {
	NegotiationID   string
	Kind            ResponseKind
	Amount          *float64
	Message         string
	ExpectedVersion int64
}

// StartNegotiation creates a negotiation in INITIATED and synchronously
// drives the INITIATED→OFFER_SENT transition (advisor draft plus notifier
// send). If drafting or delivery fails, the record persists at INITIATED
// and the returned error wraps the failure; SendOpeningOffer retries the
// transition.
func (e *Engine) StartNegotiation(ctx context.Context, req StartRequest) (*core.Negotiation, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	maxRounds := req.MaxRounds
	if maxRounds == 0 {
		maxRounds = e.config.DefaultMaxRounds
	}
	ttl := req.TTL
	if ttl == 0 {
		ttl = e.config.DefaultTTL
	}

	n := core.NewNegotiation(req.LoadID, req.DriverID, req.TargetRate, req.FloorRate, maxRounds, e.clock().UTC().Add(ttl))
	if err := e.store.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create negotiation: %w", err)
	}

	e.logger.Info("negotiation started",
		"negotiation_id", n.ID, "load_id", n.LoadID, "driver_id", n.DriverID,
		"target_rate", n.TargetRate, "max_rounds", n.MaxRounds)

	return e.sendOpening(ctx, n)
}

// SendOpeningOffer retries the INITIATED→OFFER_SENT transition for a
// record whose opening draft or delivery previously failed. Any other
// status is an invalid transition.
func (e *Engine) SendOpeningOffer(ctx context.Context, negotiationID string) (*core.Negotiation, error) {
	n, err := e.store.Get(ctx, negotiationID)
	if err != nil {
		return nil, err
	}
	if exp, err := e.expireIfStale(ctx, n, EventOfferSent); err != nil {
		return exp, err
	}
	return e.sendOpening(ctx, n)
}

// sendOpening drafts and delivers the opening offer, then persists the
// transition to OFFER_SENT. Both external calls complete before the single
// state-advancing write, so a failure here leaves no partial transition.
func (e *Engine) sendOpening(ctx context.Context, n *core.Negotiation) (*core.Negotiation, error) {
	next, err := Next(n.Status, EventOfferSent)
	if err != nil {
		return n, err
	}

	draft, err := e.advisor.Draft(ctx, e.draftContext(n, core.DraftOpening, 0))
	if err != nil {
		return n, classify(err, core.ErrAdvisorUnavailable)
	}
	amount := clampOpening(draft.Amount, n.TargetRate)

	deliveryID, err := e.notifier.Send(ctx, n.ID, draft.Message, amount)
	if err != nil {
		return n, classify(err, core.ErrDeliveryFailed)
	}

	expected := n.Version
	n.Status = next
	n.CurrentOffer = amount
	n.AppendOffer(core.ActorAgent, amount, draft.Message)
	if err := e.store.PutIfVersion(ctx, n, expected); err != nil {
		return n, err
	}

	e.logger.Info("opening offer sent",
		"negotiation_id", n.ID, "amount", amount, "delivery_id", deliveryID)
	return n, nil
}

// RecordBrokerResponse validates and applies an inbound broker response.
// For counters it runs the decision policy and may consult the advisor;
// for accepts it performs the transactional handoff into booking. The
// updated record is returned; on error the last known consistent record
// accompanies it when available.
func (e *Engine) RecordBrokerResponse(ctx context.Context, req ResponseRequest) (*core.Negotiation, error) {
	if req.NegotiationID == "" {
		return nil, &core.ValidationError{Field: "negotiation_id", Reason: "required"}
	}
	switch req.Kind {
	case ResponseAccept, ResponseCounter, ResponseReject:
	default:
		return nil, &core.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown response kind %q", req.Kind)}
	}

	n, err := e.store.Get(ctx, req.NegotiationID)
	if err != nil {
		return nil, err
	}
	if req.ExpectedVersion != n.Version {
		return n, core.ErrConcurrencyConflict
	}
	if exp, err := e.expireIfStale(ctx, n, req.Kind.event()); err != nil {
		return exp, err
	}

	switch req.Kind {
	case ResponseAccept:
		return e.acceptCurrentOffer(ctx, n, req.Message)
	case ResponseReject:
		return e.brokerReject(ctx, n, req.Message)
	default:
		return e.brokerCounter(ctx, n, req)
	}
}

// GetNegotiation returns the current record including its full offer
// history. Read-only; the returned copy is safe to mutate.
func (e *Engine) GetNegotiation(ctx context.Context, negotiationID string) (*core.Negotiation, error) {
	return e.store.Get(ctx, negotiationID)
}

// ExpireStaleNegotiations sweeps non-terminal negotiations whose deadline
// lies before now into EXPIRED, returning the number expired. Re-running
// on already-expired records is a no-op, and a record that a concurrent
// response transitions mid-sweep is skipped: the sweep loses the version
// race by design.
func (e *Engine) ExpireStaleNegotiations(ctx context.Context, now time.Time) (int, error) {
	records, err := e.store.Scan(ctx, core.ScanFilter{
		Statuses:      []core.Status{core.StatusInitiated, core.StatusOfferSent, core.StatusCountered},
		ExpiresBefore: now,
	})
	if err != nil {
		return 0, fmt.Errorf("scan stale negotiations: %w", err)
	}

	expired := 0
	for _, n := range records {
		if _, err := e.expireRecord(ctx, n); err != nil {
			if errors.Is(err, core.ErrConcurrencyConflict) || errors.Is(err, core.ErrNotFound) {
				e.logger.Debug("expiry sweep lost version race", "negotiation_id", n.ID)
				continue
			}
			return expired, err
		}
		expired++
	}
	return expired, nil
}

// acceptCurrentOffer applies a broker accept: the agent's current offer
// becomes the final rate, the accepting conditional write also sets the
// booking flag, and only the winner of that write triggers booking.
func (e *Engine) acceptCurrentOffer(ctx context.Context, n *core.Negotiation, message string) (*core.Negotiation, error) {
	next, err := Next(n.Status, EventBrokerAccept)
	if err != nil {
		return n, err
	}

	expected := n.Version
	n.AppendOffer(core.ActorBroker, n.CurrentOffer, message)
	n.Status = next
	n.BookingTriggered = true
	if err := e.store.PutIfVersion(ctx, n, expected); err != nil {
		return n, err
	}

	e.logger.Info("negotiation accepted",
		"negotiation_id", n.ID, "final_rate", n.CurrentOffer, "round", n.Round)
	return e.triggerBooking(ctx, n)
}

// brokerReject applies a broker walk-away.
func (e *Engine) brokerReject(ctx context.Context, n *core.Negotiation, message string) (*core.Negotiation, error) {
	next, err := Next(n.Status, EventBrokerReject)
	if err != nil {
		return n, err
	}

	expected := n.Version
	n.AppendOffer(core.ActorBroker, n.CurrentOffer, message)
	n.Status = next
	if err := e.store.PutIfVersion(ctx, n, expected); err != nil {
		return n, err
	}

	e.logger.Info("negotiation rejected by broker", "negotiation_id", n.ID, "round", n.Round)
	return n, nil
}

// brokerCounter runs the counter-offer decision policy. The broker's
// counter moves the record through COUNTERED and the engine's decision
// resolves it in the same call: accept, re-counter (back to OFFER_SENT) or
// walk away. The advisor drafts; the engine's floor and round guards
// dispose. All external calls precede the single conditional write, so an
// advisor or delivery failure leaves the record at OFFER_SENT for retry.
func (e *Engine) brokerCounter(ctx context.Context, n *core.Negotiation, req ResponseRequest) (*core.Negotiation, error) {
	if req.Amount == nil {
		return n, &core.ValidationError{Field: "amount", Reason: "required for counter responses"}
	}
	amount := *req.Amount
	if amount < 0 {
		return n, &core.ValidationError{Field: "amount", Reason: "must be non-negative"}
	}

	countered, err := Next(n.Status, EventBrokerCounter)
	if err != nil {
		return n, err
	}

	newRound := n.Round + 1
	dec, resolved := resolveCounter(n.TargetRate, n.FloorRate, amount, newRound, n.MaxRounds)

	var draft *core.Draft
	counterAmt := 0.0
	if !resolved {
		dc := e.draftContext(n, core.DraftCounter, amount)
		dc.Round = newRound
		draft, err = e.advisor.Draft(ctx, dc)
		if err != nil {
			return n, classify(err, core.ErrAdvisorUnavailable)
		}
		dec, counterAmt = applyDraft(draft, n.FloorRate, amount)
	}

	counterMsg := ""
	if dec == decideCounter {
		counterMsg = draft.Message
		if _, err := e.notifier.Send(ctx, n.ID, counterMsg, counterAmt); err != nil {
			return n, classify(err, core.ErrDeliveryFailed)
		}
	}

	expected := n.Version
	n.Status = countered
	n.Round = newRound
	n.CounterOffer = &amount
	n.AppendOffer(core.ActorBroker, amount, req.Message)

	switch dec {
	case decideAccept:
		if n.Status, err = Next(n.Status, EventEngineAccept); err != nil {
			return n, err
		}
		n.CurrentOffer = amount
		n.BookingTriggered = true
	case decideReject:
		if n.Status, err = Next(n.Status, EventEngineReject); err != nil {
			return n, err
		}
		n.AppendOffer(core.ActorAgent, n.CurrentOffer, walkAwayMessage(draft))
	default:
		if n.Status, err = Next(n.Status, EventEngineCounter); err != nil {
			return n, err
		}
		n.CurrentOffer = counterAmt
		n.AppendOffer(core.ActorAgent, counterAmt, counterMsg)
	}

	if err := e.store.PutIfVersion(ctx, n, expected); err != nil {
		return n, err
	}

	e.logger.Info("broker counter resolved",
		"negotiation_id", n.ID, "counter", amount, "round", n.Round, "status", string(n.Status))

	if dec == decideAccept {
		return e.triggerBooking(ctx, n)
	}
	return n, nil
}

// triggerBooking invokes the booking initiator after the accepting write
// won. A failure surfaces as ErrBookingFailed with the ACCEPTED record; a
// retried accept hits InvalidTransition and never re-books, which keeps
// the invocation at most once per negotiation.
func (e *Engine) triggerBooking(ctx context.Context, n *core.Negotiation) (*core.Negotiation, error) {
	bookingID, err := e.booking.CreateBooking(ctx, core.BookingRequest{
		NegotiationID: n.ID,
		LoadID:        n.LoadID,
		DriverID:      n.DriverID,
		FinalRate:     n.CurrentOffer,
	})
	if err != nil {
		return n, classify(err, core.ErrBookingFailed)
	}

	e.logger.Info("booking created",
		"negotiation_id", n.ID, "booking_id", bookingID, "final_rate", n.CurrentOffer)
	return n, nil
}

// expireIfStale performs the deadline transition in-line when a request
// arrives for a past-deadline record, then rejects the request as an
// invalid transition on the now-expired record. A conflict on the expiring
// write propagates so the caller re-reads.
func (e *Engine) expireIfStale(ctx context.Context, n *core.Negotiation, event EventKind) (*core.Negotiation, error) {
	if n.Status.Terminal() || !n.Expired(e.clock().UTC()) {
		return n, nil
	}
	exp, err := e.expireRecord(ctx, n)
	if err != nil {
		return exp, err
	}
	return exp, &core.InvalidTransitionError{Status: exp.Status, Event: string(event)}
}

func (e *Engine) expireRecord(ctx context.Context, n *core.Negotiation) (*core.Negotiation, error) {
	next, err := Next(n.Status, EventExpire)
	if err != nil {
		return n, err
	}

	expected := n.Version
	n.Status = next
	n.Updated = e.clock().UTC()
	if err := e.store.PutIfVersion(ctx, n, expected); err != nil {
		return n, err
	}

	e.logger.Info("negotiation expired", "negotiation_id", n.ID, "expires_at", n.ExpiresAt)
	return n, nil
}

// draftContext assembles the advisor's view of the negotiation. The offer
// history is copied (and optionally truncated to the trailing
// HistoryLimit events) so the advisor can never alias engine state.
func (e *Engine) draftContext(n *core.Negotiation, kind core.DraftKind, counter float64) core.DraftContext {
	history := n.OfferHistory
	if limit := e.config.HistoryLimit; limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	hc := make([]core.OfferEvent, len(history))
	copy(hc, history)

	return core.DraftContext{
		NegotiationID: n.ID,
		LoadID:        n.LoadID,
		Kind:          kind,
		TargetRate:    n.TargetRate,
		CounterOffer:  counter,
		Round:         n.Round,
		MaxRounds:     n.MaxRounds,
		History:       hc,
	}
}

func walkAwayMessage(draft *core.Draft) string {
	if draft != nil && draft.Hint == core.HintReject && draft.Message != "" {
		return draft.Message
	}
	return "We are unable to move forward at this rate. Thank you for your time."
}

// classify guarantees the error is attributable to the given dependency
// sentinel without double-wrapping implementations that already are.
func classify(err, sentinel error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
