// Package engine implements the negotiation engine: the state machine
// governing a single negotiation's lifecycle, the offer/counter-offer
// decision policy, and the transactional handoff into booking.
//
// The engine is stateless between invocations. Any number of requests may
// target the same negotiation concurrently (duplicate broker callbacks, a
// race between the expiry sweep and a live response); every persisted
// mutation is a conditional write on the record's version, so the loser of
// a race receives a conflict instead of silently overwriting.
//
// External calls (advisor draft, notifier send, booking trigger) are
// ordered strictly before the single state-advancing write of each
// operation. A failed or timed-out external call therefore leaves the
// record in its prior state and is safe to retry. The engine never retries
// internally; retry policy belongs to the caller.
package engine
