package engine

import "github.com/hupe1980/freightmesh/core"

// EventKind names the events that can drive a negotiation between
// statuses. Broker events arrive from outside; engine events are the
// decision policy's own moves; EventExpire is raised by the deadline.
type EventKind string

const (
	// EventOfferSent records that the opening offer was drafted and delivered.
	EventOfferSent EventKind = "offer_sent"
	// EventBrokerAccept is the broker taking the agent's current offer.
	EventBrokerAccept EventKind = "broker_accept"
	// EventBrokerCounter is the broker proposing a different amount.
	EventBrokerCounter EventKind = "broker_counter"
	// EventBrokerReject is the broker walking away.
	EventBrokerReject EventKind = "broker_reject"
	// EventEngineAccept is the decision policy taking a broker counter.
	EventEngineAccept EventKind = "engine_accept"
	// EventEngineCounter is the decision policy sending a re-counter.
	EventEngineCounter EventKind = "engine_counter"
	// EventEngineReject is the decision policy walking away.
	EventEngineReject EventKind = "engine_reject"
	// EventExpire is the deadline passing on any non-terminal record.
	EventExpire EventKind = "expire"
)

// transitions is the complete edge table of the negotiation state machine.
// An event absent from the current status's row is an invalid transition;
// numeric guards (amounts, rounds, deadlines) live in the engine and the
// decision policy, the table only encodes reachability.
var transitions = map[core.Status]map[EventKind]core.Status{
	core.StatusInitiated: {
		EventOfferSent: core.StatusOfferSent,
		EventExpire:    core.StatusExpired,
	},
	core.StatusOfferSent: {
		EventBrokerAccept:  core.StatusAccepted,
		EventBrokerCounter: core.StatusCountered,
		EventBrokerReject:  core.StatusRejected,
		EventExpire:        core.StatusExpired,
	},
	core.StatusCountered: {
		EventEngineAccept:  core.StatusAccepted,
		EventEngineCounter: core.StatusOfferSent,
		EventEngineReject:  core.StatusRejected,
		EventExpire:        core.StatusExpired,
	},
}

// Next resolves the status reached by applying event in status from. It
// returns an InvalidTransitionError when the edge does not exist,
// including for every event on a terminal status.
func Next(from core.Status, event EventKind) (core.Status, error) {
	if row, ok := transitions[from]; ok {
		if to, ok := row[event]; ok {
			return to, nil
		}
	}
	return "", &core.InvalidTransitionError{Status: from, Event: string(event)}
}
