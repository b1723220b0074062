package engine

import (
	"errors"
	"testing"

	"github.com/hupe1980/freightmesh/core"
)

func TestNext_ValidEdges(t *testing.T) {
	cases := []struct {
		from  core.Status
		event EventKind
		to    core.Status
	}{
		{core.StatusInitiated, EventOfferSent, core.StatusOfferSent},
		{core.StatusInitiated, EventExpire, core.StatusExpired},
		{core.StatusOfferSent, EventBrokerAccept, core.StatusAccepted},
		{core.StatusOfferSent, EventBrokerCounter, core.StatusCountered},
		{core.StatusOfferSent, EventBrokerReject, core.StatusRejected},
		{core.StatusOfferSent, EventExpire, core.StatusExpired},
		{core.StatusCountered, EventEngineAccept, core.StatusAccepted},
		{core.StatusCountered, EventEngineCounter, core.StatusOfferSent},
		{core.StatusCountered, EventEngineReject, core.StatusRejected},
		{core.StatusCountered, EventExpire, core.StatusExpired},
	}
	for _, c := range cases {
		got, err := Next(c.from, c.event)
		if err != nil {
			t.Errorf("Next(%s, %s) unexpected error: %v", c.from, c.event, err)
			continue
		}
		if got != c.to {
			t.Errorf("Next(%s, %s) = %s, want %s", c.from, c.event, got, c.to)
		}
	}
}

func TestNext_TerminalStatusesRejectEverything(t *testing.T) {
	events := []EventKind{
		EventOfferSent, EventBrokerAccept, EventBrokerCounter, EventBrokerReject,
		EventEngineAccept, EventEngineCounter, EventEngineReject, EventExpire,
	}
	for _, status := range []core.Status{core.StatusAccepted, core.StatusRejected, core.StatusExpired} {
		for _, ev := range events {
			if _, err := Next(status, ev); err == nil {
				t.Errorf("Next(%s, %s) should be invalid", status, ev)
			}
		}
	}
}

func TestNext_InvalidEdges(t *testing.T) {
	cases := []struct {
		from  core.Status
		event EventKind
	}{
		{core.StatusInitiated, EventBrokerAccept},
		{core.StatusInitiated, EventBrokerCounter},
		{core.StatusInitiated, EventEngineCounter},
		{core.StatusOfferSent, EventOfferSent},
		{core.StatusOfferSent, EventEngineAccept},
		{core.StatusCountered, EventBrokerAccept},
		{core.StatusCountered, EventBrokerCounter},
	}
	for _, c := range cases {
		_, err := Next(c.from, c.event)
		var ite *core.InvalidTransitionError
		if !errors.As(err, &ite) {
			t.Errorf("Next(%s, %s): expected InvalidTransitionError, got %v", c.from, c.event, err)
			continue
		}
		if ite.Status != c.from {
			t.Errorf("error status = %s, want %s", ite.Status, c.from)
		}
	}
}

// Replaying any valid event sequence over the table must land on the same
// status as applying Next step by step; no sequence reaches a state via a
// disallowed edge.
func TestNext_DeterministicReplay(t *testing.T) {
	sequences := []struct {
		events []EventKind
		want   core.Status
	}{
		{[]EventKind{EventOfferSent, EventBrokerAccept}, core.StatusAccepted},
		{[]EventKind{EventOfferSent, EventBrokerCounter, EventEngineCounter, EventBrokerAccept}, core.StatusAccepted},
		{[]EventKind{EventOfferSent, EventBrokerCounter, EventEngineAccept}, core.StatusAccepted},
		{[]EventKind{EventOfferSent, EventBrokerCounter, EventEngineReject}, core.StatusRejected},
		{[]EventKind{EventOfferSent, EventBrokerReject}, core.StatusRejected},
		{[]EventKind{EventOfferSent, EventBrokerCounter, EventEngineCounter, EventExpire}, core.StatusExpired},
		{[]EventKind{EventExpire}, core.StatusExpired},
	}
	for _, seq := range sequences {
		status := core.StatusInitiated
		for _, ev := range seq.events {
			next, err := Next(status, ev)
			if err != nil {
				t.Fatalf("replay %v: unexpected error at %s/%s: %v", seq.events, status, ev, err)
			}
			status = next
		}
		if status != seq.want {
			t.Errorf("replay %v = %s, want %s", seq.events, status, seq.want)
		}
	}
}
