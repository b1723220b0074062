package core

import (
	"errors"
	"testing"
	"time"
)

func TestNegotiation_AppendOfferAndClone(t *testing.T) {
	n := NewNegotiation("load-1", "driver-1", 2000, 1800, 3, time.Now().Add(time.Hour))
	if n.Status != StatusInitiated {
		t.Fatalf("expected INITIATED, got %s", n.Status)
	}
	if n.Version != 1 {
		t.Fatalf("expected version 1, got %d", n.Version)
	}

	n.AppendOffer(ActorAgent, 2100, "opening")
	n.AppendOffer(ActorBroker, 1700, "counter")

	clone := n.Clone()
	if clone == n {
		t.Error("Clone should be a different pointer")
	}
	clone.AppendOffer(ActorAgent, 1900, "re-counter")
	if len(n.OfferHistory) != 2 {
		t.Errorf("original history grew with clone's append: %d", len(n.OfferHistory))
	}
	if got := n.LastAgentOffer(); got != 2100 {
		t.Errorf("LastAgentOffer = %v, want 2100", got)
	}
}

func TestNegotiation_LastAgentOfferDefaultsToTarget(t *testing.T) {
	n := NewNegotiation("load-1", "driver-1", 2000, 1800, 3, time.Now().Add(time.Hour))
	if got := n.LastAgentOffer(); got != 2000 {
		t.Errorf("LastAgentOffer on empty history = %v, want target 2000", got)
	}
}

func TestStatus_Terminal(t *testing.T) {
	terminal := []Status{StatusAccepted, StatusRejected, StatusExpired}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	open := []Status{StatusInitiated, StatusOfferSent, StatusCountered}
	for _, s := range open {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestScanFilter_Matches(t *testing.T) {
	now := time.Now()
	n := NewNegotiation("load-1", "driver-1", 2000, 1800, 3, now.Add(-time.Minute))
	n.Status = StatusOfferSent

	f := ScanFilter{Statuses: []Status{StatusOfferSent, StatusCountered}, ExpiresBefore: now}
	if !f.Matches(n) {
		t.Error("expected stale OFFER_SENT record to match")
	}

	if (ScanFilter{Statuses: []Status{StatusAccepted}}).Matches(n) {
		t.Error("status filter should exclude OFFER_SENT")
	}
	if (ScanFilter{ExpiresBefore: now.Add(-time.Hour)}).Matches(n) {
		t.Error("deadline filter should exclude records expiring later")
	}
}

func TestInvalidTransitionError_Message(t *testing.T) {
	err := &InvalidTransitionError{Status: StatusAccepted, Event: "broker_counter"}
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatal("errors.As should match InvalidTransitionError")
	}
	if ite.Status != StatusAccepted {
		t.Errorf("unexpected status %s", ite.Status)
	}
}
