package engine

import (
	"testing"

	"github.com/hupe1980/freightmesh/core"
	"github.com/stretchr/testify/assert"
)

func TestResolveCounter(t *testing.T) {
	const target, floor = 2000.0, 1800.0

	tests := []struct {
		name      string
		counter   float64
		newRound  int
		maxRounds int
		want      decision
		resolved  bool
	}{
		{"at target accepts immediately", 2000, 1, 3, decideAccept, true},
		{"above target accepts immediately", 2200, 3, 3, decideAccept, true},
		{"early low counter defers to advisor", 1700, 1, 3, decideCounter, false},
		{"late counter above floor accepts", 1850, 2, 3, decideAccept, true},
		{"final round above floor accepts", 1850, 3, 3, decideAccept, true},
		{"final round below floor rejects", 1500, 3, 3, decideReject, true},
		{"past cap below floor rejects", 1799, 4, 3, decideReject, true},
		{"mid negotiation above floor defers", 1850, 1, 5, decideCounter, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, resolved := resolveCounter(target, floor, tt.counter, tt.newRound, tt.maxRounds)
			assert.Equal(t, tt.resolved, resolved)
			if resolved {
				assert.Equal(t, tt.want, dec)
			}
		})
	}
}

func TestApplyDraft_FloorVeto(t *testing.T) {
	const floor = 1800.0

	// Advisor proposes below floor: the engine substitutes the floor.
	dec, amount := applyDraft(&core.Draft{Amount: 1200, Hint: core.HintCounter}, floor, 1000)
	assert.Equal(t, decideCounter, dec)
	assert.Equal(t, floor, amount)

	// Advisor proposes a sane counter above floor: passed through.
	dec, amount = applyDraft(&core.Draft{Amount: 1950, Hint: core.HintCounter}, floor, 1700)
	assert.Equal(t, decideCounter, dec)
	assert.Equal(t, 1950.0, amount)
}

func TestApplyDraft_AcceptHintRequiresFloor(t *testing.T) {
	const floor = 1800.0

	// Accept hint on a counter clearing the floor is honored.
	dec, amount := applyDraft(&core.Draft{Amount: 1850, Hint: core.HintAccept}, floor, 1850)
	assert.Equal(t, decideAccept, dec)
	assert.Equal(t, 1850.0, amount)

	// Accept hint on a counter below the floor is overruled: the clamped
	// proposal goes out instead.
	dec, amount = applyDraft(&core.Draft{Amount: 1700, Hint: core.HintAccept}, floor, 1700)
	assert.Equal(t, decideCounter, dec)
	assert.Equal(t, floor, amount)
}

func TestApplyDraft_RejectHintOnlyBelowFloor(t *testing.T) {
	const floor = 1800.0

	dec, _ := applyDraft(&core.Draft{Hint: core.HintReject}, floor, 1500)
	assert.Equal(t, decideReject, dec)

	// A reject hint on a counter at or above floor degenerates to taking
	// the counter: the clamped amount cannot beat it.
	dec, amount := applyDraft(&core.Draft{Hint: core.HintReject, Amount: 0}, floor, 1850)
	assert.Equal(t, decideAccept, dec)
	assert.Equal(t, 1850.0, amount)
}

func TestApplyDraft_NeverUndercutsBrokerCounter(t *testing.T) {
	const floor = 1500.0

	// Proposal at or below the broker's counter means accepting the
	// counter is strictly better.
	dec, amount := applyDraft(&core.Draft{Amount: 1600, Hint: core.HintCounter}, floor, 1700)
	assert.Equal(t, decideAccept, dec)
	assert.Equal(t, 1700.0, amount)
}

func TestApplyDraft_NeverBelowFloor(t *testing.T) {
	const floor = 1800.0
	drafts := []core.Draft{
		{Amount: 0, Hint: core.HintCounter},
		{Amount: 500, Hint: core.HintCounter},
		{Amount: 1799.99, Hint: core.HintAccept},
		{Amount: 2500, Hint: core.HintCounter},
	}
	for _, d := range drafts {
		for _, counter := range []float64{0, 900, 1750, 1799, 1801, 1900} {
			dec, amount := applyDraft(&d, floor, counter)
			if dec == decideCounter {
				assert.GreaterOrEqual(t, amount, floor, "counter proposal below floor for draft %+v counter %v", d, counter)
			}
			if dec == decideAccept {
				assert.GreaterOrEqual(t, amount, floor, "accepted amount below floor for draft %+v counter %v", d, counter)
			}
		}
	}
}

func TestClampOpening(t *testing.T) {
	assert.Equal(t, 2000.0, clampOpening(1500, 2000))
	assert.Equal(t, 2100.0, clampOpening(2100, 2000))
	assert.Equal(t, 2000.0, clampOpening(0, 2000))
}
