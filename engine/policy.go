package engine

import "github.com/hupe1980/freightmesh/core"

// decision is the engine's resolution of a broker counter-offer.
type decision int

const (
	decideAccept decision = iota
	decideCounter
	decideReject
)

// resolveCounter applies the guard rules that need no advisor, in priority
// order. resolved=false means the rules alone cannot decide and the
// advisor must be consulted for a counter-proposal.
//
// newRound is the round the exchange under decision completes, i.e. the
// record's round after increment. A counter at or above target is taken
// immediately. A counter at or past the last allowed round is taken when
// it clears the floor (expiring on a reasonable late offer loses money for
// no reason) and refused when it does not, which also guarantees a
// negotiation never rests at the round cap with an open counter.
func resolveCounter(target, floor, counter float64, newRound, maxRounds int) (decision, bool) {
	switch {
	case counter >= target:
		return decideAccept, true
	case newRound >= maxRounds-1 && counter >= floor:
		return decideAccept, true
	case newRound >= maxRounds:
		return decideReject, true
	default:
		return decideCounter, false
	}
}

// applyDraft turns an advisor draft into a final decision, enforcing the
// floor veto. The advisor proposes, the engine disposes: the hint is
// advisory, the proposed amount is clamped to the floor, and a proposal
// that would undercut the broker's own counter degenerates to accepting
// that counter instead. The returned amount is the engine's counter when
// the decision is decideCounter.
func applyDraft(d *core.Draft, floor, counter float64) (decision, float64) {
	if d.Hint == core.HintAccept && counter >= floor {
		return decideAccept, counter
	}
	if d.Hint == core.HintReject && counter < floor {
		return decideReject, 0
	}
	amount := d.Amount
	if amount < floor {
		amount = floor
	}
	if amount <= counter {
		// counter >= amount >= floor, so taking it honors the floor.
		return decideAccept, counter
	}
	return decideCounter, amount
}

// clampOpening vets the advisor's opening proposal: an opening ask below
// the driver's own target is a drafting defect, not a strategy.
func clampOpening(amount, target float64) float64 {
	if amount < target {
		return target
	}
	return amount
}
