package advisor

import (
	"context"
	"fmt"
	"math"

	"github.com/hupe1980/freightmesh/core"
)

// HeuristicOptions configure the deterministic advisor.
type HeuristicOptions struct {
	// OpeningMarkup pads the opening ask above the target rate
	// (0.05 asks 5% over target).
	OpeningMarkup float64
}

// Heuristic is a deterministic StrategyAdvisor requiring no model: the
// opening ask is the target padded by a markup, and counters split the
// difference between the agent's last offer and the broker's counter. It
// backs tests, examples and the façade default.
type Heuristic struct {
	opts HeuristicOptions
}

var _ core.StrategyAdvisor = (*Heuristic)(nil)

// NewHeuristic constructs a Heuristic advisor with a 5% opening markup.
func NewHeuristic(optFns ...func(o *HeuristicOptions)) *Heuristic {
	opts := HeuristicOptions{OpeningMarkup: 0.05}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Heuristic{opts: opts}
}

// Draft implements core.StrategyAdvisor.
func (h *Heuristic) Draft(_ context.Context, dc core.DraftContext) (*core.Draft, error) {
	if dc.Kind == core.DraftOpening {
		amount := round2(dc.TargetRate * (1 + h.opts.OpeningMarkup))
		return &core.Draft{
			Message: fmt.Sprintf("We can move load %s for $%.2f. The rate reflects current lane conditions.", dc.LoadID, amount),
			Amount:  amount,
			Hint:    core.HintCounter,
		}, nil
	}

	if dc.CounterOffer >= dc.TargetRate {
		return &core.Draft{
			Message: fmt.Sprintf("We accept $%.2f. Please send the rate confirmation.", dc.CounterOffer),
			Amount:  dc.CounterOffer,
			Hint:    core.HintAccept,
		}, nil
	}

	lastOffer := dc.TargetRate
	for i := len(dc.History) - 1; i >= 0; i-- {
		if dc.History[i].Actor == core.ActorAgent {
			lastOffer = dc.History[i].Amount
			break
		}
	}

	amount := round2((lastOffer + dc.CounterOffer) / 2)
	return &core.Draft{
		Message: fmt.Sprintf("We can't do $%.2f, but we could meet you at $%.2f.", dc.CounterOffer, amount),
		Amount:  amount,
		Hint:    core.HintCounter,
	}, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
