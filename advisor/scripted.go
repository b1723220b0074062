package advisor

import (
	"context"
	"sync"

	"github.com/hupe1980/freightmesh/core"
)

// Scripted is a StrategyAdvisor that replays canned drafts in order,
// then repeats the last one. Useful in tests that need exact advisor
// output without a model.
type Scripted struct {
	mu     sync.Mutex
	drafts []core.Draft
	err    error
	calls  int
}

var _ core.StrategyAdvisor = (*Scripted)(nil)

// NewScripted constructs a Scripted advisor replaying the given drafts.
func NewScripted(drafts ...core.Draft) *Scripted {
	return &Scripted{drafts: drafts}
}

// FailWith makes every subsequent Draft call return err.
func (s *Scripted) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns how many times Draft has been invoked.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Draft implements core.StrategyAdvisor.
func (s *Scripted) Draft(_ context.Context, _ core.DraftContext) (*core.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.drafts) == 0 {
		return &core.Draft{Hint: core.HintCounter}, nil
	}
	idx := s.calls - 1
	if idx >= len(s.drafts) {
		idx = len(s.drafts) - 1
	}
	d := s.drafts[idx]
	return &d, nil
}
