package core

import (
	"context"
	"time"
)

// ScanFilter narrows a store scan. Zero values disable a criterion.
type ScanFilter struct {
	// Statuses restricts matches to the given statuses; empty matches all.
	Statuses []Status
	// ExpiresBefore matches records whose deadline lies strictly before
	// the given instant; the zero time disables the check.
	ExpiresBefore time.Time
}

// Matches reports whether the negotiation satisfies the filter.
func (f ScanFilter) Matches(n *Negotiation) bool {
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if n.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if !f.ExpiresBefore.IsZero() && !n.ExpiresAt.Before(f.ExpiresBefore) {
		return false
	}
	return true
}

// NegotiationStore is durable keyed storage for negotiation records with
// optimistic-concurrency writes.
//
// Contract:
//   - Get returns a copy the caller may mutate freely.
//   - Create persists a new record as-is and fails with ErrAlreadyExists
//     on an id collision.
//   - PutIfVersion persists the record only if the stored version equals
//     expectedVersion, atomically bumping the stored (and the passed
//     record's) version to expectedVersion+1; a mismatch yields
//     ErrConcurrencyConflict, a missing record ErrNotFound. It is never a
//     silent overwrite.
//   - Scan returns copies of all records matching the filter.
type NegotiationStore interface {
	Create(ctx context.Context, n *Negotiation) error
	Get(ctx context.Context, id string) (*Negotiation, error)
	PutIfVersion(ctx context.Context, n *Negotiation, expectedVersion int64) error
	Scan(ctx context.Context, filter ScanFilter) ([]*Negotiation, error)
}
