// Package balance is the read side of the ledger: it re-fetches the full
// expense set for a scope and reruns the pure aggregation on every read,
// caching the resulting snapshot until a change notification invalidates it.
package balance

import (
	"context"
	"sync"

	"github.com/rwaseem/divvy/internal/expense"
	"github.com/rwaseem/divvy/internal/ledger"
)

// ExpenseSource supplies every expense matching a scope. expense.Repository
// satisfies it; tests substitute an in-memory source.
type ExpenseSource interface {
	ListByGroup(ctx context.Context, groupID int64) ([]*expense.Expense, error)
	ListPersonal(ctx context.Context, userID int64) ([]*expense.Expense, error)
}

// scopeKey identifies one cached snapshot.
type scopeKey struct {
	personal bool
	id       int64 // group ID, or viewer ID for personal scope
}

// Service computes pairwise balances for a scope. Every computation is a full
// refetch plus a fresh ledger fold; there is no incremental state to drift.
// Snapshots are generation-stamped: a recompute that raced with an
// invalidation still serves its result but is never cached, so the next read
// sees current truth (latest wins).
type Service struct {
	source ExpenseSource

	mu         sync.Mutex
	generation uint64
	snapshots  map[scopeKey][]ledger.Entry
}

// NewService creates a new balance service
func NewService(source ExpenseSource) *Service {
	return &Service{
		source:    source,
		snapshots: make(map[scopeKey][]ledger.Entry),
	}
}

// GroupBalances returns the net pairwise balances for a group.
func (s *Service) GroupBalances(ctx context.Context, groupID int64) ([]ledger.Entry, error) {
	key := scopeKey{id: groupID}
	return s.balances(ctx, key, ledger.GroupScope(groupID), func(ctx context.Context) ([]*expense.Expense, error) {
		return s.source.ListByGroup(ctx, groupID)
	})
}

// PersonalBalances returns the net pairwise balances across the viewer's
// non-group expenses.
func (s *Service) PersonalBalances(ctx context.Context, viewerID int64) ([]ledger.Entry, error) {
	key := scopeKey{personal: true, id: viewerID}
	return s.balances(ctx, key, ledger.PersonalScope(viewerID), func(ctx context.Context) ([]*expense.Expense, error) {
		return s.source.ListPersonal(ctx, viewerID)
	})
}

// balances serves a snapshot from cache or recomputes it from the source.
func (s *Service) balances(ctx context.Context, key scopeKey, scope ledger.Scope, fetch func(context.Context) ([]*expense.Expense, error)) ([]ledger.Entry, error) {
	s.mu.Lock()
	if entries, ok := s.snapshots[key]; ok {
		s.mu.Unlock()
		return entries, nil
	}
	gen := s.generation
	s.mu.Unlock()

	expenses, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	entries := ledger.SortedEntries(ledger.ComputeBalances(expense.ToLedgerExpenses(expenses), scope))
	recomputeTotal.Inc()

	s.mu.Lock()
	if s.generation == gen {
		s.snapshots[key] = entries
	}
	s.mu.Unlock()

	return entries, nil
}

// Invalidate drops every cached snapshot. Called on ledger change
// notifications; any in-flight recompute started before the change will not
// repopulate the cache.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.generation++
	s.snapshots = make(map[scopeKey][]ledger.Entry)
	s.mu.Unlock()
}
