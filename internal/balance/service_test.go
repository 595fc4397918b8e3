package balance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwaseem/divvy/internal/expense"
	"github.com/rwaseem/divvy/internal/ledger"
)

// fakeSource serves a mutable expense list and counts fetches. onFetch, when
// set, runs during the fetch to simulate concurrent changes.
type fakeSource struct {
	expenses []*expense.Expense
	fetches  int
	onFetch  func()
}

func (f *fakeSource) ListByGroup(_ context.Context, groupID int64) ([]*expense.Expense, error) {
	f.fetches++
	if f.onFetch != nil {
		f.onFetch()
	}
	var out []*expense.Expense
	for _, e := range f.expenses {
		if e.GroupID != nil && *e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeSource) ListPersonal(_ context.Context, userID int64) ([]*expense.Expense, error) {
	f.fetches++
	if f.onFetch != nil {
		f.onFetch()
	}
	var out []*expense.Expense
	for _, e := range f.expenses {
		if e.GroupID != nil {
			continue
		}
		for _, p := range e.Participants {
			if p.UserID == userID {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

func groupExpense(groupID, payerID int64, amount float64, participants ...int64) *expense.Expense {
	e := &expense.Expense{GroupID: &groupID, PayerID: payerID, Amount: amount}
	for _, p := range participants {
		e.Participants = append(e.Participants, &expense.Participant{UserID: p})
	}
	return e
}

func TestGroupBalancesComputesAndCaches(t *testing.T) {
	source := &fakeSource{expenses: []*expense.Expense{
		groupExpense(7, 1, 90, 1, 2, 3),
	}}
	svc := NewService(source)

	entries, err := svc.GroupBalances(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, []ledger.Entry{
		{Debtor: 2, Creditor: 1, Amount: 30},
		{Debtor: 3, Creditor: 1, Amount: 30},
	}, entries)

	// Second read is served from the snapshot.
	_, err = svc.GroupBalances(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 1, source.fetches)
}

func TestInvalidateForcesRecompute(t *testing.T) {
	source := &fakeSource{expenses: []*expense.Expense{
		groupExpense(7, 1, 60, 1, 2),
	}}
	svc := NewService(source)

	entries, err := svc.GroupBalances(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.InDelta(t, 30.0, entries[0].Amount, ledger.Tolerance)

	// The debtor settles up; a change notification lands.
	settleShare := 30.0
	gid := int64(7)
	ref := "ref"
	source.expenses = append(source.expenses, &expense.Expense{
		GroupID:      &gid,
		PayerID:      2,
		Amount:       30,
		IsSettlement: true,
		TransferRef:  &ref,
		Participants: []*expense.Participant{{UserID: 1, Share: &settleShare}},
	})
	svc.Invalidate()

	entries, err = svc.GroupBalances(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, entries, "settlement must cancel the pair after recompute")
	assert.Equal(t, 2, source.fetches)
}

func TestRecomputeRacingInvalidationIsNotCached(t *testing.T) {
	source := &fakeSource{expenses: []*expense.Expense{
		groupExpense(7, 1, 60, 1, 2),
	}}
	svc := NewService(source)

	// An invalidation arrives while the first recompute is reading the
	// source: its result is served but must not be cached.
	source.onFetch = func() {
		svc.Invalidate()
		source.onFetch = nil
	}

	_, err := svc.GroupBalances(context.Background(), 7)
	require.NoError(t, err)

	_, err = svc.GroupBalances(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, source.fetches, "stale snapshot must not be served")
}

func TestPersonalBalancesScopedToViewer(t *testing.T) {
	personal := &expense.Expense{
		PayerID: 2,
		Amount:  40,
		Participants: []*expense.Participant{
			{UserID: 1}, {UserID: 2},
		},
	}
	source := &fakeSource{expenses: []*expense.Expense{
		personal,
		groupExpense(7, 1, 90, 1, 2), // group expense stays out of personal scope
	}}
	svc := NewService(source)

	entries, err := svc.PersonalBalances(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].Debtor)
	assert.Equal(t, int64(2), entries[0].Creditor)
	assert.InDelta(t, 20.0, entries[0].Amount, ledger.Tolerance)
}
