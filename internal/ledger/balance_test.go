package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupID(id int64) *int64 { return &id }

func TestComputeBalancesEqualSplitScenario(t *testing.T) {
	// Expense{amount:90, paidBy:U1, participants:[U1,U2,U3]} equal split
	// => (U2,U1):30 and (U3,U1):30.
	expenses := []Expense{
		{PayerID: 1, Amount: 90, GroupID: groupID(7), Participants: []int64{1, 2, 3}},
	}

	balances := ComputeBalances(expenses, GroupScope(7))

	require.Len(t, balances, 2)
	assert.InDelta(t, 30.0, balances[PairKey{Debtor: 2, Creditor: 1}], Tolerance)
	assert.InDelta(t, 30.0, balances[PairKey{Debtor: 3, Creditor: 1}], Tolerance)
}

func TestComputeBalancesNetsOppositeClaims(t *testing.T) {
	// E1{60, U1, [U1,U2]} gives U2 owes U1 30; E2{20, U2, [U1,U2]} gives
	// U1 owes U2 10; net is a single entry (U2,U1):20.
	expenses := []Expense{
		{PayerID: 1, Amount: 60, GroupID: groupID(7), Participants: []int64{1, 2}},
		{PayerID: 2, Amount: 20, GroupID: groupID(7), Participants: []int64{1, 2}},
	}

	balances := ComputeBalances(expenses, GroupScope(7))

	require.Len(t, balances, 1)
	assert.InDelta(t, 20.0, balances[PairKey{Debtor: 2, Creditor: 1}], Tolerance)
}

func TestComputeBalancesOvershootFlipsDirection(t *testing.T) {
	// A $5 claim one way followed by a $20 claim the other way leaves a
	// single $15 entry in the later direction, never two entries.
	expenses := []Expense{
		{PayerID: 1, Amount: 10, GroupID: groupID(7), Participants: []int64{1, 2}},
		{PayerID: 2, Amount: 40, GroupID: groupID(7), Participants: []int64{1, 2}},
	}

	balances := ComputeBalances(expenses, GroupScope(7))

	require.Len(t, balances, 1)
	assert.InDelta(t, 15.0, balances[PairKey{Debtor: 1, Creditor: 2}], Tolerance)
}

func TestComputeBalancesSymmetry(t *testing.T) {
	expenses := []Expense{
		{PayerID: 1, Amount: 100, GroupID: groupID(7), Participants: []int64{1, 2, 3}},
		{PayerID: 2, Amount: 70, GroupID: groupID(7), Participants: []int64{1, 2, 3}},
		{PayerID: 3, Amount: 45, GroupID: groupID(7), Participants: []int64{2, 3}},
	}

	balances := ComputeBalances(expenses, GroupScope(7))

	for key := range balances {
		reverse := PairKey{Debtor: key.Creditor, Creditor: key.Debtor}
		_, both := balances[reverse]
		assert.False(t, both, "pair %v surfaced in both directions", key)
		assert.Greater(t, balances[key], Tolerance)
	}
}

func TestComputeBalancesOrderIndependent(t *testing.T) {
	expenses := []Expense{
		{PayerID: 1, Amount: 100, GroupID: groupID(7), Participants: []int64{1, 2, 3}},
		{PayerID: 2, Amount: 70, GroupID: groupID(7), Participants: []int64{1, 2, 3}},
		{PayerID: 3, Amount: 45, GroupID: groupID(7), Participants: []int64{2, 3}},
	}
	reversed := []Expense{expenses[2], expenses[1], expenses[0]}

	first := ComputeBalances(expenses, GroupScope(7))
	second := ComputeBalances(expenses, GroupScope(7))
	third := ComputeBalances(reversed, GroupScope(7))

	assert.Equal(t, first, second, "recompute must be idempotent")
	assert.Equal(t, first, third, "fold must be order-independent")
}

func TestComputeBalancesScopePartitioning(t *testing.T) {
	expenses := []Expense{
		{PayerID: 1, Amount: 60, GroupID: groupID(7), Participants: []int64{1, 2}},
		{PayerID: 1, Amount: 40, GroupID: groupID(8), Participants: []int64{1, 2}},
		{PayerID: 2, Amount: 30, Participants: []int64{1, 2}},
		{PayerID: 3, Amount: 90, Participants: []int64{3, 4}},
	}

	group := ComputeBalances(expenses, GroupScope(7))
	require.Len(t, group, 1)
	assert.InDelta(t, 30.0, group[PairKey{Debtor: 2, Creditor: 1}], Tolerance)

	// Personal scope: only non-group expenses involving the viewer.
	personal := ComputeBalances(expenses, PersonalScope(1))
	require.Len(t, personal, 1)
	assert.InDelta(t, 15.0, personal[PairKey{Debtor: 1, Creditor: 2}], Tolerance)
}

func TestComputeBalancesSkipsPayerOnlyExpense(t *testing.T) {
	expenses := []Expense{
		{PayerID: 1, Amount: 50, GroupID: groupID(7), Participants: []int64{1}},
	}

	assert.Empty(t, ComputeBalances(expenses, GroupScope(7)))
}

func TestComputeBalancesSettlementCancels(t *testing.T) {
	shared := []Expense{
		{PayerID: 2, Amount: 100, GroupID: groupID(7), Participants: []int64{1, 2}},
	}
	balances := ComputeBalances(shared, GroupScope(7))
	require.InDelta(t, 50.0, balances[PairKey{Debtor: 1, Creditor: 2}], Tolerance)

	// The settlement recorder appends a synthetic expense paid by the debtor
	// whose only participant is the creditor; refolding cancels the pair.
	settled := append(shared, Expense{
		PayerID:      1,
		Amount:       50,
		GroupID:      groupID(7),
		Participants: []int64{2},
		SplitAmounts: map[int64]float64{2: 50},
		IsSettlement: true,
	})

	assert.Empty(t, ComputeBalances(settled, GroupScope(7)))
}

func TestComputeBalancesPartialSettlementLeavesResidual(t *testing.T) {
	expenses := []Expense{
		{PayerID: 2, Amount: 100, GroupID: groupID(7), Participants: []int64{1, 2}},
		{
			PayerID:      1,
			Amount:       20,
			GroupID:      groupID(7),
			Participants: []int64{2},
			SplitAmounts: map[int64]float64{2: 20},
			IsSettlement: true,
		},
	}

	balances := ComputeBalances(expenses, GroupScope(7))

	require.Len(t, balances, 1)
	assert.InDelta(t, 30.0, balances[PairKey{Debtor: 1, Creditor: 2}], Tolerance)
}

func TestPersonalScopeAdmitsSettlementByPayer(t *testing.T) {
	// The offset names the debtor only as payer, not as participant; it must
	// still enter the debtor's personal fold so the pair cancels their view.
	expenses := []Expense{
		{PayerID: 2, Amount: 100, Participants: []int64{1, 2}},
		{
			PayerID:      1,
			Amount:       50,
			Participants: []int64{2},
			SplitAmounts: map[int64]float64{2: 50},
			IsSettlement: true,
		},
	}

	assert.Empty(t, ComputeBalances(expenses, PersonalScope(1)))
	assert.Empty(t, ComputeBalances(expenses, PersonalScope(2)))
}

func TestSortedEntries(t *testing.T) {
	balances := map[PairKey]float64{
		{Debtor: 3, Creditor: 1}: 12.5,
		{Debtor: 2, Creditor: 1}: 30,
		{Debtor: 2, Creditor: 4}: 7,
	}

	entries := SortedEntries(balances)

	require.Len(t, entries, 3)
	assert.Equal(t, Entry{Debtor: 2, Creditor: 1, Amount: 30}, entries[0])
	assert.Equal(t, Entry{Debtor: 2, Creditor: 4, Amount: 7}, entries[1])
	assert.Equal(t, Entry{Debtor: 3, Creditor: 1, Amount: 12.5}, entries[2])
}
