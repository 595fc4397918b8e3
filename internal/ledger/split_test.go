package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSharesEqual(t *testing.T) {
	e := Expense{PayerID: 1, Amount: 90, Participants: []int64{1, 2, 3}}

	shares, err := ResolveShares(e)
	require.NoError(t, err)

	require.Len(t, shares, 3)
	var sum float64
	for _, userID := range e.Participants {
		assert.InDelta(t, 30.0, shares[userID], Tolerance)
		sum += shares[userID]
	}
	assert.InDelta(t, e.Amount, sum, Tolerance, "shares must conserve the total")
}

func TestResolveSharesEqualNoRemainderRedistribution(t *testing.T) {
	// A three-way split of 10.00 yields 3.333... per head, accepted as-is.
	e := Expense{PayerID: 1, Amount: 10, Participants: []int64{1, 2, 3}}

	shares, err := ResolveShares(e)
	require.NoError(t, err)

	for _, userID := range e.Participants {
		assert.InDelta(t, 10.0/3.0, shares[userID], 1e-9)
	}
}

func TestResolveSharesCustom(t *testing.T) {
	e := Expense{
		PayerID:      1,
		Amount:       100,
		Participants: []int64{1, 2, 3},
		SplitAmounts: map[int64]float64{1: 50, 2: 30, 3: 20},
	}

	shares, err := ResolveShares(e)
	require.NoError(t, err)

	assert.Equal(t, map[int64]float64{1: 50, 2: 30, 3: 20}, shares)
}

func TestResolveSharesPartialCustomFallsBack(t *testing.T) {
	// Defensive handling of a partially specified split: the missing
	// participant gets the equal share.
	e := Expense{
		PayerID:      1,
		Amount:       90,
		Participants: []int64{1, 2, 3},
		SplitAmounts: map[int64]float64{2: 40},
	}

	shares, err := ResolveShares(e)
	require.NoError(t, err)

	assert.InDelta(t, 30.0, shares[1], Tolerance)
	assert.InDelta(t, 40.0, shares[2], Tolerance)
	assert.InDelta(t, 30.0, shares[3], Tolerance)
}

func TestResolveSharesNoParticipants(t *testing.T) {
	_, err := ResolveShares(Expense{PayerID: 1, Amount: 50})
	assert.ErrorIs(t, err, ErrNoParticipants)
}

func TestResolveSharesZeroAmount(t *testing.T) {
	shares, err := ResolveShares(Expense{PayerID: 1, Amount: 0, Participants: []int64{1, 2}})
	require.NoError(t, err)
	assert.Zero(t, shares[1])
	assert.Zero(t, shares[2])
}

func TestValidateSplits(t *testing.T) {
	tests := []struct {
		name         string
		amount       float64
		participants []int64
		splits       map[int64]float64
		wantUserID   int64
		wantErr      bool
	}{
		{
			name:         "nil splits is an equal split",
			amount:       60,
			participants: []int64{1, 2},
		},
		{
			name:         "exact sum within tolerance",
			amount:       100,
			participants: []int64{1, 2, 3},
			splits:       map[int64]float64{1: 33.33, 2: 33.33, 3: 33.34},
		},
		{
			name:         "sum off by more than tolerance",
			amount:       100,
			participants: []int64{1, 2},
			splits:       map[int64]float64{1: 60, 2: 50},
			wantErr:      true,
		},
		{
			name:         "missing entry for a participant",
			amount:       100,
			participants: []int64{1, 2, 3},
			splits:       map[int64]float64{1: 50, 2: 50},
			wantUserID:   3,
			wantErr:      true,
		},
		{
			name:         "non-positive entry",
			amount:       100,
			participants: []int64{1, 2},
			splits:       map[int64]float64{1: 100, 2: 0},
			wantUserID:   2,
			wantErr:      true,
		},
		{
			name:         "entry for a non-participant",
			amount:       100,
			participants: []int64{1, 2},
			splits:       map[int64]float64{1: 50, 2: 40, 9: 10},
			wantUserID:   9,
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSplits(tt.amount, tt.participants, tt.splits)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantUserID, vErr.UserID)
		})
	}
}

func TestValidateSplitsTotalMismatchReportsSums(t *testing.T) {
	err := ValidateSplits(100, []int64{1, 2}, map[int64]float64{1: 70, 2: 50})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, vErr.UserID)
	assert.InDelta(t, 120.0, vErr.Got, Tolerance)
	assert.InDelta(t, 100.0, vErr.Want, Tolerance)
}
