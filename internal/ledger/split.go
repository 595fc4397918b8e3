package ledger

import (
	"errors"
	"fmt"
	"math"
)

// Common errors
var (
	ErrNoParticipants = errors.New("expense has no participants")
	ErrNonPositive    = errors.New("amount must be positive")
)

// ValidationError reports an invalid custom split supplied at expense-creation
// time. UserID names the offending participant when one entry is at fault;
// for a total mismatch it is zero and Got/Want carry the sums.
type ValidationError struct {
	UserID int64
	Reason string
	Got    float64
	Want   float64
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.UserID != 0 {
		return fmt.Sprintf("invalid split for user %d: %s", e.UserID, e.Reason)
	}
	if e.Want != 0 || e.Got != 0 {
		return fmt.Sprintf("invalid split: %s (got %.2f, want %.2f)", e.Reason, e.Got, e.Want)
	}
	return "invalid split: " + e.Reason
}

// ResolveShares computes each participant's owed share for one expense.
//
// With no SplitAmounts every participant owes amount/len(participants).
// With SplitAmounts, a participant's share is their entry when present and the
// equal share otherwise; partially specified maps are handled defensively
// here; strict validation belongs to ValidateSplits at creation time.
//
// An expense with no participants is rejected explicitly rather than producing
// a degenerate empty map. A zero amount yields zero shares.
func ResolveShares(e Expense) (map[int64]float64, error) {
	if len(e.Participants) == 0 {
		return nil, ErrNoParticipants
	}

	equalShare := e.Amount / float64(len(e.Participants))

	shares := make(map[int64]float64, len(e.Participants))
	for _, p := range e.Participants {
		if custom, ok := e.SplitAmounts[p]; ok {
			shares[p] = custom
		} else {
			shares[p] = equalShare
		}
	}

	return shares, nil
}

// ValidateSplits checks a user-supplied custom split before anything is
// persisted. Every participant must have a positive entry, entries for
// non-participants are rejected, and the entries must sum to the expense
// amount within Tolerance. A nil/empty splits map is valid (equal split).
func ValidateSplits(amount float64, participants []int64, splits map[int64]float64) error {
	if len(splits) == 0 {
		return nil
	}

	selected := make(map[int64]bool, len(participants))
	for _, p := range participants {
		selected[p] = true
	}

	for userID := range splits {
		if !selected[userID] {
			return &ValidationError{UserID: userID, Reason: "not a participant of this expense"}
		}
	}

	var total float64
	for _, p := range participants {
		share, ok := splits[p]
		if !ok {
			return &ValidationError{UserID: p, Reason: "missing split amount"}
		}
		if share <= 0 {
			return &ValidationError{UserID: p, Reason: "split amount must be positive"}
		}
		total += share
	}

	if math.Abs(total-amount) > Tolerance {
		return &ValidationError{
			Reason: "split amounts do not sum to the expense amount",
			Got:    roundToCents(total),
			Want:   roundToCents(amount),
		}
	}

	return nil
}
