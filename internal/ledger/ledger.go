// Package ledger is the pure balance-settlement core: it resolves per-participant
// shares for a single expense and folds collections of expenses into pairwise
// net balances. Everything in this package is a computation over its inputs;
// persistence and transport live elsewhere.
package ledger

import "math"

// Tolerance is the epsilon below which a net balance is treated as zero.
// Amounts are plain float64 currency units, so exact cancellation is not
// guaranteed; anything within one cent counts as settled.
const Tolerance = 0.01

// Expense is the computation-side view of one shared cost. The persistence
// layer converts its records into this shape before any balance math runs.
type Expense struct {
	PayerID      int64
	Amount       float64
	GroupID      *int64            // nil = personal (non-group) expense
	Participants []int64           // non-empty set of users sharing the cost
	SplitAmounts map[int64]float64 // optional explicit shares; nil/empty = equal split
	IsSettlement bool              // synthetic debt-clearing expense
}

// PairKey identifies a directed debt: Debtor owes Creditor.
// A structured key avoids the fragility of concatenated-string encodings.
type PairKey struct {
	Debtor   int64
	Creditor int64
}

// Entry is one surfaced balance: Debtor owes Creditor Amount (> Tolerance).
type Entry struct {
	Debtor   int64   `json:"debtor_id"`
	Creditor int64   `json:"creditor_id"`
	Amount   float64 `json:"amount"`
}

// Scope selects which expenses participate in a balance fold: one group,
// or a user's personal (non-group) expenses. The two are never mixed.
type Scope struct {
	groupID  *int64
	viewerID int64
}

// GroupScope folds only expenses belonging to the given group.
func GroupScope(groupID int64) Scope {
	return Scope{groupID: &groupID}
}

// PersonalScope folds only non-group expenses that involve the viewer,
// as payer or as participant.
func PersonalScope(viewerID int64) Scope {
	return Scope{viewerID: viewerID}
}

// contains reports whether the scope admits the expense.
func (s Scope) contains(e Expense) bool {
	if s.groupID != nil {
		return e.GroupID != nil && *e.GroupID == *s.groupID
	}
	if e.GroupID != nil {
		return false
	}
	if e.PayerID == s.viewerID {
		// Settlement offsets name the payer without listing them as a
		// participant; they still belong to the payer's personal ledger.
		return true
	}
	for _, p := range e.Participants {
		if p == s.viewerID {
			return true
		}
	}
	return false
}

// roundToCents rounds a float to 2 decimal places.
func roundToCents(value float64) float64 {
	return math.Round(value*100) / 100
}
