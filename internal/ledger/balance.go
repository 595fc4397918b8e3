package ledger

import (
	"math"
	"sort"
)

// unorderedPair is the canonical working key for a pair of users: Lo < Hi.
// The fold accumulates a signed net per unordered pair and only fixes a
// direction when the result is surfaced, so claim order never matters.
type unorderedPair struct {
	Lo, Hi int64
}

// ComputeBalances folds the expenses admitted by scope into pairwise net
// balances keyed (debtor, creditor). The fold is commutative and associative:
// calling it twice, or with the input reordered, produces identical output.
// It holds no state between calls and never mutates its input.
//
// For every expense, each participant other than the payer contributes a claim
// "participant owes payer their share". Claims between the same two users net
// against each other; a pair whose net is within Tolerance of zero is absent
// from the result, and at most one directed entry ever exists per pair.
//
// Expenses whose participants resolve to nothing (payer-only, or empty) are
// skipped rather than rejected; upstream validation owns those cases.
func ComputeBalances(expenses []Expense, scope Scope) map[PairKey]float64 {
	// net > 0 means Lo owes Hi; net < 0 means Hi owes Lo.
	nets := make(map[unorderedPair]float64)

	for _, e := range expenses {
		if !scope.contains(e) {
			continue
		}

		shares, err := ResolveShares(e)
		if err != nil {
			// Degenerate record (no participants); nothing to fold.
			continue
		}

		for userID, share := range shares {
			if userID == e.PayerID {
				continue // self-claim
			}
			pair, sign := canonical(userID, e.PayerID)
			nets[pair] += sign * share
		}
	}

	balances := make(map[PairKey]float64, len(nets))
	for pair, net := range nets {
		if math.Abs(net) <= Tolerance {
			continue
		}
		if net > 0 {
			balances[PairKey{Debtor: pair.Lo, Creditor: pair.Hi}] = roundToCents(net)
		} else {
			balances[PairKey{Debtor: pair.Hi, Creditor: pair.Lo}] = roundToCents(-net)
		}
	}

	return balances
}

// canonical orders a debtor/creditor pair and returns the sign with which a
// claim in that direction contributes to the pair's signed net.
func canonical(debtor, creditor int64) (unorderedPair, float64) {
	if debtor < creditor {
		return unorderedPair{Lo: debtor, Hi: creditor}, 1
	}
	return unorderedPair{Lo: creditor, Hi: debtor}, -1
}

// SortedEntries flattens a balance map into entries ordered by debtor then
// creditor, for stable display and JSON output.
func SortedEntries(balances map[PairKey]float64) []Entry {
	entries := make([]Entry, 0, len(balances))
	for key, amount := range balances {
		entries = append(entries, Entry{Debtor: key.Debtor, Creditor: key.Creditor, Amount: amount})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Debtor != entries[j].Debtor {
			return entries[i].Debtor < entries[j].Debtor
		}
		return entries[i].Creditor < entries[j].Creditor
	})
	return entries
}
