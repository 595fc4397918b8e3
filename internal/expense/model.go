package expense

import (
	"time"

	"github.com/rwaseem/divvy/internal/ledger"
)

// Expense represents a shared cost record. Once created it is a pure read
// input to balance computation; settlements (IsSettlement) are synthetic
// offsetting records and are never edited.
type Expense struct {
	ID           int64     `json:"id"`
	GroupID      *int64    `json:"group_id,omitempty"` // nil = personal expense
	PayerID      int64     `json:"payer_id"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	IsSettlement bool      `json:"is_settlement"`
	TransferRef  *string   `json:"transfer_ref,omitempty"` // links a settlement expense to its audit record
	CreatedAt    time.Time `json:"created_at"`

	Participants []*Participant `json:"participants,omitempty"`
}

// Participant is one user's stake in an expense. A nil Share means the
// equal split applies; a non-nil Share is an explicit custom amount.
type Participant struct {
	UserID int64    `json:"user_id"`
	Share  *float64 `json:"share,omitempty"`
}

// ToLedger converts the record into the ledger core's computation shape.
func (e *Expense) ToLedger() ledger.Expense {
	le := ledger.Expense{
		PayerID:      e.PayerID,
		Amount:       e.Amount,
		GroupID:      e.GroupID,
		IsSettlement: e.IsSettlement,
		Participants: make([]int64, 0, len(e.Participants)),
	}
	for _, p := range e.Participants {
		le.Participants = append(le.Participants, p.UserID)
		if p.Share != nil {
			if le.SplitAmounts == nil {
				le.SplitAmounts = make(map[int64]float64, len(e.Participants))
			}
			le.SplitAmounts[p.UserID] = *p.Share
		}
	}
	return le
}

// ToLedgerExpenses converts a slice of records for aggregation.
func ToLedgerExpenses(expenses []*Expense) []ledger.Expense {
	out := make([]ledger.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = e.ToLedger()
	}
	return out
}
