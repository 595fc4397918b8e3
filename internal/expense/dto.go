package expense

import "github.com/rwaseem/divvy/internal/ledger"

// ParticipantInput names one participant when creating or updating an
// expense. Share is only set for custom splits.
type ParticipantInput struct {
	UserID int64    `json:"user_id" validate:"required"`
	Share  *float64 `json:"share,omitempty"`
}

// CreateExpenseRequest represents the request to create an expense.
// Omitting group_id records a personal (non-group) expense.
type CreateExpenseRequest struct {
	GroupID      *int64             `json:"group_id,omitempty"`
	Description  string             `json:"description" validate:"required,min=1,max=255"`
	Amount       float64            `json:"amount" validate:"required,gt=0"`
	Participants []ParticipantInput `json:"participants" validate:"required,min=1"`
}

// UpdateExpenseRequest represents the request to update a non-settlement
// expense. Nil fields are left unchanged.
type UpdateExpenseRequest struct {
	Description  *string            `json:"description,omitempty" validate:"omitempty,min=1,max=255"`
	Amount       *float64           `json:"amount,omitempty" validate:"omitempty,gt=0"`
	PayerID      *int64             `json:"payer_id,omitempty"`
	Participants []ParticipantInput `json:"participants,omitempty"`
}

// ShareResponse is one participant's resolved owed share.
type ShareResponse struct {
	UserID int64   `json:"user_id"`
	Amount float64 `json:"amount"`
}

// ExpenseResponse represents the response for an expense, including the
// per-participant shares resolved by the ledger core.
type ExpenseResponse struct {
	ID           int64           `json:"id"`
	GroupID      *int64          `json:"group_id,omitempty"`
	PayerID      int64           `json:"payer_id"`
	Description  string          `json:"description"`
	Amount       float64         `json:"amount"`
	IsSettlement bool            `json:"is_settlement"`
	CreatedAt    string          `json:"created_at"`
	Shares       []ShareResponse `json:"shares,omitempty"`
}

// ToResponse converts an Expense model to an ExpenseResponse DTO with
// resolved shares attached.
func (e *Expense) ToResponse() *ExpenseResponse {
	resp := &ExpenseResponse{
		ID:           e.ID,
		GroupID:      e.GroupID,
		PayerID:      e.PayerID,
		Description:  e.Description,
		Amount:       e.Amount,
		IsSettlement: e.IsSettlement,
		CreatedAt:    e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}

	shares, err := ledger.ResolveShares(e.ToLedger())
	if err != nil {
		return resp
	}
	for _, p := range e.Participants {
		resp.Shares = append(resp.Shares, ShareResponse{UserID: p.UserID, Amount: shares[p.UserID]})
	}
	return resp
}

// participantsToModel converts request inputs into participant models.
func participantsToModel(inputs []ParticipantInput) []*Participant {
	participants := make([]*Participant, len(inputs))
	for i, in := range inputs {
		participants[i] = &Participant{UserID: in.UserID, Share: in.Share}
	}
	return participants
}

// splitAmounts extracts the explicit custom shares from request inputs,
// or nil when every participant takes the equal split.
func splitAmounts(inputs []ParticipantInput) map[int64]float64 {
	var splits map[int64]float64
	for _, in := range inputs {
		if in.Share != nil {
			if splits == nil {
				splits = make(map[int64]float64, len(inputs))
			}
			splits[in.UserID] = *in.Share
		}
	}
	return splits
}

// participantIDs lists the user IDs from request inputs.
func participantIDs(inputs []ParticipantInput) []int64 {
	ids := make([]int64, len(inputs))
	for i, in := range inputs {
		ids[i] = in.UserID
	}
	return ids
}
