package settlement

// CreateSettlementRequest represents the request to record a debt payment.
// The authenticated user is the debtor; to_user_id is the creditor being
// paid. The amount is normally taken verbatim from a balance entry but any
// positive amount is accepted (partial payments leave a residual).
type CreateSettlementRequest struct {
	ToUserID int64   `json:"to_user_id" validate:"required"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	GroupID  *int64  `json:"group_id,omitempty"`
}

// SettlementResponse represents the response for a settlement
type SettlementResponse struct {
	ID          int64   `json:"id"`
	FromUserID  int64   `json:"from_user_id"`
	ToUserID    int64   `json:"to_user_id"`
	Amount      float64 `json:"amount"`
	GroupID     *int64  `json:"group_id,omitempty"`
	TransferRef string  `json:"transfer_ref"`
	CreatedAt   string  `json:"created_at"`
}

// ToResponse converts a Settlement model to a SettlementResponse DTO
func (s *Settlement) ToResponse() *SettlementResponse {
	return &SettlementResponse{
		ID:          s.ID,
		FromUserID:  s.FromUserID,
		ToUserID:    s.ToUserID,
		Amount:      s.Amount,
		GroupID:     s.GroupID,
		TransferRef: s.TransferRef,
		CreatedAt:   s.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
