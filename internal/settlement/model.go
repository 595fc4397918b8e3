package settlement

import "time"

// Settlement is the audit record of a debt payment: FromUserID (the debtor)
// paid ToUserID (the creditor). It is informational only: balance math sees
// the synthetic offsetting expense written alongside it, never this record.
// TransferRef ties the two writes together.
type Settlement struct {
	ID          int64     `json:"id"`
	FromUserID  int64     `json:"from_user_id"`
	ToUserID    int64     `json:"to_user_id"`
	Amount      float64   `json:"amount"`
	GroupID     *int64    `json:"group_id,omitempty"`
	TransferRef string    `json:"transfer_ref"`
	CreatedAt   time.Time `json:"created_at"`
}
