package group

import "time"

// Group defines the boundary for one flavor of balance aggregation: expenses
// scoped to a group are only ever folded with other expenses of that group.
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Member is a user's membership in a group. The creator is always a member.
type Member struct {
	GroupID  int64     `json:"group_id"`
	UserID   int64     `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`

	// Populated via JOIN
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}
