package settlement

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles settlement audit persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new settlement repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new settlement audit record
func (r *Repository) Create(ctx context.Context, s *Settlement) (*Settlement, error) {
	query := `
		INSERT INTO settlements (from_user_id, to_user_id, amount, group_id, transfer_ref)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		s.FromUserID,
		s.ToUserID,
		s.Amount,
		s.GroupID,
		s.TransferRef,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create settlement: %w", err)
	}

	return s, nil
}

// GetByID retrieves a settlement by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Settlement, error) {
	query := `
		SELECT id, from_user_id, to_user_id, amount, group_id, transfer_ref, created_at
		FROM settlements
		WHERE id = $1
	`

	s := &Settlement{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.FromUserID,
		&s.ToUserID,
		&s.Amount,
		&s.GroupID,
		&s.TransferRef,
		&s.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	return s, nil
}

// ListByUser retrieves settlements involving a user, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Settlement, int, error) {
	var total int
	countQuery := `
		SELECT COUNT(*) FROM settlements
		WHERE from_user_id = $1 OR to_user_id = $1
	`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count settlements: %w", err)
	}

	query := `
		SELECT id, from_user_id, to_user_id, amount, group_id, transfer_ref, created_at
		FROM settlements
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*Settlement
	for rows.Next() {
		s := &Settlement{}
		if err := rows.Scan(
			&s.ID,
			&s.FromUserID,
			&s.ToUserID,
			&s.Amount,
			&s.GroupID,
			&s.TransferRef,
			&s.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}

	return settlements, total, nil
}
