package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository handles expense persistence. It is also the read source the
// balance service aggregates over: the scope listing methods return every
// matching record so recomputes always see current truth.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts an expense and its participant rows in one transaction.
func (r *Repository) Create(ctx context.Context, e *Expense) (*Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (group_id, payer_id, description, amount, is_settlement, transfer_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	if err := tx.QueryRowContext(ctx, query,
		e.GroupID,
		e.PayerID,
		e.Description,
		e.Amount,
		e.IsSettlement,
		e.TransferRef,
	).Scan(&e.ID, &e.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	if err := insertParticipants(ctx, tx, e.ID, e.Participants); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense: %w", err)
	}

	return e, nil
}

// insertParticipants writes the participant rows for an expense.
func insertParticipants(ctx context.Context, tx *sql.Tx, expenseID int64, participants []*Participant) error {
	query := `INSERT INTO expense_participants (expense_id, user_id, share) VALUES ($1, $2, $3)`
	for _, p := range participants {
		if _, err := tx.ExecContext(ctx, query, expenseID, p.UserID, p.Share); err != nil {
			return fmt.Errorf("failed to add participant %d: %w", p.UserID, err)
		}
	}
	return nil
}

// GetByID retrieves an expense with its participants
func (r *Repository) GetByID(ctx context.Context, id int64) (*Expense, error) {
	query := `
		SELECT id, group_id, payer_id, description, amount, is_settlement, transfer_ref, created_at
		FROM expenses
		WHERE id = $1
	`

	e := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID,
		&e.GroupID,
		&e.PayerID,
		&e.Description,
		&e.Amount,
		&e.IsSettlement,
		&e.TransferRef,
		&e.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := r.attachParticipants(ctx, []*Expense{e}); err != nil {
		return nil, err
	}

	return e, nil
}

// ListByGroup retrieves every expense scoped to a group, newest first.
func (r *Repository) ListByGroup(ctx context.Context, groupID int64) ([]*Expense, error) {
	query := `
		SELECT id, group_id, payer_id, description, amount, is_settlement, transfer_ref, created_at
		FROM expenses
		WHERE group_id = $1
		ORDER BY created_at DESC, id DESC
	`
	return r.list(ctx, query, groupID)
}

// ListPersonal retrieves every non-group expense the user is involved in,
// as payer or as participant, newest first. Settlement offsets name the
// payer without listing them as a participant, so both checks are needed.
func (r *Repository) ListPersonal(ctx context.Context, userID int64) ([]*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.payer_id, e.description, e.amount, e.is_settlement, e.transfer_ref, e.created_at
		FROM expenses e
		WHERE e.group_id IS NULL
		  AND (e.payer_id = $1 OR EXISTS (
			SELECT 1 FROM expense_participants p
			WHERE p.expense_id = e.id AND p.user_id = $1
		  ))
		ORDER BY e.created_at DESC, e.id DESC
	`
	return r.list(ctx, query, userID)
}

// list runs an expense query and attaches participants to every row.
func (r *Repository) list(ctx context.Context, query string, args ...interface{}) ([]*Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		e := &Expense{}
		if err := rows.Scan(
			&e.ID,
			&e.GroupID,
			&e.PayerID,
			&e.Description,
			&e.Amount,
			&e.IsSettlement,
			&e.TransferRef,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	if err := r.attachParticipants(ctx, expenses); err != nil {
		return nil, err
	}

	return expenses, nil
}

// attachParticipants loads participant rows for the given expenses in a
// single query keyed by expense ID.
func (r *Repository) attachParticipants(ctx context.Context, expenses []*Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	ids := make([]int64, len(expenses))
	byID := make(map[int64]*Expense, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
		byID[e.ID] = e
	}

	query := `
		SELECT expense_id, user_id, share
		FROM expense_participants
		WHERE expense_id = ANY($1)
		ORDER BY expense_id, user_id
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID int64
		p := &Participant{}
		if err := rows.Scan(&expenseID, &p.UserID, &p.Share); err != nil {
			return fmt.Errorf("failed to scan participant: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Participants = append(e.Participants, p)
		}
	}
	return rows.Err()
}

// Update rewrites an expense's editable fields and replaces its participant
// set in one transaction.
func (r *Repository) Update(ctx context.Context, e *Expense) (*Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE expenses
		SET description = $2, amount = $3, payer_id = $4
		WHERE id = $1
		RETURNING created_at
	`
	if err := tx.QueryRowContext(ctx, query, e.ID, e.Description, e.Amount, e.PayerID).Scan(&e.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_participants WHERE expense_id = $1`, e.ID); err != nil {
		return nil, fmt.Errorf("failed to clear participants: %w", err)
	}
	if err := insertParticipants(ctx, tx, e.ID, e.Participants); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit expense update: %w", err)
	}

	return e, nil
}

// Delete removes an expense and its participant rows.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM expense_participants WHERE expense_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participants: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("expense not found")
	}

	return nil
}
