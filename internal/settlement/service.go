package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rwaseem/divvy/internal/expense"
)

// Common errors
var (
	ErrSettlementNotFound = errors.New("settlement not found")
	ErrInvalidAmount      = errors.New("settlement amount must be positive")
	ErrSelfSettlement     = errors.New("cannot settle a debt with yourself")
)

// Store is the settlement audit persistence surface. *Repository satisfies
// it; tests substitute an in-memory implementation.
type Store interface {
	Create(ctx context.Context, s *Settlement) (*Settlement, error)
	GetByID(ctx context.Context, id int64) (*Settlement, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Settlement, int, error)
}

// ExpenseAppender writes the synthetic offsetting expense for a settlement.
// Satisfied by expense.Service.
type ExpenseAppender interface {
	AppendSettlementOffset(ctx context.Context, debtorID, creditorID int64, amount float64, groupID *int64, transferRef string) (*expense.Expense, error)
}

// Service records debt payments. A settlement is two related but
// independently observable writes: the audit record, and the synthetic
// expense that cancels the balance entry once the aggregator refolds the
// expense set. No atomicity across the two is assumed; a failure on either
// write is reported as a failed operation and the caller re-fetches truth.
type Service struct {
	store    Store
	expenses ExpenseAppender
}

// NewService creates a new settlement service
func NewService(store Store, expenses ExpenseAppender) *Service {
	return &Service{store: store, expenses: expenses}
}

// Record persists a debt payment from the debtor to the creditor. The amount
// need not match the outstanding balance: paying less leaves the residual
// after the next aggregation, paying the full amount removes the pair.
func (s *Service) Record(ctx context.Context, debtorID, creditorID int64, amount float64, groupID *int64) (*Settlement, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if debtorID == creditorID {
		return nil, ErrSelfSettlement
	}

	transferRef := uuid.NewString()

	audit, err := s.store.Create(ctx, &Settlement{
		FromUserID:  debtorID,
		ToUserID:    creditorID,
		Amount:      amount,
		GroupID:     groupID,
		TransferRef: transferRef,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record settlement: %w", err)
	}

	if _, err := s.expenses.AppendSettlementOffset(ctx, debtorID, creditorID, amount, groupID, transferRef); err != nil {
		// The audit row exists but the offsetting expense does not, so the
		// balance is unchanged. Surface the failure; the audit record is
		// informational and carries the ref for reconciliation.
		slog.Error("settlement offset write failed",
			"transfer_ref", transferRef,
			"from", debtorID,
			"to", creditorID,
			"error", err,
		)
		return nil, fmt.Errorf("failed to record settlement expense: %w", err)
	}

	slog.Info("settlement recorded",
		"transfer_ref", transferRef,
		"from", debtorID,
		"to", creditorID,
		"amount", amount,
	)

	return audit, nil
}

// GetByID retrieves a settlement by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Settlement, error) {
	settlement, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, ErrSettlementNotFound
	}
	return settlement, nil
}

// ListByUser retrieves all settlements involving a user
func (s *Service) ListByUser(ctx context.Context, userID int64, page, perPage int) ([]*Settlement, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := (page - 1) * perPage
	return s.store.ListByUser(ctx, userID, perPage, offset)
}
