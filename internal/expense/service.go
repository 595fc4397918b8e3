package expense

import (
	"context"
	"errors"
	"fmt"

	"github.com/rwaseem/divvy/internal/ledger"
)

// Common errors
var (
	ErrExpenseNotFound      = errors.New("expense not found")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrDuplicateParticipant = errors.New("duplicate participant")
	ErrPayerNotParticipant  = errors.New("payer must be one of the participants")
	ErrSettlementImmutable  = errors.New("settlement expenses cannot be modified")
	ErrNotAuthorized        = errors.New("not authorized to perform this action")
)

// Store is the persistence surface the service needs. *Repository satisfies
// it; tests substitute an in-memory implementation.
type Store interface {
	Create(ctx context.Context, e *Expense) (*Expense, error)
	GetByID(ctx context.Context, id int64) (*Expense, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*Expense, error)
	ListPersonal(ctx context.Context, userID int64) ([]*Expense, error)
	Update(ctx context.Context, e *Expense) (*Expense, error)
	Delete(ctx context.Context, id int64) error
}

// Service handles expense business logic. All split validation runs before
// any write is attempted, so a rejected request leaves no partial state.
type Service struct {
	store Store
}

// NewService creates a new expense service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create validates and records a new expense.
func (s *Service) Create(ctx context.Context, payerID int64, req *CreateExpenseRequest) (*Expense, error) {
	if err := validateParticipants(payerID, req.Amount, req.Participants); err != nil {
		return nil, err
	}

	e := &Expense{
		GroupID:      req.GroupID,
		PayerID:      payerID,
		Description:  req.Description,
		Amount:       req.Amount,
		Participants: participantsToModel(req.Participants),
	}

	return s.store.Create(ctx, e)
}

// validateParticipants runs the creation-time checks shared by Create and
// Update: positive amount, a non-empty duplicate-free participant set that
// includes the payer, and ledger validation of any custom split.
func validateParticipants(payerID int64, amount float64, inputs []ParticipantInput) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if len(inputs) == 0 {
		return ErrNoParticipants
	}

	seen := make(map[int64]bool, len(inputs))
	payerIncluded := false
	for _, in := range inputs {
		if seen[in.UserID] {
			return fmt.Errorf("%w: user %d", ErrDuplicateParticipant, in.UserID)
		}
		seen[in.UserID] = true
		if in.UserID == payerID {
			payerIncluded = true
		}
	}
	if !payerIncluded {
		return ErrPayerNotParticipant
	}

	return ledger.ValidateSplits(amount, participantIDs(inputs), splitAmounts(inputs))
}

// GetByID retrieves an expense with its participants.
func (s *Service) GetByID(ctx context.Context, id int64) (*Expense, error) {
	e, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	return e, nil
}

// ListByGroup retrieves a page of a group's expenses along with the total.
func (s *Service) ListByGroup(ctx context.Context, groupID int64, page, perPage int) ([]*Expense, int, error) {
	expenses, err := s.store.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, 0, err
	}
	return paginate(expenses, page, perPage)
}

// ListPersonal retrieves a page of the user's non-group expenses.
func (s *Service) ListPersonal(ctx context.Context, userID int64, page, perPage int) ([]*Expense, int, error) {
	expenses, err := s.store.ListPersonal(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return paginate(expenses, page, perPage)
}

// paginate slices a full scope listing into a page.
func paginate(expenses []*Expense, page, perPage int) ([]*Expense, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	total := len(expenses)
	start := (page - 1) * perPage
	if start >= total {
		return []*Expense{}, total, nil
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return expenses[start:end], total, nil
}

// Update modifies a non-settlement expense. Unset fields keep their current
// values; the merged record is re-validated before the write.
func (s *Service) Update(ctx context.Context, id, userID int64, req *UpdateExpenseRequest) (*Expense, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrExpenseNotFound
	}
	if existing.IsSettlement {
		return nil, ErrSettlementImmutable
	}
	if !isParticipant(existing, userID) {
		return nil, ErrNotAuthorized
	}

	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Amount != nil {
		existing.Amount = *req.Amount
	}
	if req.PayerID != nil {
		existing.PayerID = *req.PayerID
	}
	if req.Participants != nil {
		existing.Participants = participantsToModel(req.Participants)
	}

	inputs := make([]ParticipantInput, len(existing.Participants))
	for i, p := range existing.Participants {
		inputs[i] = ParticipantInput{UserID: p.UserID, Share: p.Share}
	}
	if err := validateParticipants(existing.PayerID, existing.Amount, inputs); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrExpenseNotFound
	}
	return updated, nil
}

// Delete removes an expense. Any participant (the payer included) may delete.
func (s *Service) Delete(ctx context.Context, id, userID int64) error {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrExpenseNotFound
	}
	if !isParticipant(existing, userID) && existing.PayerID != userID {
		return ErrNotAuthorized
	}

	return s.store.Delete(ctx, id)
}

// AppendSettlementOffset records the synthetic expense that cancels a debt:
// the debtor "pays" an expense whose only participant is the creditor, so the
// next aggregation nets it against the original balance entry. The transfer
// ref correlates the record with its settlement audit row.
func (s *Service) AppendSettlementOffset(ctx context.Context, debtorID, creditorID int64, amount float64, groupID *int64, transferRef string) (*Expense, error) {
	share := amount
	e := &Expense{
		GroupID:      groupID,
		PayerID:      debtorID,
		Description:  "Settlement",
		Amount:       amount,
		IsSettlement: true,
		TransferRef:  &transferRef,
		Participants: []*Participant{{UserID: creditorID, Share: &share}},
	}

	return s.store.Create(ctx, e)
}

// isParticipant reports whether the user appears in the expense's
// participant set.
func isParticipant(e *Expense, userID int64) bool {
	for _, p := range e.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
