package expense

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rwaseem/divvy/internal/ledger"
)

// memStore is an in-memory Store for service tests.
type memStore struct {
	nextID   int64
	expenses map[int64]*Expense
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, expenses: make(map[int64]*Expense)}
}

func (m *memStore) Create(_ context.Context, e *Expense) (*Expense, error) {
	e.ID = m.nextID
	m.nextID++
	m.expenses[e.ID] = e
	return e, nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*Expense, error) {
	return m.expenses[id], nil
}

func (m *memStore) ListByGroup(_ context.Context, groupID int64) ([]*Expense, error) {
	var out []*Expense
	for _, e := range m.expenses {
		if e.GroupID != nil && *e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memStore) ListPersonal(_ context.Context, userID int64) ([]*Expense, error) {
	var out []*Expense
	for _, e := range m.expenses {
		if e.GroupID != nil {
			continue
		}
		for _, p := range e.Participants {
			if p.UserID == userID {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, e *Expense) (*Expense, error) {
	if _, ok := m.expenses[e.ID]; !ok {
		return nil, nil
	}
	m.expenses[e.ID] = e
	return e, nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	delete(m.expenses, id)
	return nil
}

func share(v float64) *float64 { return &v }

func TestCreateEqualSplit(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	e, err := svc.Create(context.Background(), 1, &CreateExpenseRequest{
		Description:  "Dinner",
		Amount:       90,
		Participants: []ParticipantInput{{UserID: 1}, {UserID: 2}, {UserID: 3}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), e.PayerID)
	assert.Len(t, e.Participants, 3)
	assert.Nil(t, e.GroupID)
	assert.False(t, e.IsSettlement)
}

func TestCreateRejectsInvalidSplitBeforeWrite(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	_, err := svc.Create(context.Background(), 1, &CreateExpenseRequest{
		Description: "Groceries",
		Amount:      100,
		Participants: []ParticipantInput{
			{UserID: 1, Share: share(60)},
			{UserID: 2, Share: share(50)},
		},
	})

	var vErr *ledger.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, store.expenses, "nothing may be persisted when validation fails")
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		payerID int64
		req     *CreateExpenseRequest
		wantErr error
	}{
		{
			name:    "non-positive amount",
			payerID: 1,
			req: &CreateExpenseRequest{
				Description:  "x",
				Amount:       0,
				Participants: []ParticipantInput{{UserID: 1}},
			},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "no participants",
			payerID: 1,
			req:     &CreateExpenseRequest{Description: "x", Amount: 10},
			wantErr: ErrNoParticipants,
		},
		{
			name:    "payer missing from participants",
			payerID: 9,
			req: &CreateExpenseRequest{
				Description:  "x",
				Amount:       10,
				Participants: []ParticipantInput{{UserID: 1}, {UserID: 2}},
			},
			wantErr: ErrPayerNotParticipant,
		},
		{
			name:    "duplicate participant",
			payerID: 1,
			req: &CreateExpenseRequest{
				Description:  "x",
				Amount:       10,
				Participants: []ParticipantInput{{UserID: 1}, {UserID: 1}},
			},
			wantErr: ErrDuplicateParticipant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newMemStore())
			_, err := svc.Create(context.Background(), tt.payerID, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateRejectsSettlement(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	ref := "aa-bb"
	settlement := &Expense{
		PayerID:      1,
		Amount:       50,
		IsSettlement: true,
		TransferRef:  &ref,
		Participants: []*Participant{{UserID: 2, Share: share(50)}},
	}
	_, err := store.Create(context.Background(), settlement)
	require.NoError(t, err)

	desc := "edited"
	_, err = svc.Update(context.Background(), settlement.ID, 1, &UpdateExpenseRequest{Description: &desc})
	assert.ErrorIs(t, err, ErrSettlementImmutable)
}

func TestUpdateRevalidatesMergedRecord(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	e, err := svc.Create(context.Background(), 1, &CreateExpenseRequest{
		Description: "Rent",
		Amount:      100,
		Participants: []ParticipantInput{
			{UserID: 1, Share: share(60)},
			{UserID: 2, Share: share(40)},
		},
	})
	require.NoError(t, err)

	// Changing only the amount breaks the existing custom split.
	badAmount := 150.0
	_, err = svc.Update(context.Background(), e.ID, 1, &UpdateExpenseRequest{Amount: &badAmount})
	var vErr *ledger.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestDeleteAuthorization(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	e, err := svc.Create(context.Background(), 1, &CreateExpenseRequest{
		Description:  "Taxi",
		Amount:       30,
		Participants: []ParticipantInput{{UserID: 1}, {UserID: 2}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(context.Background(), e.ID, 9), ErrNotAuthorized)

	// Any participant may delete.
	require.NoError(t, svc.Delete(context.Background(), e.ID, 2))
	assert.Empty(t, store.expenses)
}

func TestAppendSettlementOffset(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	gid := int64(7)
	e, err := svc.AppendSettlementOffset(context.Background(), 2, 1, 50, &gid, "ref-123")
	require.NoError(t, err)

	assert.True(t, e.IsSettlement)
	assert.Equal(t, int64(2), e.PayerID)
	require.Len(t, e.Participants, 1)
	assert.Equal(t, int64(1), e.Participants[0].UserID)
	require.NotNil(t, e.Participants[0].Share)
	assert.Equal(t, 50.0, *e.Participants[0].Share)
	require.NotNil(t, e.TransferRef)
	assert.Equal(t, "ref-123", *e.TransferRef)

	// Refolding the offset against the original debt cancels the pair.
	original := ledger.Expense{PayerID: 1, Amount: 100, GroupID: &gid, Participants: []int64{1, 2}}
	balances := ledger.ComputeBalances([]ledger.Expense{original, e.ToLedger()}, ledger.GroupScope(gid))
	assert.Empty(t, balances)
}
