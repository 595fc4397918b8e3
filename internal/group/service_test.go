package group

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store for service tests.
type memStore struct {
	nextID  int64
	groups  map[int64]*Group
	members map[int64][]*Member
}

func newMemStore() *memStore {
	return &memStore{
		nextID:  1,
		groups:  make(map[int64]*Group),
		members: make(map[int64][]*Member),
	}
}

func (m *memStore) Create(_ context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error) {
	g := &Group{
		ID:          m.nextID,
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   creatorID,
		CreatedAt:   time.Now(),
	}
	m.nextID++
	m.groups[g.ID] = g
	m.members[g.ID] = []*Member{{GroupID: g.ID, UserID: creatorID, JoinedAt: time.Now()}}
	return g, nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*Group, error) {
	return m.groups[id], nil
}

func (m *memStore) ListByUser(_ context.Context, userID int64, limit, offset int) ([]*Group, int, error) {
	var out []*Group
	for _, g := range m.groups {
		for _, mem := range m.members[g.ID] {
			if mem.UserID == userID {
				out = append(out, g)
				break
			}
		}
	}
	return out, len(out), nil
}

func (m *memStore) Update(_ context.Context, id int64, req *UpdateGroupRequest) (*Group, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, nil
	}
	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.Description != nil {
		g.Description = req.Description
	}
	return g, nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	delete(m.groups, id)
	delete(m.members, id)
	return nil
}

func (m *memStore) GetMember(_ context.Context, groupID, userID int64) (*Member, error) {
	for _, mem := range m.members[groupID] {
		if mem.UserID == userID {
			return mem, nil
		}
	}
	return nil, nil
}

func (m *memStore) AddMember(_ context.Context, groupID, userID int64) (*Member, error) {
	mem := &Member{GroupID: groupID, UserID: userID, JoinedAt: time.Now()}
	m.members[groupID] = append(m.members[groupID], mem)
	return mem, nil
}

func (m *memStore) GetMembers(_ context.Context, groupID int64) ([]*Member, error) {
	return m.members[groupID], nil
}

func (m *memStore) RemoveMember(_ context.Context, groupID, userID int64) error {
	members := m.members[groupID]
	for i, mem := range members {
		if mem.UserID == userID {
			m.members[groupID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return ErrMemberNotFound
}

func TestCreateEnrollsCreator(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	g, err := svc.Create(context.Background(), 1, &CreateGroupRequest{Name: "Trip to Lisbon"})
	require.NoError(t, err)

	members, err := svc.ListMembers(context.Background(), 1, g.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, int64(1), members[0].UserID)
}

func TestCreateRejectsBlankName(t *testing.T) {
	svc := NewService(newMemStore())

	_, err := svc.Create(context.Background(), 1, &CreateGroupRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestGetByIDRestrictedToMembers(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	g, err := svc.Create(context.Background(), 1, &CreateGroupRequest{Name: "Flat"})
	require.NoError(t, err)

	_, _, err = svc.GetByID(context.Background(), 2, g.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = svc.AddMember(context.Background(), 1, g.ID, 2)
	require.NoError(t, err)

	got, members, err := svc.GetByID(context.Background(), 2, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)
	assert.Len(t, members, 2)
}

func TestAddMemberRejectsDuplicates(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	g, err := svc.Create(context.Background(), 1, &CreateGroupRequest{Name: "Flat"})
	require.NoError(t, err)

	_, err = svc.AddMember(context.Background(), 1, g.ID, 2)
	require.NoError(t, err)

	_, err = svc.AddMember(context.Background(), 1, g.ID, 2)
	assert.ErrorIs(t, err, ErrMemberAlreadyExists)
}

func TestAddMemberRequiresMembership(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	g, err := svc.Create(context.Background(), 1, &CreateGroupRequest{Name: "Flat"})
	require.NoError(t, err)

	_, err = svc.AddMember(context.Background(), 99, g.ID, 2)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestUpdateOnlyByCreator(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	g, err := svc.Create(context.Background(), 1, &CreateGroupRequest{Name: "Flat"})
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), 1, g.ID, 2)
	require.NoError(t, err)

	name := "New name"
	_, err = svc.Update(context.Background(), 2, g.ID, &UpdateGroupRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	updated, err := svc.Update(context.Background(), 1, g.ID, &UpdateGroupRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "New name", updated.Name)
}

func TestRemoveMemberRules(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	g, err := svc.Create(context.Background(), 1, &CreateGroupRequest{Name: "Flat"})
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), 1, g.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddMember(context.Background(), 1, g.ID, 3)
	require.NoError(t, err)

	// A member cannot remove another member.
	err = svc.RemoveMember(context.Background(), 2, g.ID, 3)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	// The creator cannot be removed, not even by themselves.
	err = svc.RemoveMember(context.Background(), 1, g.ID, 1)
	assert.ErrorIs(t, err, ErrCreatorCannotLeave)

	// Members may leave on their own.
	err = svc.RemoveMember(context.Background(), 2, g.ID, 2)
	require.NoError(t, err)

	// The creator may remove anyone.
	err = svc.RemoveMember(context.Background(), 1, g.ID, 3)
	require.NoError(t, err)

	members, err := svc.ListMembers(context.Background(), 1, g.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}
