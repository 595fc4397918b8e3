package group

import (
	"context"
	"errors"
	"strings"
)

// Service errors
var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberAlreadyExists = errors.New("user is already a member of this group")
	ErrNotAuthorized       = errors.New("not authorized to perform this action")
	ErrInvalidName         = errors.New("group name is required")
	ErrCreatorCannotLeave  = errors.New("group creator cannot be removed from the group")
)

// Store is the persistence surface the group service depends on.
type Store interface {
	Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error)
	GetByID(ctx context.Context, id int64) (*Group, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Group, int, error)
	Update(ctx context.Context, id int64, req *UpdateGroupRequest) (*Group, error)
	Delete(ctx context.Context, id int64) error
	GetMember(ctx context.Context, groupID, userID int64) (*Member, error)
	AddMember(ctx context.Context, groupID, userID int64) (*Member, error)
	GetMembers(ctx context.Context, groupID int64) ([]*Member, error)
	RemoveMember(ctx context.Context, groupID, userID int64) error
}

// Service handles group business logic
type Service struct {
	store Store
}

// NewService creates a new group service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create creates a group and enrolls the creator as its first member.
func (s *Service) Create(ctx context.Context, creatorID int64, req *CreateGroupRequest) (*Group, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidName
	}

	return s.store.Create(ctx, creatorID, req)
}

// GetByID retrieves a group with its members, restricted to members.
func (s *Service) GetByID(ctx context.Context, viewerID, groupID int64) (*Group, []*Member, error) {
	group, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}
	if group == nil {
		return nil, nil, ErrGroupNotFound
	}

	member, err := s.store.GetMember(ctx, groupID, viewerID)
	if err != nil {
		return nil, nil, err
	}
	if member == nil {
		return nil, nil, ErrNotAuthorized
	}

	members, err := s.store.GetMembers(ctx, groupID)
	if err != nil {
		return nil, nil, err
	}

	return group, members, nil
}

// ListByUser retrieves the groups a user belongs to, paginated.
func (s *Service) ListByUser(ctx context.Context, userID int64, page, limit int) ([]*Group, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	return s.store.ListByUser(ctx, userID, limit, offset)
}

// Update modifies a group. Only the creator may update it.
func (s *Service) Update(ctx context.Context, userID, groupID int64, req *UpdateGroupRequest) (*Group, error) {
	group, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	if group.CreatedBy != userID {
		return nil, ErrNotAuthorized
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrInvalidName
	}

	updated, err := s.store.Update(ctx, groupID, req)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrGroupNotFound
	}

	return updated, nil
}

// Delete removes a group. Only the creator may delete it.
func (s *Service) Delete(ctx context.Context, userID, groupID int64) error {
	group, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrGroupNotFound
	}
	if group.CreatedBy != userID {
		return ErrNotAuthorized
	}

	return s.store.Delete(ctx, groupID)
}

// AddMember adds a user to a group. Any existing member may add others.
func (s *Service) AddMember(ctx context.Context, actorID, groupID, userID int64) (*Member, error) {
	group, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	actor, err := s.store.GetMember(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrNotAuthorized
	}

	existing, err := s.store.GetMember(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrMemberAlreadyExists
	}

	return s.store.AddMember(ctx, groupID, userID)
}

// ListMembers retrieves a group's members, restricted to members.
func (s *Service) ListMembers(ctx context.Context, viewerID, groupID int64) ([]*Member, error) {
	group, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}

	viewer, err := s.store.GetMember(ctx, groupID, viewerID)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return nil, ErrNotAuthorized
	}

	return s.store.GetMembers(ctx, groupID)
}

// RemoveMember removes a user from a group. Members may remove themselves;
// the creator may remove anyone but cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, actorID, groupID, userID int64) error {
	group, err := s.store.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return ErrGroupNotFound
	}

	if userID == group.CreatedBy {
		return ErrCreatorCannotLeave
	}
	if actorID != userID && actorID != group.CreatedBy {
		return ErrNotAuthorized
	}

	member, err := s.store.GetMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrMemberNotFound
	}

	return s.store.RemoveMember(ctx, groupID, userID)
}
