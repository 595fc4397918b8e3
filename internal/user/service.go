package user

import (
	"context"
	"errors"
	"strings"
)

// Service errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email is already registered")
	ErrInvalidUser  = errors.New("name and email are required")
)

// Store is the persistence surface the user service depends on.
type Store interface {
	Create(ctx context.Context, req *CreateUserRequest) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, int, error)
}

// Service handles user business logic
type Service struct {
	store Store
}

// NewService creates a new user service
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create registers a new user with a unique email.
func (s *Service) Create(ctx context.Context, req *CreateUserRequest) (*User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, ErrInvalidUser
	}

	return s.store.Create(ctx, req)
}

// GetByID retrieves a user by ID.
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// List retrieves users, paginated.
func (s *Service) List(ctx context.Context, page, limit int) ([]*User, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	return s.store.List(ctx, limit, offset)
}
