package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mcnijman/go-emailaddress"
	"github.com/oklog/ulid/v2"

	"github.com/taskpad/taskpad/internal/metrics"
	"github.com/taskpad/taskpad/internal/model"
	"github.com/taskpad/taskpad/internal/repository"
)

// UserStore is the persistence surface the user service depends on.
// *repository.Repository satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UserExists(ctx context.Context, id string) (bool, error)
}

// UserService handles user business logic.
type UserService struct {
	store   UserStore
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, recorder metrics.Recorder) *UserService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   store,
		metrics: recorder,
	}
}

// CreateUserInput defines input for creating a user.
type CreateUserInput struct {
	Name  string
	Email string
}

// CreateUser registers a new user. The email is normalized (lowercased,
// trimmed) before any comparison or storage, so addresses differing only
// in case map to the same account.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	name := strings.TrimSpace(input.Name)
	email := model.NormalizeEmail(input.Email)

	var invalid ValidationError
	if name == "" {
		invalid.add("name", "is required")
	}
	if email == "" {
		invalid.add("email", "is required")
	} else if _, err := emailaddress.Parse(email); err != nil {
		invalid.add("email", "is not a valid email address")
	}
	if len(invalid.Fields) > 0 {
		return nil, &invalid
	}

	// Advisory pre-check for a friendlier error. The unique index is
	// the real gate; a concurrent insert still surfaces below.
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:        ulid.Make().String(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserCreated()

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	if !isValidID(id) {
		return nil, newValidationError("user_id", "is not a valid id")
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// ListUsers retrieves all users.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}
