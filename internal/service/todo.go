package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskpad/taskpad/internal/metrics"
	"github.com/taskpad/taskpad/internal/model"
	"github.com/taskpad/taskpad/internal/repository"
)

// TodoStore is the persistence surface the todo service depends on.
// *repository.Repository satisfies it.
type TodoStore interface {
	CreateTodo(ctx context.Context, todo *model.Todo) error
	GetTodoByID(ctx context.Context, id string) (*model.Todo, error)
	ListTodos(ctx context.Context, filter repository.TodoFilter) ([]*model.Todo, error)
	UpdateTodo(ctx context.Context, todo *model.Todo) error
	DeleteTodo(ctx context.Context, id string) error
}

// TodoService handles todo business logic. Every operation is scoped to
// the owning user: a todo that exists but belongs to someone else is
// reported exactly like one that does not exist.
type TodoService struct {
	users   UserStore
	todos   TodoStore
	metrics metrics.Recorder
}

// NewTodoService creates a new TodoService.
func NewTodoService(users UserStore, todos TodoStore, recorder metrics.Recorder) *TodoService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TodoService{
		users:   users,
		todos:   todos,
		metrics: recorder,
	}
}

// CreateTodoInput defines input for creating a todo. UserID always comes
// from the request path, never from the payload.
type CreateTodoInput struct {
	UserID   string
	Name     string
	Done     bool
	Category string
}

// CreateTodo creates a todo owned by the given user. The owner is
// checked before the payload, so a missing user wins over an invalid
// body.
func (s *TodoService) CreateTodo(ctx context.Context, input CreateTodoInput) (*model.Todo, error) {
	if !isValidID(input.UserID) {
		return nil, newValidationError("user_id", "is not a valid id")
	}

	if err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, newValidationError("name", "is required")
	}

	now := time.Now().UTC()
	todo := &model.Todo{
		ID:        ulid.Make().String(),
		UserID:    input.UserID,
		Name:      name,
		Done:      input.Done,
		Category:  strings.TrimSpace(input.Category),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.todos.CreateTodo(ctx, todo); err != nil {
		// The owner can disappear between the existence check and the
		// insert; the foreign key reports it.
		if errors.Is(err, repository.ErrUserMissing) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.metrics.IncTodoCreated()

	return todo, nil
}

// GetTodo retrieves a single todo owned by the given user.
func (s *TodoService) GetTodo(ctx context.Context, userID, todoID string) (*model.Todo, error) {
	return s.resolveOwned(ctx, userID, todoID)
}

// ListTodosInput defines input for listing todos. Nil filter fields mean
// "no constraint".
type ListTodosInput struct {
	UserID   string
	Done     *bool
	Category *string
}

// ListTodos retrieves the user's todos in creation order, optionally
// filtered by done state and category. Filters combine with AND.
func (s *TodoService) ListTodos(ctx context.Context, input ListTodosInput) ([]*model.Todo, error) {
	if !isValidID(input.UserID) {
		return nil, newValidationError("user_id", "is not a valid id")
	}

	if err := s.requireUser(ctx, input.UserID); err != nil {
		return nil, err
	}

	filter := repository.TodoFilter{
		UserID:   input.UserID,
		Done:     input.Done,
		Category: input.Category,
	}

	todos, err := s.todos.ListTodos(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	return todos, nil
}

// UpdateTodoInput defines input for updating a todo. Nil fields keep
// their current values.
type UpdateTodoInput struct {
	UserID   string
	TodoID   string
	Name     *string
	Done     *bool
	Category *string
}

// UpdateTodo applies a partial update to a todo owned by the given user.
// Provided fields are merged over the stored todo and revalidated before
// the write.
func (s *TodoService) UpdateTodo(ctx context.Context, input UpdateTodoInput) (*model.Todo, error) {
	todo, err := s.resolveOwned(ctx, input.UserID, input.TodoID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, newValidationError("name", "must not be blank")
		}
		todo.Name = name
	}

	if input.Done != nil {
		todo.Done = *input.Done
	}

	if input.Category != nil {
		todo.Category = strings.TrimSpace(*input.Category)
	}

	todo.UpdatedAt = time.Now().UTC()

	if err := s.todos.UpdateTodo(ctx, todo); err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	s.metrics.IncTodoUpdated()

	return todo, nil
}

// DeleteTodo removes a todo owned by the given user. Deletes are hard:
// repeating the call reports ErrTodoNotFound.
func (s *TodoService) DeleteTodo(ctx context.Context, userID, todoID string) error {
	todo, err := s.resolveOwned(ctx, userID, todoID)
	if err != nil {
		return err
	}

	if err := s.todos.DeleteTodo(ctx, todo.ID); err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return ErrTodoNotFound
		}
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	s.metrics.IncTodoDeleted()

	return nil
}

// resolveOwned looks up a todo and verifies it belongs to the given
// user. A todo owned by someone else resolves exactly like a missing
// one, so responses never reveal whether the id exists at all.
func (s *TodoService) resolveOwned(ctx context.Context, userID, todoID string) (*model.Todo, error) {
	if !isValidID(userID) {
		return nil, newValidationError("user_id", "is not a valid id")
	}
	if !isValidID(todoID) {
		return nil, newValidationError("todo_id", "is not a valid id")
	}

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	todo, err := s.todos.GetTodoByID(ctx, todoID)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	if !todo.IsOwnedBy(userID) {
		return nil, ErrTodoNotFound
	}

	return todo, nil
}

// requireUser reports ErrUserNotFound when the user does not exist.
func (s *TodoService) requireUser(ctx context.Context, userID string) error {
	exists, err := s.users.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}
	return nil
}
