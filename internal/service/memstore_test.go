package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskpad/taskpad/internal/model"
	"github.com/taskpad/taskpad/internal/repository"
)

// memStore is an in-memory stand-in for the repository, mirroring its
// sentinel errors and copy-out semantics.
type memStore struct {
	mu    sync.Mutex
	users map[string]*model.User
	todos map[string]*model.Todo
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[string]*model.User),
		todos: make(map[string]*model.Todo),
	}
}

func (m *memStore) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}

	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]*model.User, 0, len(m.users))
	for _, user := range m.users {
		cp := *user
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

func (m *memStore) UserExists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.users[id]
	return ok, nil
}

func (m *memStore) CreateTodo(ctx context.Context, todo *model.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[todo.UserID]; !ok {
		return repository.ErrUserMissing
	}

	cp := *todo
	m.todos[todo.ID] = &cp
	return nil
}

func (m *memStore) GetTodoByID(ctx context.Context, id string) (*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	todo, ok := m.todos[id]
	if !ok {
		return nil, repository.ErrTodoNotFound
	}
	cp := *todo
	return &cp, nil
}

func (m *memStore) ListTodos(ctx context.Context, filter repository.TodoFilter) ([]*model.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	todos := make([]*model.Todo, 0)
	for _, todo := range m.todos {
		if todo.UserID != filter.UserID {
			continue
		}
		if filter.Done != nil && todo.Done != *filter.Done {
			continue
		}
		if filter.Category != nil && todo.Category != *filter.Category {
			continue
		}
		cp := *todo
		todos = append(todos, &cp)
	}
	sort.Slice(todos, func(i, j int) bool {
		if todos[i].CreatedAt.Equal(todos[j].CreatedAt) {
			return todos[i].ID < todos[j].ID
		}
		return todos[i].CreatedAt.Before(todos[j].CreatedAt)
	})
	return todos, nil
}

func (m *memStore) UpdateTodo(ctx context.Context, todo *model.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.todos[todo.ID]; !ok {
		return repository.ErrTodoNotFound
	}
	cp := *todo
	m.todos[todo.ID] = &cp
	return nil
}

func (m *memStore) DeleteTodo(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.todos[id]; !ok {
		return repository.ErrTodoNotFound
	}
	delete(m.todos, id)
	return nil
}

func seedUser(t *testing.T, store *memStore, email string) *model.User {
	t.Helper()

	now := time.Now().UTC()
	user := &model.User{
		ID:        ulid.Make().String(),
		Name:      "Test User",
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedTodo(t *testing.T, store *memStore, userID, name, category string, done bool, createdAt time.Time) *model.Todo {
	t.Helper()

	todo := &model.Todo{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Name:      name,
		Done:      done,
		Category:  category,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := store.CreateTodo(context.Background(), todo); err != nil {
		t.Fatalf("seed todo: %v", err)
	}
	return todo
}
