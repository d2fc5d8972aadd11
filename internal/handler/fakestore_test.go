package handler

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/taskpad/taskpad/internal/model"
	"github.com/taskpad/taskpad/internal/repository"
	"github.com/taskpad/taskpad/internal/service"
)

// fakeStore is an in-memory store backing handler tests. It mirrors the
// repository's sentinel errors so services behave exactly as they do
// over Postgres.
type fakeStore struct {
	mu    sync.Mutex
	users map[string]*model.User
	todos map[string]*model.Todo
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[string]*model.User),
		todos: make(map[string]*model.Todo),
	}
}

func (s *fakeStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *fakeStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *fakeStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *fakeStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]*model.User, 0, len(s.users))
	for _, user := range s.users {
		cp := *user
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (s *fakeStore) UserExists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.users[id]
	return ok, nil
}

func (s *fakeStore) CreateTodo(ctx context.Context, todo *model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[todo.UserID]; !ok {
		return repository.ErrUserMissing
	}
	cp := *todo
	s.todos[todo.ID] = &cp
	return nil
}

func (s *fakeStore) GetTodoByID(ctx context.Context, id string) (*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	todo, ok := s.todos[id]
	if !ok {
		return nil, repository.ErrTodoNotFound
	}
	cp := *todo
	return &cp, nil
}

func (s *fakeStore) ListTodos(ctx context.Context, filter repository.TodoFilter) ([]*model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	todos := make([]*model.Todo, 0)
	for _, todo := range s.todos {
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
		if !todos[i].CreatedAt.Equal(todos[j].CreatedAt) {
			return todos[i].CreatedAt.Before(todos[j].CreatedAt)
		}
		return todos[i].ID < todos[j].ID
	})
	return todos, nil
}

func (s *fakeStore) UpdateTodo(ctx context.Context, todo *model.Todo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.todos[todo.ID]; !ok {
		return repository.ErrTodoNotFound
	}
	cp := *todo
	s.todos[todo.ID] = &cp
	return nil
}

func (s *fakeStore) DeleteTodo(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.todos[id]; !ok {
		return repository.ErrTodoNotFound
	}
	delete(s.todos, id)
	return nil
}

// newTestRouter wires real services over the fake store into a chi
// router using the same routes as production.
func newTestRouter(store *fakeStore) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := NewUserHandler(service.NewUserService(store, nil), logger)
	todos := NewTodoHandler(service.NewTodoService(store, store, nil), logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", users.Create)
			r.Get("/", users.List)
			r.Route("/{userID}", func(r chi.Router) {
				r.Get("/", users.Get)
				r.Route("/todos", func(r chi.Router) {
					r.Post("/", todos.Create)
					r.Get("/", todos.List)
					r.Route("/{todoID}", func(r chi.Router) {
						r.Get("/", todos.Get)
						r.Put("/", todos.Update)
						r.Delete("/", todos.Delete)
					})
				})
			})
		})
	})
	return r
}

func seedTestUser(t *testing.T, store *fakeStore, name, email string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	user := &model.User{
		ID:        ulid.Make().String(),
		Name:      name,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedTestTodo(t *testing.T, store *fakeStore, userID, name string) *model.Todo {
	t.Helper()
	now := time.Now().UTC()
	todo := &model.Todo{
		ID:        ulid.Make().String(),
		UserID:    userID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateTodo(context.Background(), todo); err != nil {
		t.Fatalf("seed todo: %v", err)
	}
	return todo
}
