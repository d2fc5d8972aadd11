package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taskpad/taskpad/internal/model"
)

// Common errors for todo repository operations.
var (
	ErrTodoNotFound = errors.New("todo not found")
	ErrUserMissing  = errors.New("referenced user does not exist")
)

// TodoFilter defines filters for listing todos. Nil pointer fields mean
// "no constraint"; set fields are combined with AND.
type TodoFilter struct {
	UserID   string
	Done     *bool
	Category *string
}

// CreateTodo inserts a new todo into the database.
// The foreign key on user_id is the final authority for the owner's
// existence; a concurrent user deletion surfaces as ErrUserMissing.
func (r *Repository) CreateTodo(ctx context.Context, todo *model.Todo) error {
	query := `
		INSERT INTO todos (id, user_id, name, done, category, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		todo.ID,
		todo.UserID,
		todo.Name,
		todo.Done,
		todo.Category,
		todo.CreatedAt,
		todo.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrUserMissing
		}
		return fmt.Errorf("failed to create todo: %w", err)
	}

	return nil
}

// GetTodoByID retrieves a todo by its ID, regardless of owner.
// Ownership checks belong to the service layer.
func (r *Repository) GetTodoByID(ctx context.Context, id string) (*model.Todo, error) {
	query := `
		SELECT id, user_id, name, done, category, created_at, updated_at
		FROM todos
		WHERE id = $1
	`

	todo, err := scanTodo(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to get todo by ID: %w", err)
	}

	return todo, nil
}

// ListTodos retrieves todos matching the filter in stable creation order.
func (r *Repository) ListTodos(ctx context.Context, filter TodoFilter) ([]*model.Todo, error) {
	query := `
		SELECT id, user_id, name, done, category, created_at, updated_at
		FROM todos
		WHERE user_id = $1
	`
	args := []any{filter.UserID}
	argIndex := 2

	if filter.Done != nil {
		query += fmt.Sprintf(" AND done = $%d", argIndex)
		args = append(args, *filter.Done)
		argIndex++
	}

	if filter.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, *filter.Category)
		argIndex++
	}

	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]*model.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating todos: %w", err)
	}

	return todos, nil
}

// UpdateTodo updates a todo's mutable fields.
func (r *Repository) UpdateTodo(ctx context.Context, todo *model.Todo) error {
	query := `
		UPDATE todos
		SET name = $2, done = $3, category = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		todo.ID,
		todo.Name,
		todo.Done,
		todo.Category,
		todo.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTodoNotFound
	}

	return nil
}

// DeleteTodo removes a todo row entirely. Deletes are hard: a second
// delete of the same ID reports ErrTodoNotFound.
func (r *Repository) DeleteTodo(ctx context.Context, id string) error {
	query := `DELETE FROM todos WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTodoNotFound
	}

	return nil
}

// CountTodosByUser returns the number of todos owned by a user.
func (r *Repository) CountTodosByUser(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COUNT(*) FROM todos WHERE user_id = $1`

	var count int64
	err := r.pool.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count todos: %w", err)
	}

	return count, nil
}

// scanTodo scans a single row into a Todo model.
func scanTodo(row pgx.Row) (*model.Todo, error) {
	var todo model.Todo
	err := row.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Name,
		&todo.Done,
		&todo.Category,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)
	return &todo, err
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key
// constraint violation (SQLSTATE 23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
