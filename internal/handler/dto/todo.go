package dto

import (
	"time"

	"github.com/taskpad/taskpad/internal/model"
)

// CreateTodoRequest represents the request body for creating a todo.
// The owner is taken from the URL path, not the body.
type CreateTodoRequest struct {
	Name     string `json:"name"`
	Done     bool   `json:"done,omitempty"`
	Category string `json:"category,omitempty"`
}

// UpdateTodoRequest represents the request body for updating a todo.
// Absent fields keep their current values.
type UpdateTodoRequest struct {
	Name     *string `json:"name,omitempty"`
	Done     *bool   `json:"done,omitempty"`
	Category *string `json:"category,omitempty"`
}

// TodoResponse represents a todo in API responses.
type TodoResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Done      bool      `json:"done"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TodoListResponse represents a list of todos.
type TodoListResponse struct {
	Data []TodoResponse `json:"data"`
}

// ToTodoResponse converts a Todo model to TodoResponse DTO.
func ToTodoResponse(todo *model.Todo) *TodoResponse {
	return &TodoResponse{
		ID:        todo.ID,
		UserID:    todo.UserID,
		Name:      todo.Name,
		Done:      todo.Done,
		Category:  todo.Category,
		CreatedAt: todo.CreatedAt,
		UpdatedAt: todo.UpdatedAt,
	}
}

// ToTodoListResponse converts a slice of Todo models to TodoListResponse.
func ToTodoListResponse(todos []*model.Todo) *TodoListResponse {
	responses := make([]TodoResponse, len(todos))
	for i, todo := range todos {
		responses[i] = *ToTodoResponse(todo)
	}
	return &TodoListResponse{Data: responses}
}
