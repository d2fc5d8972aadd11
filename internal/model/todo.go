// Package model defines domain entities for the application.
package model

import "time"

// Todo represents a single task owned by exactly one user.
type Todo struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Done      bool      `json:"done"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether the todo belongs to the given user.
func (t *Todo) IsOwnedBy(userID string) bool {
	return t.UserID == userID
}
