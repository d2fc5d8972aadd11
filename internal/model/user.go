// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
)

// User represents an account that owns todos.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an email address. All comparisons
// and storage use the normalized form, so "Ann@Example.COM " and
// "ann@example.com" identify the same account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
