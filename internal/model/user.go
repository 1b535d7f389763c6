package model

import "github.com/google/uuid"

// Identity is the authenticated caller resolved from a bearer token.
// It never carries the password hash.
type Identity struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"isAdmin"`
}
