package core

import "time"

// User owns every other entity; all queries are scoped to exactly one user.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Currency     string    `json:"currency"`
	CreatedAt    time.Time `json:"-"`
}
