// Package schema defines the data structures shared by the daemon, the SDK and the CLI.
package schema

import "time"

// User is an account of the application. The first one is seeded at startup
// from configuration and carries IsAdmin.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}
