// Package auth creates user accounts and seeds the default admin at startup.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/celerix-dev/celerix-attach/pkg/schema"
)

// ErrMissingCredentials is returned when the admin must be seeded but no
// credentials are configured.
var ErrMissingCredentials = errors.New("admin username and password are required to seed an empty user table")

// UserStore is the subset of the store auth needs.
type UserStore interface {
	CountUsers(ctx context.Context) (int, error)
	PutUser(ctx context.Context, u schema.User) error
}

// Cost is the bcrypt cost used for new password hashes.
var Cost = bcrypt.DefaultCost

// CreateUser hashes password and stores a new user.
func CreateUser(ctx context.Context, users UserStore, email, password string, admin bool) (schema.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return schema.User{}, fmt.Errorf("email is required")
	}
	if password == "" {
		return schema.User{}, fmt.Errorf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return schema.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := schema.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      admin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := users.PutUser(ctx, u); err != nil {
		return schema.User{}, fmt.Errorf("store user: %w", err)
	}
	return u, nil
}

// CheckPassword reports whether password matches u's hash.
func CheckPassword(u schema.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Bootstrap creates the admin account when the user table is empty. It
// reports whether an account was created.
func Bootstrap(ctx context.Context, users UserStore, username, password string) (bool, error) {
	n, err := users.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	if strings.TrimSpace(username) == "" || password == "" {
		return false, ErrMissingCredentials
	}
	if _, err := CreateUser(ctx, users, username, password, true); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
