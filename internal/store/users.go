package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/celerix-dev/celerix-attach/pkg/schema"
)

// CountUsers returns the number of stored users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// PutUser inserts a user. Emails are unique.
func (s *Store) PutUser(ctx context.Context, u schema.User) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(u.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(u.Email) == "" {
		return fmt.Errorf("email is required")
	}

	_, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?, ?)",
		u.ID, u.Email, u.PasswordHash, boolToInt(u.IsAdmin), toMillis(u.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

// GetUserByEmail fetches a user by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (schema.User, error) {
	if err := s.ready(ctx); err != nil {
		return schema.User{}, err
	}

	var (
		u         schema.User
		isAdmin   int
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT id, email, password_hash, is_admin, created_at FROM users WHERE email = ?", email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &isAdmin, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return schema.User{}, ErrNotFound
		}
		return schema.User{}, fmt.Errorf("get user: %w", err)
	}
	u.IsAdmin = isAdmin != 0
	u.CreatedAt = fromMillis(createdAt)
	return u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
