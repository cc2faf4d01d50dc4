package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/celerix-dev/celerix-attach/internal/store"
	"github.com/celerix-dev/celerix-attach/pkg/schema"
)

func init() {
	Cost = bcrypt.MinCost
}

func openTempStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBootstrap_SeedsEmptyTable(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()

	created, err := Bootstrap(ctx, s, "admin@example.com", "secret")
	if err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if !created {
		t.Fatal("Expected admin to be created")
	}

	u, err := s.GetUserByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("Admin not stored: %v", err)
	}
	if !u.IsAdmin {
		t.Error("Seeded user should be an admin")
	}
	if u.PasswordHash == "secret" {
		t.Error("Password must be hashed")
	}
	if !CheckPassword(u, "secret") {
		t.Error("Password should verify")
	}
	if CheckPassword(u, "wrong") {
		t.Error("Wrong password should not verify")
	}
}

func TestBootstrap_RunsOnce(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()

	if _, err := Bootstrap(ctx, s, "admin@example.com", "secret"); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	created, err := Bootstrap(ctx, s, "other@example.com", "secret")
	if err != nil {
		t.Fatalf("Second bootstrap failed: %v", err)
	}
	if created {
		t.Error("Second bootstrap should not create a user")
	}

	n, _ := s.CountUsers(ctx)
	if n != 1 {
		t.Errorf("Expected 1 user, got %d", n)
	}
}

func TestBootstrap_NonEmptyTableSkipsCredentialCheck(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, s, "someone@example.com", "pw", false); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	created, err := Bootstrap(ctx, s, "", "")
	if err != nil || created {
		t.Fatalf("Expected no-op, got %v, %v", created, err)
	}
}

func TestBootstrap_MissingCredentials(t *testing.T) {
	s := openTempStore(t)

	_, err := Bootstrap(context.Background(), s, " ", "secret")
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("Expected ErrMissingCredentials, got %v", err)
	}
	_, err = Bootstrap(context.Background(), s, "admin@example.com", "")
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("Expected ErrMissingCredentials, got %v", err)
	}
}

type failingStore struct{}

func (failingStore) CountUsers(context.Context) (int, error) { return 0, errors.New("db down") }

func (failingStore) PutUser(context.Context, schema.User) error { return nil }

func TestBootstrap_CountError(t *testing.T) {
	if _, err := Bootstrap(context.Background(), failingStore{}, "a", "b"); err == nil {
		t.Fatal("Expected count error to propagate")
	}
}

func TestCreateUser_Validation(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, s, "", "pw", false); err == nil {
		t.Error("Expected error for blank email")
	}
	if _, err := CreateUser(ctx, s, "a@example.com", "", false); err == nil {
		t.Error("Expected error for blank password")
	}
	if _, err := CreateUser(ctx, s, "a@example.com", "pw", false); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if _, err := CreateUser(ctx, s, "a@example.com", "pw", false); err == nil {
		t.Error("Expected duplicate email to fail")
	}
}
