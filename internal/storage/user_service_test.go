package storage

import (
	"errors"
	"testing"

	"github.com/snapdb/snapdb/internal/models"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	user, err := users.Register("alice", "hunter2")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.Password != "" {
		t.Error("Register leaked the password hash")
	}
	if !user.HasPermission(models.PermMutate) {
		t.Error("expected new user to hold MUTATE")
	}

	authed, err := users.Authenticate("alice", "hunter2")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if authed.Username != "alice" || authed.Password != "" {
		t.Errorf("unexpected authenticated user: %+v", authed)
	}

	if _, err := users.Authenticate("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := users.Authenticate("nobody", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	if _, err := users.Register("alice", "hunter2"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := users.Register("alice", "other"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestGetByUsername(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	if _, err := users.GetByUsername("alice"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if _, err := users.Register("alice", "hunter2"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	user, err := users.GetByUsername("alice")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if user.Password != "" {
		t.Error("GetByUsername leaked the password hash")
	}
}

func TestPasswordStoredHashed(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)

	if _, err := users.Register("alice", "hunter2"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	db.mu.Lock()
	raws, _ := db.store.FindByField(models.UserTable, "username", "alice")
	db.mu.Unlock()
	if len(raws) != 1 {
		t.Fatalf("expected 1 stored user, got %d", len(raws))
	}
	stored, err := decodeRecord[models.User](raws[0])
	if err != nil {
		t.Fatal(err)
	}
	if stored.Password == "" || stored.Password == "hunter2" {
		t.Errorf("expected a bcrypt hash on disk, got %q", stored.Password)
	}
}
