package handlers

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/snapdb/snapdb/internal/auth"
	apierrors "github.com/snapdb/snapdb/internal/errors"
	"github.com/snapdb/snapdb/internal/models"
	"github.com/snapdb/snapdb/internal/storage"
)

func newTestDB(t *testing.T) *storage.DB {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "snapdb-handlers-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	db, err := storage.Open(filepath.Join(tmpDir, "data.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var ewsErr apierrors.ErrorWithStatus
	if !errors.As(err, &ewsErr) {
		t.Fatalf("expected an API error, got %v", err)
	}
	return ewsErr.StatusCode()
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	tokens := auth.NewManager([]byte("secret"), 1)
	h := NewAuthHandler(storage.NewUserService(db), tokens, nil)
	ctx := context.Background()

	reg, err := h.Register(ctx, RegisterRequest{Username: "alice", Password: "hunter2"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Message == "" {
		t.Error("expected a confirmation message")
	}
	if reg.StatusCode() != 201 {
		t.Errorf("expected 201, got %d", reg.StatusCode())
	}

	resp, err := h.Login(ctx, LoginRequest{Username: "alice", Password: "hunter2"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	claims, err := tokens.Parse(resp.Token)
	if err != nil {
		t.Fatalf("returned token does not parse: %v", err)
	}
	if claims.Username != "alice" || !claims.HasPermission(models.PermMutate) {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	db := newTestDB(t)
	h := NewAuthHandler(storage.NewUserService(db), auth.NewManager([]byte("secret"), 1), nil)
	ctx := context.Background()

	if _, err := h.Register(ctx, RegisterRequest{Username: "alice", Password: "hunter2"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	_, err := h.Register(ctx, RegisterRequest{Username: "alice", Password: "other"})
	if status := statusOf(t, err); status != 409 {
		t.Errorf("expected 409, got %d", status)
	}
}

func TestLoginRejections(t *testing.T) {
	db := newTestDB(t)
	h := NewAuthHandler(storage.NewUserService(db), auth.NewManager([]byte("secret"), 1), nil)
	ctx := context.Background()

	if _, err := h.Register(ctx, RegisterRequest{Username: "alice", Password: "hunter2"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := h.Login(ctx, LoginRequest{Username: "alice", Password: "wrong"})
	if status := statusOf(t, err); status != 401 {
		t.Errorf("bad password: expected 401, got %d", status)
	}

	_, err = h.Login(ctx, LoginRequest{Username: "nobody", Password: "hunter2"})
	if status := statusOf(t, err); status != 401 {
		t.Errorf("unknown user: expected 401, got %d", status)
	}

	_, err = h.Login(ctx, LoginRequest{Username: "alice"})
	if status := statusOf(t, err); status != 400 {
		t.Errorf("missing password: expected 400, got %d", status)
	}
}
