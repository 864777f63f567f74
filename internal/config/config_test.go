package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaults(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "snapdb-config-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != "localhost:3000" {
		t.Errorf("unexpected default addr: %q", cfg.Addr)
	}
	if cfg.JWTSecret == "" {
		t.Error("expected a generated JWT secret")
	}
	secret, err := cfg.Secret()
	if err != nil {
		t.Fatalf("Secret failed: %v", err)
	}
	if len(secret) != 32 {
		t.Errorf("expected 32-byte secret, got %d", len(secret))
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "config.yaml")); err != nil {
		t.Errorf("expected config.yaml to be written: %v", err)
	}

	// The generated secret must survive a reload.
	cfg2, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if cfg2.JWTSecret != cfg.JWTSecret {
		t.Error("JWT secret changed across reloads")
	}
}

func TestLoadExistingFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "snapdb-config-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	contents := "addr: :8081\ndatabase: other.json\njwt_secret: c2VjcmV0\ntoken_expiry_hours: 2\nauth_rate_per_min: 10\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":8081" || cfg.Database != "other.json" || cfg.TokenExpiryHours != 2 || cfg.AuthRatePerMin != 10 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	secret, err := cfg.Secret()
	if err != nil {
		t.Fatalf("Secret failed: %v", err)
	}
	if string(secret) != "secret" {
		t.Errorf("unexpected secret: %q", secret)
	}
}

func TestLoadInvalid(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "snapdb-config-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	if err := os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("token_expiry_hours: -1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(tmpDir); err == nil {
		t.Fatal("expected Load to reject a negative expiry")
	}
}
