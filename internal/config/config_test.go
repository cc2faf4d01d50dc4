package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPAddr != ":7002" {
		t.Errorf("Expected :7002, got %s", cfg.HTTPAddr)
	}
	if cfg.StaticDir != "static" {
		t.Errorf("Expected static, got %s", cfg.StaticDir)
	}
	if cfg.MaxFileSize() != 10<<20 {
		t.Errorf("Expected %d bytes, got %d", 10<<20, cfg.MaxFileSize())
	}
	if len(cfg.PhotoFormats) != 4 || cfg.PhotoFormats[0] != "image/jpeg" {
		t.Errorf("Unexpected photo formats: %v", cfg.PhotoFormats)
	}
	if cfg.DisableTLS {
		t.Error("TLS should be enabled by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CELERIX_MAX_FILE_SIZE_MB", "2")
	t.Setenv("CELERIX_PHOTO_FORMATS", " Image/PNG , ,image/jpeg")
	t.Setenv("CELERIX_ADMIN_USERNAME", "admin@example.com")
	t.Setenv("CELERIX_ADMIN_PASSWORD", "secret")
	t.Setenv("CELERIX_DISABLE_TLS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MaxFileSize() != 2<<20 {
		t.Errorf("Expected %d bytes, got %d", 2<<20, cfg.MaxFileSize())
	}
	if len(cfg.PhotoFormats) != 2 || cfg.PhotoFormats[0] != "image/png" || cfg.PhotoFormats[1] != "image/jpeg" {
		t.Errorf("Unexpected photo formats: %v", cfg.PhotoFormats)
	}
	if cfg.AdminUsername != "admin@example.com" || cfg.AdminPassword != "secret" {
		t.Errorf("Unexpected admin credentials: %q %q", cfg.AdminUsername, cfg.AdminPassword)
	}
	if !cfg.DisableTLS {
		t.Error("Expected TLS to be disabled")
	}
}

func TestLoadRejectsInvalidSize(t *testing.T) {
	t.Setenv("CELERIX_MAX_FILE_SIZE_MB", "0")
	if _, err := Load(); err == nil {
		t.Fatal("Expected error for zero size limit")
	}

	t.Setenv("CELERIX_MAX_FILE_SIZE_MB", "ten")
	if _, err := Load(); err == nil {
		t.Fatal("Expected error for non-numeric size limit")
	}
}

func TestLoadRejectsEmptyFormats(t *testing.T) {
	t.Setenv("CELERIX_FILE_FORMATS", " , ")
	if _, err := Load(); err == nil {
		t.Fatal("Expected error for empty file formats")
	}
}
