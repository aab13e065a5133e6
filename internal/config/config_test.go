package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points ENV_FILE at a missing file so a developer's .env cannot leak into tests.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad(t *testing.T) {
	isolate(t)
	t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
	t.Setenv("PORT", "9090")
	t.Setenv("TIMEZONE", "Asia/Kolkata")
	t.Setenv("TECH_CATEGORIES", "Electronics, Mobile ,Laptops")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.ProjectID != "test-project" {
		t.Errorf("Expected test-project, got %s", cfg.ProjectID)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected 9090, got %s", cfg.Port)
	}
	if cfg.Location().String() != "Asia/Kolkata" {
		t.Errorf("Expected Asia/Kolkata location, got %v", cfg.Location())
	}
	if cfg.RetentionDays != 15 {
		t.Errorf("Expected default RetentionDays 15, got %d", cfg.RetentionDays)
	}
	if cfg.SoonWindow != 48*time.Hour {
		t.Errorf("Expected default SoonWindow 48h, got %s", cfg.SoonWindow)
	}
	if cfg.CheapPriceLimit != 499 {
		t.Errorf("Expected default CheapPriceLimit 499, got %v", cfg.CheapPriceLimit)
	}
	if len(cfg.TechCategories) != 3 || cfg.TechCategories[1] != "Mobile" {
		t.Errorf("Expected trimmed tech categories, got %q", cfg.TechCategories)
	}
	if cfg.CategoryPolicy != CategoryPolicyFree {
		t.Errorf("Expected default category policy free, got %s", cfg.CategoryPolicy)
	}
	if cfg.AdminClaim != "admin" {
		t.Errorf("Expected default admin claim, got %s", cfg.AdminClaim)
	}
}

func TestLoad_MissingProjectID(t *testing.T) {
	isolate(t)
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")

	_, err := Load()
	if err == nil {
		t.Error("Load() should return an error when GOOGLE_CLOUD_PROJECT is not set")
	}
}

func TestLoad_MemoryStoreWithoutProject(t *testing.T) {
	isolate(t)
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("STORE", "memory")

	if _, err := Load(); err != nil {
		t.Errorf("Load() with memory store should not require a project, got %v", err)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"SOON_WINDOW", "not-a-duration"},
		{"CATEGORY_POLICY", "whatever"},
		{"RETENTION_DAYS", "0"},
		{"TIMEZONE", "Mars/Olympus"},
		{"STORE", "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			isolate(t)
			t.Setenv("GOOGLE_CLOUD_PROJECT", "test-project")
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() should return error for %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("GOOGLE_CLOUD_PROJECT=from-file\nCATEGORY_POLICY=strict\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ENV_FILE", path)
	// godotenv never overrides variables already present, so clear them first.
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	os.Unsetenv("GOOGLE_CLOUD_PROJECT")
	t.Setenv("CATEGORY_POLICY", "")
	os.Unsetenv("CATEGORY_POLICY")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ProjectID != "from-file" {
		t.Errorf("Expected project from .env file, got %q", cfg.ProjectID)
	}
	if cfg.CategoryPolicy != CategoryPolicyStrict {
		t.Errorf("Expected strict policy from .env file, got %q", cfg.CategoryPolicy)
	}
}
