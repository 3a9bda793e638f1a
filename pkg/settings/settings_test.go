package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSettings_Defaults(t *testing.T) {
	s := &Settings{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"inventory", s.GetInventoryPath(), "inventory/hosts.yml"},
		{"config", s.GetConfigPath(), "fabric.yaml"},
		{"project", s.GetProjectDir(), "."},
		{"vault", s.GetVaultFile(), "inventory/group_vars/vault.yml"},
		{"redis", s.GetRedisAddr(), "localhost:6379"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s default = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestSettings_Set(t *testing.T) {
	s := &Settings{}

	if err := s.Set("inventory_path", "dc1/hosts.yml"); err != nil {
		t.Fatalf("Set(inventory_path): %v", err)
	}
	if s.GetInventoryPath() != "dc1/hosts.yml" {
		t.Errorf("GetInventoryPath() = %q", s.GetInventoryPath())
	}

	if err := s.Set("redis_db", "3"); err != nil || s.RedisDB != 3 {
		t.Errorf("Set(redis_db, 3) = %v, RedisDB = %d", err, s.RedisDB)
	}
	if err := s.Set("redis_db", "-1"); err == nil {
		t.Error("Set(redis_db, -1) should fail")
	}
	if err := s.Set("no_such_key", "x"); err == nil {
		t.Error("Set with unknown key should fail")
	}

	for _, key := range Keys() {
		value := "1"
		if err := s.Set(key, value); err != nil {
			t.Errorf("Set(%q) failed: %v", key, err)
		}
	}
}

func TestSettings_Clear(t *testing.T) {
	s := &Settings{
		InventoryPath: "x",
		ProjectDir:    "/srv/fabric",
		RedisDB:       2,
	}

	s.Clear()

	if s.InventoryPath != "" || s.ProjectDir != "" || s.RedisDB != 0 {
		t.Error("Clear() should reset all fields to empty")
	}
}

func TestSettings_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	original := &Settings{
		InventoryPath: "inventory/dc1.yml",
		ProjectDir:    "/srv/fabric",
		VaultFile:     "secrets/vault.yml",
		RedisAddr:     "10.0.0.5:6379",
		RedisDB:       4,
		RedisPassword: "hunter2",
	}

	if err := original.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() failed: %v", err)
	}

	if loaded.InventoryPath != original.InventoryPath {
		t.Errorf("InventoryPath mismatch: got %q, want %q", loaded.InventoryPath, original.InventoryPath)
	}
	if loaded.ProjectDir != original.ProjectDir {
		t.Errorf("ProjectDir mismatch: got %q, want %q", loaded.ProjectDir, original.ProjectDir)
	}
	if loaded.RedisDB != original.RedisDB {
		t.Errorf("RedisDB mismatch: got %d, want %d", loaded.RedisDB, original.RedisDB)
	}
	if loaded.RedisPassword != "" {
		t.Error("RedisPassword must not be persisted")
	}
}

func TestSettings_LoadNonExistent(t *testing.T) {
	// Load from non-existent path should return empty settings
	s, err := LoadFrom("/nonexistent/path/settings.json")
	if err != nil {
		t.Fatalf("LoadFrom() non-existent should not error: %v", err)
	}
	if s == nil {
		t.Fatal("LoadFrom() should return non-nil Settings")
	}
	if s.InventoryPath != "" || s.RedisAddr != "" {
		t.Error("LoadFrom() non-existent should return empty settings")
	}
}

func TestSettings_LoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("invalid json {"), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("LoadFrom() with invalid JSON should error")
	}
}

func TestSettings_SaveCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subdir", "nested", "settings.json")

	s := &Settings{InventoryPath: "test"}
	if err := s.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() should create directories: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("SaveTo() should have created the file")
	}
}

func TestDefaultSettingsPath(t *testing.T) {
	path := DefaultSettingsPath()
	if path == "" {
		t.Error("DefaultSettingsPath() should not be empty")
	}
	if !filepath.IsAbs(path) && path != "fabricgen_settings.json" {
		t.Errorf("DefaultSettingsPath() should be absolute or fallback, got %q", path)
	}
}

func TestSettings_ApplyEnv(t *testing.T) {
	t.Setenv("FABRICGEN_INVENTORY", "env/hosts.yml")
	t.Setenv("FABRICGEN_REDIS_DB", "7")
	t.Setenv("FABRICGEN_REDIS_PASSWORD", "s3cret")

	s := &Settings{InventoryPath: "file/hosts.yml", ProjectDir: "/from/file"}
	if err := s.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if s.InventoryPath != "env/hosts.yml" {
		t.Errorf("InventoryPath = %q, env should win", s.InventoryPath)
	}
	if s.ProjectDir != "/from/file" {
		t.Errorf("ProjectDir = %q, unset env should keep file value", s.ProjectDir)
	}
	if s.RedisDB != 7 || s.RedisPassword != "s3cret" {
		t.Errorf("RedisDB/RedisPassword = %d/%q", s.RedisDB, s.RedisPassword)
	}
}

func TestSettings_ApplyEnvInvalid(t *testing.T) {
	t.Setenv("FABRICGEN_REDIS_DB", "not-a-number")

	s := &Settings{}
	if err := s.ApplyEnv(); err == nil {
		t.Error("ApplyEnv should reject a non-numeric FABRICGEN_REDIS_DB")
	}
}

func TestLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("FABRICGEN_VAULT_FILE", "env/vault.yml")

	s := &Settings{InventoryPath: "home/hosts.yml"}
	if err := s.SaveTo(filepath.Join(home, ".fabricgen", "settings.json")); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.InventoryPath != "home/hosts.yml" {
		t.Errorf("InventoryPath = %q", loaded.InventoryPath)
	}
	if loaded.VaultFile != "env/vault.yml" {
		t.Errorf("VaultFile = %q, want env override", loaded.VaultFile)
	}
}
