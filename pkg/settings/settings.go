// Package settings manages persistent user settings for the fabricgen and
// fabricctl commands. Values come from ~/.fabricgen/settings.json and may be
// overridden by FABRICGEN_* environment variables.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of every environment override, e.g.
// FABRICGEN_INVENTORY.
const EnvPrefix = "fabricgen"

// Built-in fallbacks for unset settings.
const (
	DefaultInventoryPath = "inventory/hosts.yml"
	DefaultConfigPath    = "fabric.yaml"
	DefaultVaultFile     = "inventory/group_vars/vault.yml"
	DefaultRedisAddr     = "localhost:6379"
)

// Settings holds persistent user preferences
type Settings struct {
	// InventoryPath is where generated inventories are written and read
	InventoryPath string `json:"inventory_path,omitempty" envconfig:"INVENTORY"`

	// ConfigPath is the fabric definition used when --config is not given
	ConfigPath string `json:"config_path,omitempty" envconfig:"CONFIG"`

	// ProjectDir holds ansible.cfg, requirements.yml and the playbooks
	ProjectDir string `json:"project_dir,omitempty" envconfig:"PROJECT_DIR"`

	// VaultFile is the ansible-vault file holding device credentials
	VaultFile string `json:"vault_file,omitempty" envconfig:"VAULT_FILE"`

	// AnsibleBin overrides the directory searched for ansible binaries
	AnsibleBin string `json:"ansible_bin,omitempty" envconfig:"ANSIBLE_BIN"`

	// RedisAddr is the server inventories are published to
	RedisAddr string `json:"redis_addr,omitempty" envconfig:"REDIS_ADDR"`

	// RedisDB selects the Redis database
	RedisDB int `json:"redis_db,omitempty" envconfig:"REDIS_DB"`

	// RedisPassword is never written to disk
	RedisPassword string `json:"-" envconfig:"REDIS_PASSWORD"`

	// AuditLog is the JSON-lines file fabricctl records deployments in
	AuditLog string `json:"audit_log,omitempty" envconfig:"AUDIT_LOG"`
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fabricgen_settings.json"
	}
	return filepath.Join(home, ".fabricgen", "settings.json")
}

// DefaultAuditLogPath returns the default deployment history file.
func DefaultAuditLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fabricgen_audit.log"
	}
	return filepath.Join(home, ".fabricgen", "audit.log")
}

// Load reads settings from the default location and applies environment
// overrides.
func Load() (*Settings, error) {
	s, err := LoadFrom(DefaultSettingsPath())
	if err != nil {
		return nil, err
	}
	if err := s.ApplyEnv(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadFrom reads settings from a specific path
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty settings if file doesn't exist
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}

	return s, nil
}

// ApplyEnv overlays FABRICGEN_* environment variables. Unset variables leave
// the current value in place.
func (s *Settings) ApplyEnv() error {
	if err := envconfig.Process(EnvPrefix, s); err != nil {
		return fmt.Errorf("reading %s_* environment: %w", EnvPrefix, err)
	}
	return nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetInventoryPath returns the inventory path (with fallback)
func (s *Settings) GetInventoryPath() string {
	if s.InventoryPath != "" {
		return s.InventoryPath
	}
	return DefaultInventoryPath
}

// GetConfigPath returns the fabric definition path (with fallback)
func (s *Settings) GetConfigPath() string {
	if s.ConfigPath != "" {
		return s.ConfigPath
	}
	return DefaultConfigPath
}

// GetProjectDir returns the ansible project directory (with fallback)
func (s *Settings) GetProjectDir() string {
	if s.ProjectDir != "" {
		return s.ProjectDir
	}
	return "."
}

// GetVaultFile returns the vault file (with fallback)
func (s *Settings) GetVaultFile() string {
	if s.VaultFile != "" {
		return s.VaultFile
	}
	return DefaultVaultFile
}

// GetRedisAddr returns the Redis address (with fallback)
func (s *Settings) GetRedisAddr() string {
	if s.RedisAddr != "" {
		return s.RedisAddr
	}
	return DefaultRedisAddr
}

// GetAuditLog returns the audit log path (with fallback)
func (s *Settings) GetAuditLog() string {
	if s.AuditLog != "" {
		return s.AuditLog
	}
	return DefaultAuditLogPath()
}

// Set assigns a setting by its JSON key. It is what `fabricgen settings set`
// calls.
func (s *Settings) Set(key, value string) error {
	switch key {
	case "inventory_path":
		s.InventoryPath = value
	case "config_path":
		s.ConfigPath = value
	case "project_dir":
		s.ProjectDir = value
	case "vault_file":
		s.VaultFile = value
	case "ansible_bin":
		s.AnsibleBin = value
	case "redis_addr":
		s.RedisAddr = value
	case "audit_log":
		s.AuditLog = value
	case "redis_db":
		var db int
		if _, err := fmt.Sscanf(value, "%d", &db); err != nil || db < 0 {
			return fmt.Errorf("redis_db must be a non-negative integer, got %q", value)
		}
		s.RedisDB = db
	default:
		return fmt.Errorf("unknown setting %q (valid: %v)", key, Keys())
	}
	return nil
}

// Keys lists the settable keys.
func Keys() []string {
	return []string{"inventory_path", "config_path", "project_dir", "vault_file", "ansible_bin", "redis_addr", "redis_db", "audit_log"}
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
