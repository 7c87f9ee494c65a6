package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Database settings
	Database DatabaseConfig `yaml:"database"`

	// Invoice settings
	Invoice InvoiceConfig `yaml:"invoice"`

	// VA profile used to label reports and invoices
	Profile ProfileConfig `yaml:"profile"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database
}

type InvoiceConfig struct {
	DefaultDueDays int     `yaml:"default_due_days"` // Days until invoice due
	DefaultTaxRate float64 `yaml:"default_tax_rate"` // Tax rate as decimal (0.0825 = 8.25%)
	NumberPrefix   string  `yaml:"number_prefix"`    // Invoice number prefix (e.g., "INV")
}

type ProfileConfig struct {
	UserID       string `yaml:"user_id"` // VA identifier stamped on saved reports
	Name         string `yaml:"name"`
	BusinessName string `yaml:"business_name"`
	Email        string `yaml:"email"`
}

// DefaultConfigPath returns ~/.config/vaops/config.yaml
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "vaops", "config.yaml")
	}
	return filepath.Join(homeDir, ".config", "vaops", "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return &Config{
		Database: DatabaseConfig{
			Path: filepath.Join(homeDir, ".config", "vaops", "vaops.db"),
		},
		Invoice: InvoiceConfig{
			DefaultDueDays: 30,
			DefaultTaxRate: 0.0,
			NumberPrefix:   "INV",
		},
		Profile: ProfileConfig{
			UserID: "local",
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	// If file doesn't exist, return defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Parse YAML over defaults
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	// Create parent directories if they don't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Marshal to YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// Write to file
	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates all necessary directories
func (c *Config) EnsureDirectories() error {
	dbDir := filepath.Dir(c.Database.Path)
	return os.MkdirAll(dbDir, 0755)
}
