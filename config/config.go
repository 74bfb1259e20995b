// Package config provides loading and parsing of statecache.yaml configuration files.
// Cache configurations select the snapshot store backend and tune integrity checking.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents a statecache.yaml configuration file.
type Config struct {
	// Snapshot store selection and tuning
	Store *StoreConfig `yaml:"store,omitempty"`

	// Input integrity checking
	Integrity *IntegrityConfig `yaml:"integrity,omitempty"`
}

// StoreConfig selects and configures the snapshot store backend.
type StoreConfig struct {
	// Backend is the store implementation to use.
	// One of "fs", "memory", "sqlite" or "redis".
	// Default: "fs"
	Backend string `yaml:"backend,omitempty"`

	// Dir is the snapshot directory for the "fs" backend.
	// Default: ".statecache"
	Dir string `yaml:"dir,omitempty"`

	// Path is the database file for the "sqlite" backend.
	// Default: "statecache.db"
	Path string `yaml:"path,omitempty"`

	// Redis configures the "redis" backend.
	Redis *RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig configures the Redis snapshot store.
type RedisConfig struct {
	// URL is the Redis connection URL.
	// Default: "redis://localhost:6379"
	URL string `yaml:"url,omitempty"`

	// KeyPrefix is the Redis key prefix for snapshot entries.
	// Default: "statecache:snapshot:"
	KeyPrefix string `yaml:"key_prefix,omitempty"`

	// TTL is how long snapshot entries live before Redis expires them.
	// Format: Go duration string (e.g., "24h")
	// Default: no expiry
	TTL string `yaml:"ttl,omitempty"`

	// ConnectTimeout is the timeout for establishing the connection.
	// Format: Go duration string (e.g., "5s")
	// Default: 5s
	ConnectTimeout string `yaml:"connect_timeout,omitempty"`
}

// IntegrityConfig tunes verification of the files a snapshot references.
type IntegrityConfig struct {
	// Enabled turns on manifest capture at save time and verification
	// at load time.
	// Default: false
	Enabled bool `yaml:"enabled,omitempty"`
}

// GetBackend returns the configured backend name or the default value.
func (s *StoreConfig) GetBackend() string {
	if s == nil || s.Backend == "" {
		return "fs"
	}
	return s.Backend
}

// GetDir returns the snapshot directory or the default value.
func (s *StoreConfig) GetDir() string {
	if s == nil || s.Dir == "" {
		return ".statecache"
	}
	return s.Dir
}

// GetPath returns the database file path or the default value.
func (s *StoreConfig) GetPath() string {
	if s == nil || s.Path == "" {
		return "statecache.db"
	}
	return s.Path
}

// GetURL returns the Redis URL or the default value.
func (r *RedisConfig) GetURL() string {
	if r == nil || r.URL == "" {
		return "redis://localhost:6379"
	}
	return r.URL
}

// GetKeyPrefix returns the Redis key prefix or the default value.
func (r *RedisConfig) GetKeyPrefix() string {
	if r == nil || r.KeyPrefix == "" {
		return "statecache:snapshot:"
	}
	return r.KeyPrefix
}

// GetTTL parses the TTL string and returns a duration.
// Returns zero (no expiry) if not set or invalid.
func (r *RedisConfig) GetTTL() time.Duration {
	if r == nil || r.TTL == "" {
		return 0
	}
	d, err := time.ParseDuration(r.TTL)
	if err != nil {
		return 0
	}
	return d
}

// GetConnectTimeout parses the connect timeout string and returns a duration.
// Returns the default value if not set or invalid.
func (r *RedisConfig) GetConnectTimeout() time.Duration {
	if r == nil || r.ConnectTimeout == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(r.ConnectTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// IsEnabled reports whether integrity checking is turned on.
func (i *IntegrityConfig) IsEnabled() bool {
	return i != nil && i.Enabled
}

// Load reads and parses a statecache.yaml file from the given path.
// If the path is a directory, it looks for statecache.yaml or statecache.yml in that directory.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	var configPath string
	if info.IsDir() {
		// Try statecache.yaml first, then statecache.yml
		yamlPath := filepath.Join(path, "statecache.yaml")
		if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			ymlPath := filepath.Join(path, "statecache.yml")
			if _, err := os.Stat(ymlPath); err == nil {
				configPath = ymlPath
			} else {
				return nil, fmt.Errorf("no statecache.yaml or statecache.yml found in %s", path)
			}
		}
	} else {
		configPath = path
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// LoadFromDir searches for statecache.yaml starting from the given directory
// and walking up to parent directories until found or root is reached.
func LoadFromDir(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		config, err := Load(absDir)
		if err == nil {
			return config, nil
		}

		// Move to parent directory
		parent := filepath.Dir(absDir)
		if parent == absDir {
			// Reached root
			return nil, fmt.Errorf("no statecache.yaml found in %s or parent directories", dir)
		}
		absDir = parent
	}
}

// LoadFromCurrentDir loads statecache.yaml from the current working directory.
func LoadFromCurrentDir() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return LoadFromDir(cwd)
}
