// ABOUTME: Configuration loading and parsing for fold-drive
// ABOUTME: Supports YAML files with environment variable expansion and defaults

package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the complete fold-drive configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Blob     BlobConfig     `yaml:"blob"`
	Auth     AuthConfig     `yaml:"auth"`
	Suggest  SuggestConfig  `yaml:"suggest"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// BlobConfig selects and configures the binary object store backend.
type BlobConfig struct {
	// Backend is "disk" (default) or "minio"
	Backend string      `yaml:"backend"`
	Dir     string      `yaml:"dir"` // disk backend: data directory
	Minio   MinioConfig `yaml:"minio"`
}

// MinioConfig holds MinIO connection settings for the minio blob backend.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// SuggestConfig holds AI note-suggestion configuration. The feature is
// disabled entirely when Enabled is false.
type SuggestConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills in the fields a local deployment can reasonably omit.
func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8080"
	}
	if c.Database.Path == "" {
		c.Database.Path = "drive.db"
	}
	if c.Blob.Backend == "" {
		c.Blob.Backend = "disk"
	}
	if c.Blob.Dir == "" {
		c.Blob.Dir = "uploads"
	}
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	switch c.Blob.Backend {
	case "disk":
		// Dir is defaulted above
	case "minio":
		if c.Blob.Minio.Endpoint == "" {
			return fmt.Errorf("blob.minio.endpoint is required for the minio backend")
		}
		if c.Blob.Minio.Bucket == "" {
			return fmt.Errorf("blob.minio.bucket is required for the minio backend")
		}
	default:
		return fmt.Errorf("blob.backend must be \"disk\" or \"minio\", got %q", c.Blob.Backend)
	}

	if c.Suggest.Enabled && c.Suggest.APIKey == "" {
		return fmt.Errorf("suggest.api_key is required when suggestions are enabled")
	}

	return nil
}
