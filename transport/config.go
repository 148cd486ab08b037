package transport

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the connection settings for one Intelligence Server
// environment. It is typically loaded from a YAML file checked in next to
// the automation scripts that use the SDK.
type Config struct {
	// BaseURL is the REST API root, e.g.
	// "https://env.example.com/MicroStrategyLibrary/api".
	BaseURL string `yaml:"base_url"`

	// Username and Password authenticate the session. LoginMode selects the
	// authentication mode (1 = standard, 16 = LDAP). Default: 1.
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	LoginMode int    `yaml:"login_mode,omitempty"`

	// ProjectID scopes requests to a project. Optional; requests carry the
	// project header only when set.
	ProjectID string `yaml:"project_id,omitempty"`

	// RequestTimeout bounds each REST call.
	// Format: Go duration string (e.g., "30s", "1m").
	// Default: 30s.
	RequestTimeout string `yaml:"request_timeout,omitempty"`

	// Cache configures optional GET response caching.
	Cache *CacheConfig `yaml:"cache,omitempty"`
}

// CacheConfig configures the transport's response cache.
type CacheConfig struct {
	// Enabled turns response caching on.
	Enabled bool `yaml:"enabled"`

	// RedisURL selects the shared Redis store. Empty means an in-process
	// store.
	RedisURL string `yaml:"redis_url,omitempty"`

	// TTL is the lifetime of a cached response.
	// Format: Go duration string (e.g., "60s").
	// Default: 60s.
	TTL string `yaml:"ttl,omitempty"`
}

// GetRequestTimeout parses the request timeout string and returns a
// duration. Returns the default value if not set or invalid.
func (c *Config) GetRequestTimeout() time.Duration {
	if c == nil || c.RequestTimeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetLoginMode returns the configured login mode or the standard mode.
func (c *Config) GetLoginMode() int {
	if c == nil || c.LoginMode <= 0 {
		return 1
	}
	return c.LoginMode
}

// GetTTL parses the cache TTL string and returns a duration.
// Returns the default value if not set or invalid.
func (c *CacheConfig) GetTTL() time.Duration {
	if c == nil || c.TTL == "" {
		return 60 * time.Second
	}
	d, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// LoadConfig reads and parses a YAML connection config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if config.BaseURL == "" {
		return nil, fmt.Errorf("config is missing base_url")
	}

	return &config, nil
}
