package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API           APIConfig           `toml:"api"`
	Retry         RetryConfig         `toml:"retry"`
	Notifications NotificationsConfig `toml:"notifications"`
	Database      DatabaseConfig      `toml:"database"`
	Log           LogConfig           `toml:"log"`
}

// APIConfig contains settings for the remote media API.
type APIConfig struct {
	BaseURL           string  `toml:"base_url"`
	Timeout           string  `toml:"timeout"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

// RetryConfig bounds automatic retries of rate-limited (429) requests.
type RetryConfig struct {
	MaxRetries int    `toml:"max_retries"`
	BaseDelay  string `toml:"base_delay"`
	MaxDelay   string `toml:"max_delay"`
}

// NotificationsConfig contains push channel settings.
type NotificationsConfig struct {
	URL                  string `toml:"url"`
	ReconnectDelay       string `toml:"reconnect_delay"`
	MaxReconnectDelay    string `toml:"max_reconnect_delay"`
	MaxReconnectAttempts int    `toml:"max_reconnect_attempts"`
}

// DatabaseConfig contains database connection settings.
//
// An empty path keeps credentials in memory only.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that every duration parses and that numeric limits are sane.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url is required", ErrInvalidConfig)
	}
	for name, value := range map[string]string{
		"api.timeout":                       c.API.Timeout,
		"retry.base_delay":                  c.Retry.BaseDelay,
		"retry.max_delay":                   c.Retry.MaxDelay,
		"notifications.reconnect_delay":     c.Notifications.ReconnectDelay,
		"notifications.max_reconnect_delay": c.Notifications.MaxReconnectDelay,
	} {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("%w: retry.max_retries must not be negative", ErrInvalidConfig)
	}
	if c.Notifications.MaxReconnectAttempts < 0 {
		return fmt.Errorf("%w: notifications.max_reconnect_attempts must not be negative", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.Log.Level); c.Log.Level != "" && err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	return nil
}

// TimeoutDuration returns the HTTP client timeout (30s when unset).
func (c APIConfig) TimeoutDuration() time.Duration {
	return ParseDurationOr(c.Timeout, 30*time.Second)
}

// Delays returns the base and maximum 429 backoff delays.
func (c RetryConfig) Delays() (base, max time.Duration) {
	return ParseDurationOr(c.BaseDelay, time.Second), ParseDurationOr(c.MaxDelay, 30*time.Second)
}

// Delays returns the base and maximum reconnect delays.
func (c NotificationsConfig) Delays() (base, max time.Duration) {
	return ParseDurationOr(c.ReconnectDelay, time.Second), ParseDurationOr(c.MaxReconnectDelay, 30*time.Second)
}

// ParseDurationOr parses s, returning fallback when s is empty or malformed.
func ParseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
