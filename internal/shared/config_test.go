package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./mrx.db" {
			t.Errorf("expected database path ./mrx.db, got %s", config.Database.Path)
		}
		if config.API.BaseURL != "http://localhost:3001/api" {
			t.Errorf("expected api base url http://localhost:3001/api, got %s", config.API.BaseURL)
		}
		if config.Retry.MaxRetries != 5 {
			t.Errorf("expected 5 max retries, got %d", config.Retry.MaxRetries)
		}
		if got := config.API.TimeoutDuration(); got != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", got)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("Overrides And Keeps Defaults", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			testConfig := `[api]
base_url = "https://media.example.com/api"
timeout = "5s"

[retry]
max_retries = 2
base_delay = "250ms"

[database]
path = ""
`
			if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			config, err := LoadConfig(configPath)
			if err != nil {
				t.Fatalf("failed to load config: %v", err)
			}

			if config.API.BaseURL != "https://media.example.com/api" {
				t.Errorf("expected overridden base url, got %s", config.API.BaseURL)
			}
			if got := config.API.TimeoutDuration(); got != 5*time.Second {
				t.Errorf("expected 5s timeout, got %v", got)
			}
			base, max := config.Retry.Delays()
			if base != 250*time.Millisecond || max != 30*time.Second {
				t.Errorf("expected delays 250ms/30s, got %v/%v", base, max)
			}
			if config.Database.Path != "" {
				t.Errorf("expected empty database path, got %s", config.Database.Path)
			}
			if config.Notifications.MaxReconnectAttempts != 10 {
				t.Errorf("expected default reconnect attempts 10, got %d", config.Notifications.MaxReconnectAttempts)
			}
		})

		t.Run("Invalid Duration", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(configPath, []byte("[api]\ntimeout = \"soon\"\n"), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			_, err := LoadConfig(configPath)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})

		t.Run("Missing File", func(t *testing.T) {
			if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
				t.Error("expected error for missing file")
			}
		})
	})

	t.Run("ParseDurationOr", func(t *testing.T) {
		tc := []struct {
			name string
			in   string
			want time.Duration
		}{
			{name: "empty", in: "", want: time.Minute},
			{name: "valid", in: "2s", want: 2 * time.Second},
			{name: "malformed", in: "abc", want: time.Minute},
			{name: "negative", in: "-1s", want: time.Minute},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := ParseDurationOr(tt.in, time.Minute); got != tt.want {
					t.Errorf("ParseDurationOr(%q) = %v, want %v", tt.in, got, tt.want)
				}
			})
		}
	})
}
