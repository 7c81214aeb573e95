package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		t.Setenv(EnvAPIURL, "")
		config := DefaultConfig()

		if config.API.BaseURL != "http://localhost:8080" {
			t.Errorf("expected base URL http://localhost:8080, got %s", config.API.BaseURL)
		}

		if config.API.Timeout() != 0 {
			t.Errorf("expected no timeout by default, got %v", config.API.Timeout())
		}

		if config.Session.Path != "./catalogctl.db" {
			t.Errorf("expected session path ./catalogctl.db, got %s", config.Session.Path)
		}

		if config.Display.TagLimit != 5 {
			t.Errorf("expected tag limit 5, got %d", config.Display.TagLimit)
		}
	})

	t.Run("DefaultConfig With Env Override", func(t *testing.T) {
		t.Setenv(EnvAPIURL, "http://catalog.internal:9000")

		config := DefaultConfig()
		if config.API.BaseURL != "http://catalog.internal:9000" {
			t.Errorf("expected env base URL, got %s", config.API.BaseURL)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		t.Setenv(EnvAPIURL, "")
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Session.Path != DefaultConfig().Session.Path {
			t.Errorf("created config session path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Setenv(EnvAPIURL, "")
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[api]
base_url = "http://localhost:9090"
timeout_seconds = 15

[session]
path = "/custom/session.db"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "http://localhost:9090" {
			t.Errorf("expected base URL http://localhost:9090, got %s", config.API.BaseURL)
		}
		if config.API.Timeout() != 15*time.Second {
			t.Errorf("expected 15s timeout, got %v", config.API.Timeout())
		}
		if config.Session.Path != "/custom/session.db" {
			t.Errorf("expected session path /custom/session.db, got %s", config.Session.Path)
		}
		if config.Display.TagLimit != 5 {
			t.Errorf("expected missing keys to keep defaults, got tag limit %d", config.Display.TagLimit)
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[api\nbase_url="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})
}
