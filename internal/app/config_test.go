package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func environ(vars ...string) func() []string {
	return func() []string { return vars }
}

// isolate keeps the dotenv search chain away from the developer's real
// working directory and home.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig(LoadOptions{Environ: environ()})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 3000 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Upstream.RequestTimeout != 300*time.Second {
		t.Errorf("request timeout = %v", cfg.Upstream.RequestTimeout)
	}
	if cfg.Upstream.ConnectTimeout != 10*time.Second {
		t.Errorf("connect timeout = %v", cfg.Upstream.ConnectTimeout)
	}
	if cfg.Auth.Storage != TokenStorageTypeEnv {
		t.Errorf("auth storage = %q", cfg.Auth.Storage)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Debug || cfg.Verbose {
		t.Errorf("debug/verbose = %v/%v, want false", cfg.Debug, cfg.Verbose)
	}
}

func TestLoadConfigLegacyEnvironment(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig(LoadOptions{Environ: environ(
		"PORT=8080",
		"UPSTREAM_BASE_URL=https://api.example.com",
		"UPSTREAM_API_KEY=sk-legacy",
		"REASONING_MODEL=deepseek-r1",
		"COMPLETION_MODEL=gpt-4o",
		"DEBUG=1",
		"VERBOSE=true",
	)})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Upstream.BaseURL != "https://api.example.com" {
		t.Errorf("base url = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.APIKey != "sk-legacy" {
		t.Errorf("api key = %q", cfg.Upstream.APIKey)
	}
	if cfg.Models.Reasoning != "deepseek-r1" || cfg.Models.Completion != "gpt-4o" {
		t.Errorf("models = %+v", cfg.Models)
	}
	if !cfg.Debug || !cfg.Verbose {
		t.Errorf("debug/verbose = %v/%v, want true", cfg.Debug, cfg.Verbose)
	}
}

func TestLoadConfigAliasPrecedence(t *testing.T) {
	isolate(t)

	tests := []struct {
		name        string
		environ     []string
		wantBaseURL string
		wantAPIKey  string
	}{
		{
			name: "UPSTREAM names win over their alternates",
			environ: []string{
				"ANTHROPIC_PROXY_BASE_URL=https://alternate.example",
				"UPSTREAM_BASE_URL=https://primary.example",
				"OPENROUTER_API_KEY=sk-alternate",
				"UPSTREAM_API_KEY=sk-primary",
			},
			wantBaseURL: "https://primary.example",
			wantAPIKey:  "sk-primary",
		},
		{
			name: "canonical prefixed names win over legacy",
			environ: []string{
				"UPSTREAM_BASE_URL=https://legacy.example",
				"ANTHROPIC_PROXY_UPSTREAM_BASE_URL=https://canonical.example",
			},
			wantBaseURL: "https://canonical.example",
		},
		{
			name: "alternates apply when primaries are absent",
			environ: []string{
				"ANTHROPIC_PROXY_BASE_URL=https://alternate.example",
				"OPENROUTER_API_KEY=sk-alternate",
			},
			wantBaseURL: "https://alternate.example",
			wantAPIKey:  "sk-alternate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(LoadOptions{Environ: environ(tt.environ...)})
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.Upstream.BaseURL != tt.wantBaseURL {
				t.Errorf("base url = %q, want %q", cfg.Upstream.BaseURL, tt.wantBaseURL)
			}
			if tt.wantAPIKey != "" && cfg.Upstream.APIKey != tt.wantAPIKey {
				t.Errorf("api key = %q, want %q", cfg.Upstream.APIKey, tt.wantAPIKey)
			}
		})
	}
}

func TestLoadConfigTOMLFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "config.toml")
	content := strings.Join([]string{
		`debug = true`,
		``,
		`[server]`,
		`port = 9999`,
		``,
		`[upstream]`,
		`base_url = "https://file.example"`,
		`request_timeout = "120s"`,
		``,
		`[models]`,
		`reasoning = "deepseek-r1"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(LoadOptions{ConfigFile: path, Environ: environ("PORT=1234")})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	// Environment beats the file.
	if cfg.Server.Port != 1234 {
		t.Errorf("port = %d, want the environment override", cfg.Server.Port)
	}
	if cfg.Upstream.BaseURL != "https://file.example" {
		t.Errorf("base url = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.RequestTimeout != 120*time.Second {
		t.Errorf("request timeout = %v", cfg.Upstream.RequestTimeout)
	}
	if cfg.Models.Reasoning != "deepseek-r1" {
		t.Errorf("reasoning model = %q", cfg.Models.Reasoning)
	}
	if !cfg.Debug {
		t.Error("debug = false, want true from file")
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "proxy.env")
	content := strings.Join([]string{
		"UPSTREAM_BASE_URL=https://dotenv.example",
		"OPENROUTER_API_KEY=sk-dotenv",
		"ANTHROPIC_PROXY_LOG_LEVEL=debug",
		"PORT=4100",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(LoadOptions{EnvFile: path, Environ: environ("PORT=4200")})
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Upstream.BaseURL != "https://dotenv.example" {
		t.Errorf("base url = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.APIKey != "sk-dotenv" {
		t.Errorf("api key = %q", cfg.Upstream.APIKey)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	// The process environment beats the dotenv file.
	if cfg.Server.Port != 4200 {
		t.Errorf("port = %d, want the environment value", cfg.Server.Port)
	}
}

func TestLoadConfigMissingEnvFile(t *testing.T) {
	isolate(t)

	_, err := LoadConfig(LoadOptions{
		EnvFile: filepath.Join(t.TempDir(), "does-not-exist.env"),
		Environ: environ(),
	})
	if err == nil {
		t.Fatal("want error for an explicitly named env file that does not exist")
	}
}

func TestValidate(t *testing.T) {
	isolate(t)

	load := func(t *testing.T, vars ...string) *Config {
		t.Helper()
		cfg, err := LoadConfig(LoadOptions{Environ: environ(vars...)})
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		return cfg
	}

	t.Run("complete config passes", func(t *testing.T) {
		cfg := load(t, "UPSTREAM_BASE_URL=https://api.example.com")
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("missing base url fails", func(t *testing.T) {
		cfg := load(t)
		if err := cfg.Validate(); err == nil {
			t.Error("want error for missing upstream base URL")
		}
	})

	t.Run("port out of range fails", func(t *testing.T) {
		cfg := load(t, "UPSTREAM_BASE_URL=https://api.example.com")
		cfg.Server.Port = 0
		if err := cfg.Validate(); err == nil {
			t.Error("want error for port 0")
		}
	})

	t.Run("unknown storage backend fails", func(t *testing.T) {
		cfg := load(t, "UPSTREAM_BASE_URL=https://api.example.com")
		cfg.Auth.Storage = "vault"
		if err := cfg.Validate(); err == nil {
			t.Error("want error for unknown storage backend")
		}
	})

	t.Run("file storage requires a key file", func(t *testing.T) {
		cfg := load(t, "UPSTREAM_BASE_URL=https://api.example.com")
		cfg.Auth.Storage = TokenStorageTypeFile
		if err := cfg.Validate(); err == nil {
			t.Error("want error for file storage without key file")
		}
	})
}

func TestConfigAddr(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "127.0.0.1", Port: 3000}}
	if got := cfg.Addr(); got != "127.0.0.1:3000" {
		t.Errorf("Addr() = %q", got)
	}
}

func TestConfigLogLevel(t *testing.T) {
	cfg := &Config{Log: LogConfig{Level: "warn"}}

	level, err := cfg.LogLevel()
	if err != nil {
		t.Fatalf("LogLevel() error = %v", err)
	}
	if level.String() != "WARN" {
		t.Errorf("level = %v", level)
	}

	cfg.Debug = true
	level, err = cfg.LogLevel()
	if err != nil {
		t.Fatalf("LogLevel() error = %v", err)
	}
	if level.String() != "DEBUG" {
		t.Errorf("level = %v, want debug override", level)
	}

	cfg.Debug = false
	cfg.Log.Level = "loud"
	if _, err := cfg.LogLevel(); err == nil {
		t.Error("want error for unknown level")
	}
}
