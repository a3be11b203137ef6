package app

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	toml "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix marks the canonical environment variable namespace.
const envPrefix = "ANTHROPIC_PROXY_"

// Config is the fully resolved runtime configuration. Values are layered
// from defaults, an optional TOML file, a dotenv file, and environment
// variables, in that order of precedence; command-line flags are applied
// on top by the CLI before Validate.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Models   ModelsConfig   `koanf:"models"`
	Auth     AuthConfig     `koanf:"auth"`
	Log      LogConfig      `koanf:"log"`

	// Debug forces debug-level logging. Verbose additionally logs translated
	// upstream payloads.
	Debug   bool `koanf:"debug"`
	Verbose bool `koanf:"verbose"`
}

// ServerConfig holds the inbound listener settings.
type ServerConfig struct {
	Host string `koanf:"host" validate:"required"`
	Port int    `koanf:"port" validate:"min=1,max=65535"`
}

// UpstreamConfig holds the OpenAI-compatible upstream settings.
type UpstreamConfig struct {
	BaseURL        string        `koanf:"base_url" validate:"required,url"`
	APIKey         string        `koanf:"api_key"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"min=1s"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"min=100ms"`
}

// ModelsConfig holds the optional model overrides applied during request
// translation.
type ModelsConfig struct {
	Reasoning  string `koanf:"reasoning"`
	Completion string `koanf:"completion"`
}

// AuthConfig selects where the upstream API key lives.
type AuthConfig struct {
	Storage TokenStorageType `koanf:"storage" validate:"oneof=env file keyring"`
	KeyFile string           `koanf:"key_file" validate:"required_if=Storage file"`

	// apiKey carries the environment-sourced credential into the env store.
	apiKey string
}

// LogConfig holds the logging pipeline settings.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json otlp otlp-stdout"`
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ConfigFile is an optional TOML configuration file path.
	ConfigFile string
	// EnvFile overrides the dotenv search chain with one explicit path.
	EnvFile string
	// Environ supplies the process environment; defaults to os.Environ.
	Environ func() []string
}

func defaultConfig() map[string]any {
	return map[string]any{
		"server.host":              "0.0.0.0",
		"server.port":              3000,
		"upstream.request_timeout": "300s",
		"upstream.connect_timeout": "10s",
		"auth.storage":             "env",
		"log.level":                "info",
		"log.format":               "text",
	}
}

// legacyEnvAliases maps the flat variable names the original deployments
// used. Within a tier the targets are disjoint; later tiers load after and
// therefore override earlier ones.
var legacyEnvAliases = []map[string]string{
	{
		"ANTHROPIC_PROXY_BASE_URL": "upstream.base_url",
		"OPENROUTER_API_KEY":       "upstream.api_key",
	},
	{
		"PORT":              "server.port",
		"UPSTREAM_BASE_URL": "upstream.base_url",
		"UPSTREAM_API_KEY":  "upstream.api_key",
		"REASONING_MODEL":   "models.reasoning",
		"COMPLETION_MODEL":  "models.completion",
		"DEBUG":             "debug",
		"VERBOSE":           "verbose",
	},
}

// canonicalEnvVars maps ANTHROPIC_PROXY_-prefixed variable suffixes to
// configuration paths.
var canonicalEnvVars = map[string]string{
	"SERVER_HOST":              "server.host",
	"SERVER_PORT":              "server.port",
	"UPSTREAM_BASE_URL":        "upstream.base_url",
	"UPSTREAM_API_KEY":         "upstream.api_key",
	"UPSTREAM_REQUEST_TIMEOUT": "upstream.request_timeout",
	"UPSTREAM_CONNECT_TIMEOUT": "upstream.connect_timeout",
	"REASONING_MODEL":          "models.reasoning",
	"COMPLETION_MODEL":         "models.completion",
	"AUTH_STORAGE":             "auth.storage",
	"AUTH_KEY_FILE":            "auth.key_file",
	"LOG_LEVEL":                "log.level",
	"LOG_FORMAT":               "log.format",
	"DEBUG":                    "debug",
	"VERBOSE":                  "verbose",
}

// LoadConfig reads and merges configuration from all sources. Validation
// is a separate step so the CLI can apply flag overrides in between.
func LoadConfig(opts LoadOptions) (*Config, error) {
	environ := opts.Environ
	if environ == nil {
		environ = os.Environ
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultConfig(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if opts.ConfigFile != "" {
		if err := k.Load(file.Provider(opts.ConfigFile), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", opts.ConfigFile, err)
		}
	}

	if err := loadDotenv(k, opts.EnvFile); err != nil {
		return nil, err
	}

	// The process environment wins over file sources. Legacy flat names
	// load first so the prefixed canonical names take precedence.
	for _, aliases := range legacyEnvAliases {
		if err := k.Load(env.Provider(".", env.Opt{
			EnvironFunc:   environ,
			TransformFunc: aliasTransform(aliases),
		}), nil); err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
	}
	if err := k.Load(env.Provider(".", env.Opt{
		EnvironFunc:   environ,
		TransformFunc: canonicalTransform,
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Auth.apiKey = cfg.Upstream.APIKey

	return &cfg, nil
}

func aliasTransform(aliases map[string]string) func(string, string) (string, any) {
	return func(key, value string) (string, any) {
		if path, ok := aliases[key]; ok {
			return path, value
		}
		return "", nil
	}
}

func canonicalTransform(key, value string) (string, any) {
	suffix, ok := strings.CutPrefix(key, envPrefix)
	if !ok {
		return "", nil
	}
	if path, ok := canonicalEnvVars[suffix]; ok {
		return path, value
	}
	return "", nil
}

// loadDotenv merges the first existing dotenv file from the search chain.
// The files use the same flat variable names as the process environment and
// sit below it in precedence.
func loadDotenv(k *koanf.Koanf, explicit string) error {
	path, err := findDotenv(explicit)
	if err != nil || path == "" {
		return err
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}

	merged := map[string]any{}
	for _, aliases := range legacyEnvAliases {
		for name, confPath := range aliases {
			if value, ok := vars[name]; ok {
				merged[confPath] = value
			}
		}
	}
	for name, value := range vars {
		suffix, ok := strings.CutPrefix(name, envPrefix)
		if !ok {
			continue
		}
		if confPath, ok := canonicalEnvVars[suffix]; ok {
			merged[confPath] = value
		}
	}

	if len(merged) == 0 {
		return nil
	}
	if err := k.Load(confmap.Provider(merged, "."), nil); err != nil {
		return fmt.Errorf("merging env file %s: %w", path, err)
	}
	return nil
}

// findDotenv returns the explicit path when given, else the first existing
// file in the default chain. A missing explicit path is an error; a missing
// default is not.
func findDotenv(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("env file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	candidates := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".anthropic-proxy.env"))
	}
	candidates = append(candidates, "/etc/anthropic-proxy/.env")

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the assembled configuration and warns about allowed but
// suspicious values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// The upstream client appends /v1/chat/completions itself, so a base
	// URL already ending in /v1 produces /v1/v1/... request paths.
	if strings.HasSuffix(strings.TrimRight(c.Upstream.BaseURL, "/"), "/v1") {
		slog.Warn("upstream base URL ends with /v1, the API path is appended automatically",
			"base_url", c.Upstream.BaseURL)
	}

	return nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// LogLevel resolves the effective log level; the debug switch wins over the
// configured level.
func (c *Config) LogLevel() (slog.Level, error) {
	if c.Debug {
		return slog.LevelDebug, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return level, nil
}
