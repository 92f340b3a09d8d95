package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHTTPPort       = 8080
	DefaultLogLevel       = "info"
	DefaultSessionTTL     = 30 * time.Minute
	DefaultCurrencySymbol = "$"
	DefaultLocale         = "en-US"
	DefaultWSReadLimit    = 4096
)

// Config holds the server-side configuration parsed from the `server:`
// section of config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API, WebSocket form and metrics listen on.
	HTTPPort int `yaml:"http_port"`

	// LogLevel is one of: debug | info | warn | error.
	LogLevel string `yaml:"log_level"`

	// Auth configures how the server authenticates REST and WebSocket clients.
	Auth AuthConfig `yaml:"auth"`

	// Session controls REST form session retention.
	Session SessionConfig `yaml:"session"`

	// Display controls how currency outputs are rendered. Applied live on
	// reload.
	Display DisplayConfig `yaml:"display"`

	// WS tunes the WebSocket form endpoint.
	WS WSConfig `yaml:"ws"`
}

// AuthConfig controls client authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected
	// API key. Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header to read the key from.
	// Defaults to "x-api-key" if empty.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// SessionConfig controls in-memory form session retention.
type SessionConfig struct {
	// TTL is how long a session survives without an event before it is
	// evicted. Default: 30m.
	TTL time.Duration `yaml:"ttl"`
}

// DisplayConfig controls output formatting.
type DisplayConfig struct {
	CurrencySymbol string `yaml:"currency_symbol"`
	Locale         string `yaml:"locale"`
}

// WSConfig tunes the WebSocket endpoint.
type WSConfig struct {
	// ReadLimit is the largest client frame accepted, in bytes.
	ReadLimit int64 `yaml:"read_limit"`
}

// SlogLevel maps LogLevel to a slog.Level. Unknown values map to Info.
func (s ServerConfig) SlogLevel() slog.Level {
	switch s.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads and parses the config file at path.
// Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaults()
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			LogLevel: DefaultLogLevel,
			Session: SessionConfig{
				TTL: DefaultSessionTTL,
			},
			Display: DisplayConfig{
				CurrencySymbol: DefaultCurrencySymbol,
				Locale:         DefaultLocale,
			},
			WS: WSConfig{
				ReadLimit: DefaultWSReadLimit,
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Server
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("server.log_level %q unknown: want debug|info|warn|error", s.LogLevel)
	}
	switch s.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", s.Auth.Mode)
	}
	if s.Auth.Mode == "apikey" && s.Auth.KeyEnv == "" {
		return fmt.Errorf("server.auth.key_env is required when mode is apikey")
	}
	if s.Session.TTL <= 0 {
		return fmt.Errorf("server.session.ttl must be positive")
	}
	if _, err := language.Parse(s.Display.Locale); err != nil {
		return fmt.Errorf("server.display.locale %q: %w", s.Display.Locale, err)
	}
	if s.WS.ReadLimit < 256 {
		return fmt.Errorf("server.ws.read_limit %d is below 256 bytes", s.WS.ReadLimit)
	}
	return nil
}
