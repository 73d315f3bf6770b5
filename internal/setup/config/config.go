package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
)

// RepositoryVersion is the repository version tag for config file references.
const RepositoryVersion = "v0.1.0"

// CurrentVersion is the current version of the hub config file.
const CurrentVersion = 1

// ConfigName is the base name of the config file, without extension.
const ConfigName = "hub"

// Config represents the entire application configuration.
type Config struct {
	// Version of the config file.
	Version        int            `koanf:"version"`
	Debug          Debug          `koanf:"debug"`
	Telemetry      Telemetry      `koanf:"telemetry"`
	CircuitBreaker CircuitBreaker `koanf:"circuit_breaker"`
	Retry          Retry          `koanf:"retry"`
	Transport      Transport      `koanf:"transport"`
	Redis          Redis          `koanf:"redis"`
	Session        Session        `koanf:"session"`
	Endpoints      Endpoints      `koanf:"endpoints"`
	Preload        Preload        `koanf:"preload"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Maximum lines per log file.
	MaxLogLines int `koanf:"max_log_lines"`
}

// Telemetry contains trace export configuration.
type Telemetry struct {
	// Uptrace DSN. Empty disables trace export.
	UptraceDSN string `koanf:"uptrace_dsn"`
	// Service name reported with exported spans.
	ServiceName string `koanf:"service_name"`
}

// CircuitBreaker contains circuit breaker configuration.
// A zero MaxRequests disables the circuit breaker middleware.
type CircuitBreaker struct {
	// Maximum number of requests allowed to pass through when the circuit is half-open.
	MaxRequests uint32 `koanf:"max_requests"`
	// The cyclic period of the closed state for the circuit breaker to clear the internal counts.
	Interval int `koanf:"interval"`
	// The period of the open state after which the state of the circuit breaker becomes half-open.
	Timeout int `koanf:"timeout"`
}

// Retry contains retry configuration.
// A zero MaxRetries disables the retry middleware, which is the default.
type Retry struct {
	// Maximum retry attempts.
	MaxRetries uint64 `koanf:"max_retries"`
	// Initial retry delay in milliseconds.
	Delay int `koanf:"delay"`
	// Maximum retry delay in milliseconds.
	MaxDelay int `koanf:"max_delay"`
}

// Transport contains HTTP client configuration.
type Transport struct {
	// Request timeout in milliseconds. Zero means no timeout.
	RequestTimeout int `koanf:"request_timeout"`
	// Collapse identical concurrent requests into one.
	Singleflight bool `koanf:"singleflight"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// Session contains credential storage configuration.
type Session struct {
	// Storage backend: "memory" or "redis".
	Backend string `koanf:"backend"`
	// Key namespace used by the redis backend.
	Namespace string `koanf:"namespace"`
}

// Endpoints contains the base URLs of the remote services.
type Endpoints struct {
	// Main backend.
	Main string `koanf:"main"`
	// Achievements service serving progress, stats and achievements.
	Achievements string `koanf:"achievements"`
	// Friends service.
	Friends string `koanf:"friends"`
	// Tournaments service.
	Tournaments string `koanf:"tournaments"`
}

// Preload contains cache behaviour configuration.
type Preload struct {
	// Snapshot freshness window in milliseconds.
	TTL int `koanf:"ttl"`
	// Number of friends to load conversation previews for.
	ConversationFriends int `koanf:"conversation_friends"`
	// Number of messages per conversation preview.
	ConversationMessages int `koanf:"conversation_messages"`
	// Maximum concurrent conversation preview requests.
	MaxConcurrent int `koanf:"max_concurrent"`
}

// TTLDuration returns the freshness window as a duration.
func (p Preload) TTLDuration() time.Duration {
	return time.Duration(p.TTL) * time.Millisecond
}

// Overrides holds values read from the environment that take precedence over the config file.
type Overrides struct {
	AccessToken string `env:"BRAININK_ACCESS_TOKEN"`
	ConfigDir   string `env:"BRAININK_CONFIG_DIR"`
	LogDir      string `env:"BRAININK_LOG_DIR"`
}

// LoadOverrides reads environment overrides.
func LoadOverrides() (*Overrides, error) {
	var o Overrides
	if err := env.Parse(&o); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return &o, nil
}

// Default returns the configuration used for any field the config file leaves unset.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Debug: Debug{
			LogLevel:      "info",
			MaxLogsToKeep: 10,
			MaxLogLines:   10000,
		},
		Telemetry: Telemetry{
			ServiceName: "brainink-hub",
		},
		Transport: Transport{
			RequestTimeout: 15000,
			Singleflight:   true,
		},
		Redis: Redis{
			Host: "localhost",
			Port: 6379,
		},
		Session: Session{
			Backend:   "memory",
			Namespace: "brainink",
		},
		Endpoints: Endpoints{
			Main:         "https://brainink-backend.onrender.com",
			Achievements: "https://brainink-backend-achivements-micro.onrender.com",
			Friends:      "https://brainink-backend-freinds-micro.onrender.com/friends",
			Tournaments:  "http://localhost:10000/api/tournaments",
		},
		Preload: Preload{
			TTL:                  300000,
			ConversationFriends:  10,
			ConversationMessages: 5,
			MaxConcurrent:        10,
		},
	}
}

// LoadConfig loads the configuration from the first config path containing the file.
// An explicit dir, when non-empty, is searched before the default paths.
// Returns the config along with the used config directory.
func LoadConfig(dir string) (*Config, string, error) {
	k := koanf.New(".")

	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// List search paths
	configPaths := []string{
		".brainink",
		homeDir + "/.brainink/config",
		"/etc/brainink/config",
		"config",
		".",
	}
	if dir != "" {
		configPaths = append([]string{dir}, configPaths...)
	}

	var usedConfigPath string

	for _, path := range configPaths {
		configPath := fmt.Sprintf("%s/%s.toml", path, ConfigName)
		if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
			usedConfigPath = path
			break
		}
	}

	if usedConfigPath == "" {
		return nil, "", fmt.Errorf("%w: %s.toml", ErrConfigFileNotFound, ConfigName)
	}

	config := Default()
	if err := k.Unmarshal("", config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := checkConfigVersion(ConfigName, k.Int("version"), CurrentVersion); err != nil {
		return nil, "", err
	}

	config.applyDefaults()

	return config, usedConfigPath, nil
}

// applyDefaults fills in zero values the config file explicitly left empty.
func (c *Config) applyDefaults() {
	def := Default()

	if c.Debug.LogLevel == "" {
		c.Debug.LogLevel = def.Debug.LogLevel
	}

	if c.Debug.MaxLogsToKeep <= 0 {
		c.Debug.MaxLogsToKeep = def.Debug.MaxLogsToKeep
	}

	if c.Debug.MaxLogLines <= 0 {
		c.Debug.MaxLogLines = def.Debug.MaxLogLines
	}

	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = def.Telemetry.ServiceName
	}

	if c.Session.Backend == "" {
		c.Session.Backend = def.Session.Backend
	}

	if c.Session.Namespace == "" {
		c.Session.Namespace = def.Session.Namespace
	}

	if c.Preload.TTL <= 0 {
		c.Preload.TTL = def.Preload.TTL
	}

	if c.Preload.ConversationFriends <= 0 {
		c.Preload.ConversationFriends = def.Preload.ConversationFriends
	}

	if c.Preload.ConversationMessages <= 0 {
		c.Preload.ConversationMessages = def.Preload.ConversationMessages
	}

	if c.Preload.MaxConcurrent <= 0 {
		c.Preload.MaxConcurrent = def.Preload.MaxConcurrent
	}
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(name string, current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s.toml", ErrConfigVersionMissing, name)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s.toml (got: %d, expected: %d)\n"+
				"Please update your config file from: https://github.com/brainink/hub/tree/%s/config/%s.toml",
			ErrConfigVersionMismatch,
			name,
			current,
			expected,
			RepositoryVersion,
			name,
		)
	}

	return nil
}
