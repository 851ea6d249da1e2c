package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"wordsmith/internal/slogutil"
)

const (
	// DirName is the per-user data directory holding config and state
	DirName = ".wordsmith"
	// FileName is the config file inside DirName
	FileName = "config.json"
	// EnvPrefix prefixes environment overrides, e.g. WORDSMITH_HABIT_THRESHOLD
	EnvPrefix = "WORDSMITH"

	currentVersion = 1
)

// Config represents the complete wordsmith configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Dictionary DictionaryConfig `json:"dictionary" mapstructure:"dictionary"`
	Habit      HabitConfig      `json:"habit" mapstructure:"habit"`
	Storage    StorageConfig    `json:"storage" mapstructure:"storage"`
	Crypto     CryptoConfig     `json:"crypto" mapstructure:"crypto"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
	Server     ServerConfig     `json:"server" mapstructure:"server"`
	Watch      WatchConfig      `json:"watch" mapstructure:"watch"`
}

// DictionaryConfig names the static word list
type DictionaryConfig struct {
	// Source is a file path (plain, .gz or .zst) or an http(s) URL
	Source         string `json:"source" mapstructure:"source"`
	TimeoutSeconds int    `json:"timeoutSeconds" mapstructure:"timeoutSeconds"`
}

// HabitConfig controls promotion into the habit vocabulary
type HabitConfig struct {
	Threshold int `json:"threshold" mapstructure:"threshold"`
}

// StorageConfig selects the key-value backend
type StorageConfig struct {
	Backend string `json:"backend" mapstructure:"backend"` // "sqlite" | "memory"
	// Path is the directory holding wordsmith.db; empty means the data dir
	Path string `json:"path" mapstructure:"path"`
}

// CryptoConfig controls how the frequency mapping is sealed
type CryptoConfig struct {
	Scheme     string `json:"scheme" mapstructure:"scheme"` // "openssl" | "gcm"
	Passphrase string `json:"passphrase" mapstructure:"passphrase"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format     string `json:"format" mapstructure:"format"`
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file" mapstructure:"file"`
	MaxSize    string `json:"maxSize" mapstructure:"maxSize"`
	MaxBackups int    `json:"maxBackups" mapstructure:"maxBackups"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`
	// DebounceMs batches POST /words recordings; 0 records synchronously
	DebounceMs  int      `json:"debounceMs" mapstructure:"debounceMs"`
	CorsOrigins []string `json:"corsOrigins" mapstructure:"corsOrigins"`
}

// WatchConfig configures dictionary file watching
type WatchConfig struct {
	Enabled    bool `json:"enabled" mapstructure:"enabled"`
	DebounceMs int  `json:"debounceMs" mapstructure:"debounceMs"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: currentVersion,
		Dictionary: DictionaryConfig{
			Source:         "words.txt",
			TimeoutSeconds: 10,
		},
		Habit: HabitConfig{
			Threshold: 2,
		},
		Storage: StorageConfig{
			Backend: "sqlite",
		},
		Crypto: CryptoConfig{
			Scheme:     "openssl",
			Passphrase: "storageslocal",
		},
		Logging: LoggingConfig{
			Format:     "human",
			Level:      "info",
			MaxSize:    "10MB",
			MaxBackups: 3,
		},
		Server: ServerConfig{
			Host:        "127.0.0.1",
			Port:        8787,
			CorsOrigins: []string{"*"},
		},
		Watch: WatchConfig{
			Enabled:    false,
			DebounceMs: 500,
		},
	}
}

// Dir returns the config directory under dataDir
func Dir(dataDir string) string {
	return filepath.Join(dataDir, DirName)
}

// LoadConfig loads <dataDir>/.wordsmith/config.json, layering WORDSMITH_*
// environment overrides on top. A missing file yields the defaults.
func LoadConfig(dataDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(Dir(dataDir))

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("dictionary.source", d.Dictionary.Source)
	v.SetDefault("dictionary.timeoutSeconds", d.Dictionary.TimeoutSeconds)
	v.SetDefault("habit.threshold", d.Habit.Threshold)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("crypto.scheme", d.Crypto.Scheme)
	v.SetDefault("crypto.passphrase", d.Crypto.Passphrase)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.maxSize", d.Logging.MaxSize)
	v.SetDefault("logging.maxBackups", d.Logging.MaxBackups)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.debounceMs", d.Server.DebounceMs)
	v.SetDefault("server.corsOrigins", d.Server.CorsOrigins)
	v.SetDefault("watch.enabled", d.Watch.Enabled)
	v.SetDefault("watch.debounceMs", d.Watch.DebounceMs)
}

// Save writes the configuration to <dataDir>/.wordsmith/config.json
func (c *Config) Save(dataDir string) error {
	dir := Dir(dataDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileName), data, 0o600)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != currentVersion {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Habit.Threshold < 1 {
		return &ConfigError{Field: "habit.threshold", Message: "must be at least 1"}
	}
	switch c.Storage.Backend {
	case "sqlite", "memory":
	default:
		return &ConfigError{Field: "storage.backend", Message: "must be sqlite or memory"}
	}
	switch c.Crypto.Scheme {
	case "openssl", "gcm":
	default:
		return &ConfigError{Field: "crypto.scheme", Message: "must be openssl or gcm"}
	}
	if c.Crypto.Passphrase == "" {
		return &ConfigError{Field: "crypto.passphrase", Message: "must not be empty"}
	}
	switch slogutil.Format(c.Logging.Format) {
	case slogutil.HumanFormat, slogutil.JSONFormat:
	default:
		return &ConfigError{Field: "logging.format", Message: "must be human or json"}
	}
	if c.Logging.File != "" && c.Logging.MaxSize != "" && slogutil.ParseSize(c.Logging.MaxSize) <= 0 {
		return &ConfigError{Field: "logging.maxSize", Message: "unrecognized size, use e.g. 10MB"}
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "must be between 0 and 65535"}
	}
	if c.Server.DebounceMs < 0 {
		return &ConfigError{Field: "server.debounceMs", Message: "must not be negative"}
	}
	if c.Watch.DebounceMs < 0 {
		return &ConfigError{Field: "watch.debounceMs", Message: "must not be negative"}
	}
	if c.Dictionary.TimeoutSeconds < 0 {
		return &ConfigError{Field: "dictionary.timeoutSeconds", Message: "must not be negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
