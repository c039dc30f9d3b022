package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envPrefix namespaces environment overrides, e.g. TASKBOARD_SERVER_ADDR.
const envPrefix = "TASKBOARD"

// ServerConfig holds settings for the HTTP API process.
type ServerConfig struct {
	// Addr is the listen address, e.g. ":3000".
	Addr string `mapstructure:"addr" yaml:"addr"`

	// ShutdownTimeoutSec bounds graceful shutdown.
	ShutdownTimeoutSec int `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`
}

// StoreConfig holds settings for the SQLite entity store.
type StoreConfig struct {
	// Path is the SQLite database file. ":memory:" is accepted.
	Path string `mapstructure:"path" yaml:"path"`
}

// AIConfig holds settings for the summarization assistant.
type AIConfig struct {
	Model      string `mapstructure:"model" yaml:"model"`
	MaxTokens  int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	APIURL     string `mapstructure:"api_url" yaml:"api_url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// RedisConfig configures the optional assistant response cache.
// An empty Addr disables caching.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	TTLSec   int    `mapstructure:"ttl_sec" yaml:"ttl_sec"`
}

// ClientConfig holds settings for the terminal client.
type ClientConfig struct {
	BaseURL    string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`

	// File redirects log output. The terminal client should always set it.
	File string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	AI     AIConfig     `mapstructure:"ai" yaml:"ai"`
	Redis  RedisConfig  `mapstructure:"redis" yaml:"redis"`
	Client ClientConfig `mapstructure:"client" yaml:"client"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskboard/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskboard", "config.yaml")
}

// defaults maps every config key to its default value.
var defaults = map[string]any{
	"server.addr":                 ":3000",
	"server.shutdown_timeout_sec": 10,
	"store.path":                  "taskboard.db",
	"ai.model":                    "claude-sonnet-4-20250514",
	"ai.max_tokens":               1024,
	"ai.api_url":                  "https://api.anthropic.com/v1/messages",
	"ai.timeout_sec":              60,
	"redis.addr":                  "",
	"redis.password":              "",
	"redis.db":                    0,
	"redis.ttl_sec":               600,
	"client.base_url":             "http://localhost:3000",
	"client.timeout_sec":          15,
	"log.level":                   "info",
	"log.format":                  "text",
	"log.file":                    "",
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A .env file in the working directory is loaded first, and TASKBOARD_*
// environment variables override file values. A missing file yields defaults.
func LoadConfig(path string) (*AppConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if err := v.ReadInConfig(); err != nil {
		_, isPathErr := err.(*os.PathError)
		_, isNotFound := err.(viper.ConfigFileNotFoundError)
		if !isPathErr && !isNotFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("store", cfg.Store)
	v.Set("ai", cfg.AI)
	v.Set("redis", cfg.Redis)
	v.Set("client", cfg.Client)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
