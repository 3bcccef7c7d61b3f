// Package config loads runtime settings from a YAML file, a .env file and
// SURVEYWIZARD_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "SURVEYWIZARD_"

type Config struct {
	Log        LogConfig        `yaml:"log"`
	HTTP       HTTPConfig       `yaml:"http"`
	Session    SessionConfig    `yaml:"session"`
	Submission SubmissionConfig `yaml:"submission"`
	Scenarios  ScenariosConfig  `yaml:"scenarios"`
	Schema     SchemaConfig     `yaml:"schema"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HTTPConfig struct {
	Addr         string `yaml:"addr"`
	BasePath     string `yaml:"base_path"`
	SecureCookie bool   `yaml:"secure_cookie"`
}

type SessionConfig struct {
	Store    string        `yaml:"store"`
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
	// Idle closes in-process HTTP sessions unused for this long. Zero keeps them.
	Idle     time.Duration `yaml:"idle"`
}

type SubmissionConfig struct {
	Sink        string `yaml:"sink"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresURL string `yaml:"postgres_url"`
}

type ScenariosConfig struct {
	Delay    time.Duration `yaml:"delay"`
	Debounce time.Duration `yaml:"debounce"`
}

type SchemaConfig struct {
	Path string `yaml:"path"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		Log:        LogConfig{Level: "info", Format: "console"},
		HTTP:       HTTPConfig{Addr: ":8080"},
		Session:    SessionConfig{Store: "memory", RedisURL: "redis://localhost:6379/0", TTL: 7 * 24 * time.Hour, Idle: 30 * time.Minute},
		Submission: SubmissionConfig{Sink: "log", SQLitePath: "surveywizard.db"},
		Scenarios:  ScenariosConfig{Delay: 500 * time.Millisecond, Debounce: 300 * time.Millisecond},
	}
}

// Load reads path (optional) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	return nil
}

// Validate checks enumerated settings and the values they require.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console; got %q", c.Log.Format)
	}
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return errors.New("http.addr is required")
	}
	switch c.Session.Store {
	case "memory":
	case "redis":
		if c.Session.RedisURL == "" {
			return errors.New("session.redis_url is required for the redis store")
		}
	default:
		return fmt.Errorf("session.store must be memory or redis; got %q", c.Session.Store)
	}
	if c.Session.TTL < 0 {
		return errors.New("session.ttl cannot be negative")
	}
	if c.Session.Idle < 0 {
		return errors.New("session.idle cannot be negative")
	}
	switch c.Submission.Sink {
	case "log":
	case "sqlite":
		if c.Submission.SQLitePath == "" {
			return errors.New("submission.sqlite_path is required for the sqlite sink")
		}
	case "postgres":
		if c.Submission.PostgresURL == "" {
			return errors.New("submission.postgres_url is required for the postgres sink")
		}
	default:
		return fmt.Errorf("submission.sink must be log, sqlite or postgres; got %q", c.Submission.Sink)
	}
	if c.Scenarios.Delay < 0 || c.Scenarios.Debounce < 0 {
		return errors.New("scenarios delays cannot be negative")
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	c.HTTP.BasePath = getEnv("HTTP_BASE_PATH", c.HTTP.BasePath)
	c.Session.Store = getEnv("SESSION_STORE", c.Session.Store)
	c.Session.RedisURL = getEnv("SESSION_REDIS_URL", c.Session.RedisURL)
	c.Submission.Sink = getEnv("SUBMISSION_SINK", c.Submission.Sink)
	c.Submission.SQLitePath = getEnv("SUBMISSION_SQLITE_PATH", c.Submission.SQLitePath)
	c.Submission.PostgresURL = getEnv("SUBMISSION_POSTGRES_URL", c.Submission.PostgresURL)
	c.Schema.Path = getEnv("SCHEMA_PATH", c.Schema.Path)

	var err error
	if c.HTTP.SecureCookie, err = getEnvAsBool("HTTP_SECURE_COOKIE", c.HTTP.SecureCookie); err != nil {
		return err
	}
	if c.Session.TTL, err = getEnvAsDuration("SESSION_TTL", c.Session.TTL); err != nil {
		return err
	}
	if c.Session.Idle, err = getEnvAsDuration("SESSION_IDLE", c.Session.Idle); err != nil {
		return err
	}
	if c.Scenarios.Delay, err = getEnvAsDuration("SCENARIOS_DELAY", c.Scenarios.Delay); err != nil {
		return err
	}
	if c.Scenarios.Debounce, err = getEnvAsDuration("SCENARIOS_DEBOUNCE", c.Scenarios.Debounce); err != nil {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
	}
	return parsed, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
	}
	return parsed, nil
}
