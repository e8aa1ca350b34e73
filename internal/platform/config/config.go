package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"library-backend/internal/platform/db"
)

const (
	ModeDev     = "dev"
	ModeRelease = "release"

	DefaultPath            = "config/config.yaml"
	defaultSessionLifetime = time.Hour
	devSecret              = "dev-key-change-this-in-production"
)

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	CORSOrigins  []string      `yaml:"cors_origins"`
}

type SessionConfig struct {
	Secret     string        `yaml:"secret"`
	Lifetime   time.Duration `yaml:"lifetime"`
	CookieName string        `yaml:"cookie_name"`
}

type RateLimitConfig struct {
	// LoginPerMinute is the sustained login attempts allowed per client IP.
	LoginPerMinute int `yaml:"login_per_minute"`
	LoginBurst     int `yaml:"login_burst"`
}

type Config struct {
	Version     string            `yaml:"version"`
	Mode        string            `yaml:"mode"`
	LogLevel    string            `yaml:"log_level"`
	Server      ServerConfig      `yaml:"server"`
	DB          db.DatabaseConfig `yaml:"database"`
	Session     SessionConfig     `yaml:"session"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Certificate Certs             `yaml:"certificate"`
}

func Default() Config {
	return Config{
		Mode:     ModeDev,
		LogLevel: "info",
		Server: ServerConfig{
			Addr:         ":5001",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
			CORSOrigins:  []string{"http://localhost:3000"},
		},
		DB: db.DatabaseConfig{
			Host:   "127.0.0.1",
			Port:   3306,
			DBName: "librarys_management_system",
		},
		Session: SessionConfig{
			Lifetime:   defaultSessionLifetime,
			CookieName: "library_session",
		},
		RateLimit: RateLimitConfig{LoginPerMinute: 10, LoginBurst: 5},
	}
}

// Load reads the YAML file at path on top of Default, then applies environment
// overrides. A missing file is not an error: configuration may come from the
// environment alone.
func Load(path string) (*Config, error) {
	cfg := Default()
	buf, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	str(&cfg.Mode, "LIBRARY_MODE")
	str(&cfg.LogLevel, "LIBRARY_LOG_LEVEL")
	str(&cfg.Server.Addr, "LIBRARY_ADDR")
	str(&cfg.DB.Host, "LIBRARY_DB_HOST", "DB_HOST")
	str(&cfg.DB.Username, "LIBRARY_DB_USER", "DB_USER")
	str(&cfg.DB.Password, "LIBRARY_DB_PASSWORD", "DB_PASSWORD")
	str(&cfg.DB.DBName, "LIBRARY_DB_NAME", "DB_NAME")
	str(&cfg.Session.Secret, "LIBRARY_SESSION_SECRET", "SECRET_KEY")

	if v, ok := firstOf(lookup, "LIBRARY_DB_PORT", "DB_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DB port %q: %w", v, err)
		}
		cfg.DB.Port = port
	}
	if v, ok := firstOf(lookup, "LIBRARY_SESSION_LIFETIME"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid session lifetime %q: %w", v, err)
		}
		cfg.Session.Lifetime = d
	}
	return nil
}

func firstOf(lookup lookupFunc, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := lookup(k); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func (c *Config) Validate() error {
	if c.Mode != ModeDev && c.Mode != ModeRelease {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeDev, ModeRelease, c.Mode)
	}
	if c.Session.Lifetime <= 0 {
		return errors.New("session lifetime must be positive")
	}
	if c.Session.Secret == "" {
		if c.Mode == ModeRelease {
			return errors.New("session secret is required in release mode")
		}
		c.Session.Secret = devSecret
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "library_session"
	}
	if c.DB.Port <= 0 {
		return fmt.Errorf("invalid database port %d", c.DB.Port)
	}
	return nil
}

func (c *Config) IsRelease() bool { return c.Mode == ModeRelease }
