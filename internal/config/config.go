// Package config loads application configuration from an optional YAML file
// and the environment. Environment variables win over file values.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Log       Log       `yaml:"log"`
	Server    Server    `yaml:"server"`
	Database  Database  `yaml:"database"`
	Data      Data      `yaml:"data"`
	AI        AI        `yaml:"ai"`
	Scheduler Scheduler `yaml:"scheduler"`
	Notify    Notify    `yaml:"notify"`
}

type Log struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

type Server struct {
	Addr         string        `yaml:"addr" env:"SERVER_ADDR" env-default:"127.0.0.1:8477"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"60s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"120s"`
}

type Database struct {
	// Driver selects the backend: sqlite (durable) or memory (ephemeral).
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	Path   string `yaml:"path" env:"DB_PATH" env-default:"momentum.db"`
}

type Data struct {
	// Dir holds file attachments when Attachments is "file".
	Dir         string `yaml:"dir" env:"DATA_DIR" env-default:"data"`
	Attachments string `yaml:"attachments" env:"ATTACHMENT_STORE" env-default:"file"`
}

type AI struct {
	APIKey string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model  string `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-2.0-flash"`
}

type Scheduler struct {
	Interval       time.Duration `yaml:"interval" env:"SCHEDULER_INTERVAL" env-default:"60s"`
	DigestCooldown time.Duration `yaml:"digest_cooldown" env:"SCHEDULER_DIGEST_COOLDOWN" env-default:"24h"`
	NudgeCooldown  time.Duration `yaml:"nudge_cooldown" env:"SCHEDULER_NUDGE_COOLDOWN" env-default:"4h"`
	// Timezone is an IANA name; empty means the system zone.
	Timezone string `yaml:"timezone" env:"SCHEDULER_TIMEZONE"`
}

type Notify struct {
	// Backend is "desktop" or "log".
	Backend string `yaml:"backend" env:"NOTIFY_BACKEND" env-default:"desktop"`
}

// Load reads CONFIG_PATH (or the given path) when it exists, then applies
// the environment on top. A missing file is not an error: every field has a
// default or is optional.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cleanenv.ReadConfig(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
			return cfg, cfg.validate()
		}
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: read env: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	switch c.Data.Attachments {
	case "file", "inline":
	default:
		return fmt.Errorf("config: unknown attachment store %q", c.Data.Attachments)
	}
	switch c.Notify.Backend {
	case "desktop", "log":
	default:
		return fmt.Errorf("config: unknown notify backend %q", c.Notify.Backend)
	}
	if c.Scheduler.Timezone != "" {
		if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
			return fmt.Errorf("config: timezone: %w", err)
		}
	}
	return nil
}

// Location resolves the scheduler timezone, defaulting to the system zone.
func (c Config) Location() *time.Location {
	if c.Scheduler.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
