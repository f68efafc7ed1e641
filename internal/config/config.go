// Package config provides application configuration loaded from an optional
// YAML file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	AI       AIConfig       `yaml:"ai"`
	Session  SessionConfig  `yaml:"session"`
	App      AppConfig      `yaml:"app"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"read_timeout"`  // seconds
	WriteTimeout int    `yaml:"write_timeout"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout"`  // seconds
}

// DatabaseConfig holds database connection settings.
// Driver is "postgres" or "sqlite". RawDSN, when set, wins over the discrete fields.
type DatabaseConfig struct {
	Driver     string `yaml:"driver"`
	RawDSN     string `yaml:"dsn"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	DBName     string `yaml:"dbname"`
	SSLMode    string `yaml:"sslmode"`
	Debug      bool   `yaml:"debug"`
	Migrations string `yaml:"migrations"` // auto, sql or off
}

// StorageConfig locates the object storage buckets.
type StorageConfig struct {
	Root          string `yaml:"root"`
	PublicBaseURL string `yaml:"public_base_url"`
}

// AIConfig configures the text-generation endpoint.
type AIConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// SessionConfig holds the cookie signing secret.
type SessionConfig struct {
	Secret string `yaml:"secret"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev           bool   `yaml:"dev"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DSN returns the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.RawDSN != "" {
		return d.RawDSN
	}
	if d.Driver == "sqlite" {
		return d.DBName + ".db"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format, as expected by
// golang-migrate.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Timeout returns a server timeout in seconds as a duration.
func Timeout(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// Defaults returns the configuration used for local development.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  15,
			WriteTimeout: 60,
			IdleTimeout:  60,
		},
		Database: DatabaseConfig{
			Driver:     "postgres",
			Host:       "localhost",
			Port:       5432,
			User:       "lawdesk",
			Password:   "lawdesk",
			DBName:     "lawdesk",
			SSLMode:    "disable",
			Migrations: "auto",
		},
		Storage: StorageConfig{
			Root:          "data/storage",
			PublicBaseURL: "/files",
		},
		AI: AIConfig{
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-3.5-turbo",
			MaxTokens:   1024,
			Temperature: 0.2,
		},
		Session: SessionConfig{Secret: "devsessionsecret"},
		App:     AppConfig{Dev: true},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads the YAML file at path (skipped when path is empty or the file
// does not exist) on top of Defaults, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	switch c.Database.Migrations {
	case "auto", "sql", "off":
	default:
		return fmt.Errorf("config: unknown migrations mode %q", c.Database.Migrations)
	}
	if c.Database.Migrations == "sql" && c.Database.Driver != "postgres" {
		return errors.New("config: sql migrations require the postgres driver")
	}
	if !c.App.Dev && c.Session.Secret == Defaults().Session.Secret {
		return errors.New("config: SESSION_SECRET must be set outside dev mode")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvInt("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvInt("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvInt("SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.RawDSN = getEnv("DATABASE_DSN", c.Database.RawDSN)
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvInt("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.DBName = getEnv("DB_NAME", c.Database.DBName)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)
	c.Database.Debug = getEnvBool("DB_DEBUG", c.Database.Debug)
	c.Database.Migrations = getEnv("MIGRATIONS", c.Database.Migrations)

	c.Storage.Root = getEnv("STORAGE_ROOT", c.Storage.Root)
	c.Storage.PublicBaseURL = getEnv("STORAGE_PUBLIC_URL", c.Storage.PublicBaseURL)

	c.AI.APIKey = getEnv("OPENAI_API_KEY", c.AI.APIKey)
	c.AI.BaseURL = getEnv("OPENAI_BASE_URL", c.AI.BaseURL)

	c.Session.Secret = getEnv("SESSION_SECRET", c.Session.Secret)

	c.App.Dev = getEnvBool("DEV", c.App.Dev)
	c.App.AdminEmail = getEnv("ADMIN_EMAIL", c.App.AdminEmail)
	c.App.AdminPassword = getEnv("ADMIN_PASSWORD", c.App.AdminPassword)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
