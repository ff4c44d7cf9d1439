package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const minSecretLen = 32

type Config struct {
	Port          string `yaml:"port"`
	Env           string `yaml:"env"`
	DBDriver      string `yaml:"db_driver"`
	DBDSN         string `yaml:"db_dsn"`
	SessionSecret string `yaml:"session_secret"`
	SessionSecure bool   `yaml:"session_secure"`
	LogLevel      string `yaml:"log_level"`
	SearchLimit   int    `yaml:"search_limit"`
	UploadDir     string `yaml:"upload_dir"`
}

func Default() *Config {
	return &Config{
		Port:        "8080",
		Env:         "development",
		DBDriver:    "sqlite3",
		DBDSN:       "lightbnb.db",
		LogLevel:    "info",
		SearchLimit: 10,
		UploadDir:   "uploads",
	}
}

// Load reads filename over the defaults and then applies environment
// overrides. A missing file is not an error.
func Load(filename string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(filename)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", filename, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	cfg.applyEnv()

	if cfg.SessionSecret == "" && cfg.IsDevelopment() {
		cfg.SessionSecret = randomSecret()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Env = getEnv("APP_ENV", c.Env)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DBDSN = getEnv("DB_DSN", c.DBDSN)
	c.SessionSecret = getEnv("SESSION_SECRET", c.SessionSecret)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.SearchLimit = getEnvInt("SEARCH_LIMIT", c.SearchLimit)
	c.UploadDir = getEnv("UPLOAD_DIR", c.UploadDir)
	if v := os.Getenv("SESSION_SECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.SessionSecure = b
		}
	}
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "pgx", "sqlite3":
	default:
		return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	if c.DBDSN == "" {
		return errors.New("db_dsn is required")
	}
	if len(c.SessionSecret) < minSecretLen {
		return fmt.Errorf("session_secret must be at least %d bytes", minSecretLen)
	}
	if c.SearchLimit <= 0 {
		return errors.New("search_limit must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func randomSecret() string {
	b := make([]byte, minSecretLen)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
