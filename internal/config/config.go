package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/wildpflanzen/wildpflanzen/internal/store"
)

const (
	EnvDir      = "WILDPFLANZEN_DIR"
	EnvLogLevel = "WILDPFLANZEN_LOG_LEVEL"
	EnvLogFile  = "WILDPFLANZEN_LOG_FILE"
	EnvEnv      = "WILDPFLANZEN_ENV"
)

type Config struct {
	Dir      string // base directory with schema.sql, inserts.sql and the database
	LogLevel string
	LogFile  string
	Env      string // dev|prod
}

// Load reads an optional .env file from the working directory and then the
// environment. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the process environment with defaults.
func FromEnv() *Config {
	return &Config{
		Dir:      getenv(EnvDir, store.GetStorePath()),
		LogLevel: getenv(EnvLogLevel, "info"),
		LogFile:  os.Getenv(EnvLogFile),
		Env:      getenv(EnvEnv, "dev"),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
