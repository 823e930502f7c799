package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config lists the tunable parameters for the scanner.
type Config struct {
	Port        int
	HomeCountry string
	DatabaseURL string
	StaticDir   string
}

const (
	defaultPort        = 8080
	defaultHomeCountry = "CH"
)

// Load derives configuration from environment variables, falling back to
// defaults. A .env file is read first when present.
func Load() (Config, error) {
	// Missing .env is fine; explicit environment always wins.
	_ = godotenv.Load()

	cfg := Config{
		Port:        defaultPort,
		HomeCountry: defaultHomeCountry,
	}

	if v := os.Getenv("SCANNER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SCANNER_PORT: %w", err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("SCANNER_HOME_COUNTRY"); v != "" {
		cfg.HomeCountry = v
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.StaticDir = os.Getenv("SCANNER_STATIC_DIR")

	return cfg, nil
}
