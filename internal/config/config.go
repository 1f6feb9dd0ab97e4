package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Addr           string `validate:"required"`
	CollectionPath string `validate:"required"`
	LogLevel       string `validate:"oneof=DEBUG INFO WARN ERROR"`
	UnsafePolicy   string `validate:"oneof=allow warn forbid"`
	ConnectURL     string `validate:"omitempty,url"`
	ConnectVersion int    `validate:"gte=1"`
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() (Config, error) {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	cfg := Config{
		Addr:           envOr("ADDR", ":8765"),
		CollectionPath: envOr("COLLECTION_PATH", "collection.apkg"),
		LogLevel:       envOr("LOG_LEVEL", "INFO"),
		UnsafePolicy:   envOr("UNSAFE_POLICY", "warn"),
		ConnectURL:     envOr("CONNECT_URL", ""),
		ConnectVersion: envIntOr("CONNECT_VERSION", 6),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
