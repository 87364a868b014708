// Package config loads application settings from the environment into an
// explicit struct that gets passed to every component at startup.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the server needs to run.
type Config struct {
	MongoURI  string
	Port      string
	JWTSecret string
}

// Load reads a .env file if one exists, then the process environment.
// MONGO_URI and JWT_SECRET are required; PORT falls back to 4000.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:  os.Getenv("MONGO_URI"),
		Port:      getEnv("PORT", "4000"),
		JWTSecret: os.Getenv("JWT_SECRET"),
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("config: MONGO_URI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
