package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            string
	MongoDBURI      string
	MongoDBPassword string
	Environment     string
	LogLevel        string

	SessionSecret string
	SessionTTL    time.Duration

	// BcryptCost is the hashing work factor; HashWorkers bounds how many
	// hash computations run at once.
	BcryptCost  int
	HashWorkers int
	HashQueue   int

	// Optional JWKS endpoints for federated logins.
	GmailJWKSURL    string
	FacebookJWKSURL string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:            getEnvWithDefault("PORT", "8080"),
		MongoDBURI:      os.Getenv("MONGODB_URI"),
		MongoDBPassword: os.Getenv("MONGODB_PASSWORD"),
		Environment:     getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		SessionTTL:      getDurationWithDefault("SESSION_TTL", time.Hour),
		BcryptCost:      getIntWithDefault("BCRYPT_COST", 10),
		HashWorkers:     getIntWithDefault("HASH_WORKERS", 4),
		HashQueue:       getIntWithDefault("HASH_QUEUE", 64),
		GmailJWKSURL:    os.Getenv("GMAIL_JWKS_URL"),
		FacebookJWKSURL: os.Getenv("FACEBOOK_JWKS_URL"),
	}

	// Validate required fields
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
