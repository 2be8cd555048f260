package api

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
)

// localJWTSecret signs tokens when APP_ENV=local and no secret is configured.
const localJWTSecret = "local-development-secret"

// StorageConfig selects and tunes the repository backend. An empty DSN means in-memory.
type StorageConfig struct {
	PostgresDSN  string
	GormDebug    bool
	TxMaxRetries int
}

// Config carries environment-driven settings for the API process.
type Config struct {
	StorageConfig
	Env               string
	Port              string
	JWTSecret         string
	JWTTTL            time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
}

// LoadConfig reads .env when present, then the environment, applies defaults and validates.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return configFromEnv()
}

func configFromEnv() (Config, error) {
	cfg := Config{
		Env:               envDefault("APP_ENV", "production"),
		Port:              envDefault("PORT", "8080"),
		JWTSecret:         strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
	}
	var err error
	if cfg.StorageConfig, err = StorageConfigFromEnv(); err != nil {
		return Config{}, err
	}
	hours, err := envInt("JWT_TTL_HOURS", 24, 1)
	if err != nil {
		return Config{}, err
	}
	cfg.JWTTTL = time.Duration(hours) * time.Hour
	if cfg.ReadTimeout, err = envDuration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = envDuration("HTTP_WRITE_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.JWTSecret == "" {
		if cfg.Env != "local" {
			return Config{}, errors.New("JWT_SECRET is required unless APP_ENV=local")
		}
		cfg.JWTSecret = localJWTSecret
	}
	return cfg, nil
}

// StorageConfigFromEnv reads the database settings shared by every process.
func StorageConfigFromEnv() (StorageConfig, error) {
	cfg := StorageConfig{
		PostgresDSN: strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		GormDebug:   isTruthy(os.Getenv("GORM_DEBUG")),
	}
	var err error
	if cfg.TxMaxRetries, err = envInt("DB_TX_MAX_RETRIES", 3, 0); err != nil {
		return StorageConfig{}, err
	}
	return cfg, nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func envInt(key string, fallback, minimum int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < minimum {
		return 0, fmt.Errorf("%s must be an integer >= %d", key, minimum)
	}
	return value, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration", key)
	}
	return value, nil
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
