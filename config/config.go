package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseDriver string
	DatabaseURL    string
	JWTSecretKey   string
	ServerPort     int
	LogLevel       slog.Level

	CORSAllowedOrigins []string

	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	StandingsCacheTTL time.Duration

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string

	League LeagueDefaults
}

// LeagueDefaults are scheduling defaults used when a request leaves them out.
// They can come from the YAML file named by CONFIG_FILE.
type LeagueDefaults struct {
	DefaultKickoff    string `yaml:"default_kickoff"`
	RoundIntervalDays int    `yaml:"round_interval_days"`
}

type fileConfig struct {
	League LeagueDefaults `yaml:"league"`
}

// R2Enabled reports whether every object storage setting is present.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл и YAML файл из CONFIG_FILE.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		League: LeagueDefaults{
			DefaultKickoff:    "18:00",
			RoundIntervalDays: 7,
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.DatabaseDriver = getEnvOrDefault("DATABASE_DRIVER", "postgres")
	switch cfg.DatabaseDriver {
	case "postgres", "pgx", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q (postgres, pgx or sqlite)", cfg.DatabaseDriver)
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	cfg.JWTSecretKey = os.Getenv("JWT_SECRET_KEY")
	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := strconv.Atoi(getEnvOrDefault("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnvOrDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
			}
		}
	} else {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if cfg.RedisDB, err = strconv.Atoi(getEnvOrDefault("REDIS_DB", "0")); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB environment variable: %w", err)
	}
	if cfg.StandingsCacheTTL, err = time.ParseDuration(getEnvOrDefault("STANDINGS_CACHE_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("invalid STANDINGS_CACHE_TTL environment variable: %w", err)
	}

	cfg.R2AccountID = os.Getenv("R2_ACCOUNT_ID")
	cfg.R2AccessKeyID = os.Getenv("R2_ACCESS_KEY_ID")
	cfg.R2SecretAccessKey = os.Getenv("R2_SECRET_ACCESS_KEY")
	cfg.R2BucketName = os.Getenv("R2_BUCKET_NAME")
	cfg.R2PublicBaseURL = os.Getenv("R2_PUBLIC_BASE_URL")

	if v := os.Getenv("DEFAULT_KICKOFF"); v != "" {
		cfg.League.DefaultKickoff = v
	}
	if v := os.Getenv("ROUND_INTERVAL_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ROUND_INTERVAL_DAYS environment variable: %w", err)
		}
		cfg.League.RoundIntervalDays = days
	}
	if cfg.League.RoundIntervalDays <= 0 {
		return nil, fmt.Errorf("round interval must be positive, got %d", cfg.League.RoundIntervalDays)
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	fc := fileConfig{League: cfg.League}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	cfg.League = fc.League
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
