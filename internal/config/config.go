package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Environment    string        `mapstructure:"ENV"`
	Storage        string        `mapstructure:"STORAGE"`
	DBDSN          string        `mapstructure:"DB_DSN"`
	MigrationsDir  string        `mapstructure:"MIGRATIONS_DIR"`
	HTTPAddr       string        `mapstructure:"HTTP_ADDR"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	StaticTokens   []StaticToken `mapstructure:"STATIC_TOKENS"`
	TelegramToken  string        `mapstructure:"TELEGRAM_TOKEN"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	RedisURL       string        `mapstructure:"REDIS_URL"`
	AuditInterval  time.Duration `mapstructure:"AUDIT_INTERVAL"`
}

// StaticToken сервисный токен, привязанный к пользователю
type StaticToken struct {
	Token  string
	UserID string
	Name   string
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv читает конфигурацию из переменных окружения
func FromEnv() (*Config, error) {
	cfg := &Config{
		Environment:   os.Getenv("ENV"),
		Storage:       strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE"))),
		DBDSN:         os.Getenv("DB_DSN"),
		HTTPAddr:      os.Getenv("HTTP_ADDR"),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		RedisURL:      os.Getenv("REDIS_URL"),
	}

	// Устанавливаем дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Storage == "" {
		cfg.Storage = StoragePostgres
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	cfg.MigrationsDir = "migrations"
	if dir, ok := os.LookupEnv("MIGRATIONS_DIR"); ok {
		cfg.MigrationsDir = dir
	}

	var err error
	if cfg.StaticTokens, err = parseStaticTokens(os.Getenv("STATIC_TOKENS")); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = floatEnv("RATE_LIMIT_RPS", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = intEnv("RATE_LIMIT_BURST", 20); err != nil {
		return nil, err
	}
	if cfg.AuditInterval, err = durationEnv("AUDIT_INTERVAL", 10*time.Minute); err != nil {
		return nil, err
	}

	// Проверяем обязательные поля
	switch cfg.Storage {
	case StoragePostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required but not set")
		}
	case StorageMemory:
	default:
		return nil, fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.Storage)
	}

	if cfg.JWTSecret == "" && len(cfg.StaticTokens) == 0 {
		return nil, fmt.Errorf("JWT_SECRET or STATIC_TOKENS is required")
	}

	return cfg, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

// IsProduction проверяет production окружение
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// parseStaticTokens разбирает список вида "token=user[:name],token2=user2"
func parseStaticTokens(raw string) ([]StaticToken, error) {
	var tokens []StaticToken
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		token, subject, ok := strings.Cut(item, "=")
		token, subject = strings.TrimSpace(token), strings.TrimSpace(subject)
		if !ok || token == "" || subject == "" {
			return nil, fmt.Errorf("STATIC_TOKENS: entry %q must look like token=userId[:name]", item)
		}

		userID, name, _ := strings.Cut(subject, ":")
		tokens = append(tokens, StaticToken{Token: token, UserID: userID, Name: name})
	}
	return tokens, nil
}

func floatEnv(key string, def float64) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative number, got %q", key, raw)
	}
	return v, nil
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", key, raw)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	if raw == "0" {
		return 0, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a duration like 10m, got %q", key, raw)
	}
	return v, nil
}
