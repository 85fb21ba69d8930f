package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type PostgresConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// Enabled reports whether outbound mail is configured at all.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type Config struct {
	App struct {
		Port       string
		SessionTTL time.Duration
	}
	Postgres PostgresConfig
	SMTP     SMTPConfig
	Kafka    struct {
		Brokers string
		Topic   string
	}
}

func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}
	cfg.App.Port = getEnv("APP_PORT", "8080")

	ttlMinutes, err := strconv.Atoi(getEnv("SESSION_TTL_MINUTES", "30"))
	if err != nil || ttlMinutes <= 0 {
		return nil, fmt.Errorf("SESSION_TTL_MINUTES must be a positive integer")
	}
	cfg.App.SessionTTL = time.Duration(ttlMinutes) * time.Minute

	required := map[string]*string{
		"DB_HOST":     &cfg.Postgres.Host,
		"DB_PORT":     &cfg.Postgres.Port,
		"DB_USER":     &cfg.Postgres.User,
		"DB_PASSWORD": &cfg.Postgres.Password,
		"DB_NAME":     &cfg.Postgres.DBName,
	}
	for key, dst := range required {
		value := os.Getenv(key)
		if value == "" {
			return nil, fmt.Errorf("%s is required", key)
		}
		*dst = value
	}
	cfg.Postgres.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Postgres.MigrationsPath = getEnv("DB_MIGRATIONS_PATH", "migrations")

	cfg.SMTP.Host = os.Getenv("SMTP_HOST")
	cfg.SMTP.Port = getEnv("SMTP_PORT", "587")
	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME")
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	cfg.SMTP.From = os.Getenv("SMTP_FROM")

	cfg.Kafka.Brokers = os.Getenv("KAFKA_BROKERS")
	cfg.Kafka.Topic = getEnv("KAFKA_ORDER_EVENTS_TOPIC", "order.status-changed")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
