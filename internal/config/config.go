package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type DBConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifeTime int // minutes
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	RefreshURL    string
	ReturnURL     string
}

type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

type Config struct {
	HTTPAddr        string
	JWTSecret       string
	JWTTTLMinutes   int
	BannedTermsPath string
	LogLevel        string
	LogDev          bool

	DB     DBConfig
	Stripe StripeConfig
	SMTP   SMTPConfig
}

// Load reads configuration from the environment. A local .env file is
// loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTTTLMinutes:   getEnvInt("JWT_TTL_MIN", 60),
		BannedTermsPath: getEnv("BANNED_TERMS_PATH", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogDev:          getEnv("LOG_DEV", "") == "1",
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "postgres"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "rally"),
			Password:        getEnv("DB_PASSWORD", "rally"),
			Name:            getEnv("DB_NAME", "rally_db"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifeTime: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 30),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			SuccessURL:    getEnv("STRIPE_SUCCESS_URL", ""),
			CancelURL:     getEnv("STRIPE_CANCEL_URL", ""),
			RefreshURL:    getEnv("STRIPE_REFRESH_URL", ""),
			ReturnURL:     getEnv("STRIPE_RETURN_URL", ""),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			From:     getEnv("SMTP_FROM", ""),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
		},
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, fmt.Errorf("invalid DB config: host/user/name must not be empty")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
