package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the full service configuration, built once at startup and
// passed to every component.
type Config struct {
	Port     int
	LogLevel string
	Env      string

	DB     DBConfig
	Auth   AuthConfig
	PayNow PayNowConfig
	SMTP   SMTPConfig
	Kafka  KafkaConfig

	// VATRate is the fixed VAT applied to every order (South African default)
	VATRate float64
}

// DBConfig holds the database configuration
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// AuthConfig holds session-token settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// PayNowConfig holds payment-link settings. The provider itself is external;
// only link construction happens here.
type PayNowConfig struct {
	BaseURL      string
	MerchantCode string
	Currency     string
}

// SMTPConfig holds outbound receipt-mail settings
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// KafkaConfig holds event-stream settings. An empty broker list disables
// publishing entirely.
type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
}

// getEnv retrieves an environment variable or a default when unset
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, strconv.Itoa(defaultValue))
	v, err := strconv.Atoi(raw)

	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return v, nil
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	port, err := getEnvInt("PORT", 8080)

	if err != nil {
		return nil, err
	}

	dbPort, err := getEnvInt("DB_PORT", 5432)

	if err != nil {
		return nil, err
	}

	smtpPort, err := getEnvInt("SMTP_PORT", 587)

	if err != nil {
		return nil, err
	}

	vatRate, err := strconv.ParseFloat(getEnv("VAT_RATE", "0.15"), 64)

	if err != nil {
		return nil, fmt.Errorf("invalid VAT_RATE: %w", err)
	}

	var brokers []string
	if raw := getEnv("KAFKA_BROKERS", ""); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return &Config{
		Port:     port,
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Env:      getEnv("APP_ENV", "development"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "kiosk"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-only-secret"),
			TokenTTL:  24 * time.Hour,
		},
		PayNow: PayNowConfig{
			BaseURL:      getEnv("PAYNOW_BASE_URL", "https://www.paynow.co.za/pay"),
			MerchantCode: getEnv("PAYNOW_MERCHANT_CODE", ""),
			Currency:     getEnv("CURRENCY", "ZAR"),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", "localhost"),
			Port:     smtpPort,
			User:     getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("SMTP_FROM", "receipts@kiosk.local"),
		},
		Kafka: KafkaConfig{
			Brokers:     brokers,
			OrdersTopic: getEnv("KAFKA_ORDERS_TOPIC", "kiosk.orders"),
		},
		VATRate: vatRate,
	}, nil
}

// GetDBConnString returns the database connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode)
}
