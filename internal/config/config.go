// Package config loads application configuration from environment variables
// and an optional .env file via Viper. Env vars always win over file values.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config groups all runtime settings for the service.
type Config struct {
	App  AppConfig
	HTTP HTTPConfig
	DB   DBConfig
	JWT  JWTConfig
	Log  LogConfig
	Sale SaleConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// IsProduction reports whether the app runs in production mode.
func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns the listen address (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DBConfig holds PostgreSQL settings.
// If URL is set it is used verbatim, otherwise a DSN is built from parts.
type DBConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// ConnectionString returns the DSN to use.
func (c DBConfig) ConnectionString() string {
	if c.URL != "" {
		return c.URL
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig holds token validation settings.
// Token issuing is owned by a separate identity service; this service only
// validates signatures and extracts claims.
type JWTConfig struct {
	Secret string
	Issuer string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string // debug, info, warn, error
}

// SaleConfig holds POS sale document settings.
type SaleConfig struct {
	// InvoicePrefix is the default invoice number prefix (e.g. "INV").
	InvoicePrefix string
}

// Load reads configuration from env vars and an optional .env file.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // missing file is fine

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Env:  v.GetString("APP_ENV"),
			Name: v.GetString("APP_NAME"),
		},
		HTTP: HTTPConfig{
			Host:            v.GetString("HTTP_HOST"),
			Port:            v.GetInt("HTTP_PORT"),
			ReadTimeout:     v.GetDuration("HTTP_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("HTTP_WRITE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("HTTP_SHUTDOWN_TIMEOUT"),
		},
		DB: DBConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			Issuer: v.GetString("JWT_ISSUER"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Sale: SaleConfig{
			InvoicePrefix: v.GetString("SALE_INVOICE_PREFIX"),
		},
	}

	if cfg.App.IsProduction() && cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "posledger")

	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("HTTP_READ_TIMEOUT", "15s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "30s")
	v.SetDefault("HTTP_SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "posledger")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "posledger")

	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("SALE_INVOICE_PREFIX", "INV")
}
