// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret is the HMAC secret used to sign bearer tokens. Required to serve traffic.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// JWTIssuer is the iss claim (e.g. "fintrack-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "fintrack-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTTTL is the bearer token lifetime (e.g. "168h" for 7 days).
	JWTTTL string `mapstructure:"JWT_TTL"`
	// OTPTTLMinutes is the one-time code lifetime in minutes; default 10.
	OTPTTLMinutes int `mapstructure:"OTP_TTL_MINUTES"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// MailAPIKey is the API key for the outbound mail API. When empty, codes are logged instead of delivered.
	MailAPIKey string `mapstructure:"MAIL_API_KEY"`
	// MailAPIBaseURL is the mail API endpoint URL.
	MailAPIBaseURL string `mapstructure:"MAIL_API_BASE_URL"`
	// MailFrom is the sender address for outbound mail.
	MailFrom string `mapstructure:"MAIL_FROM"`
	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. http://localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ISSUER", "fintrack-auth")
	v.SetDefault("JWT_AUDIENCE", "fintrack-api")
	v.SetDefault("JWT_TTL", "168h") // 7d
	v.SetDefault("OTP_TTL_MINUTES", 10)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("MAIL_API_KEY", "")
	v.SetDefault("MAIL_API_BASE_URL", "")
	v.SetDefault("MAIL_FROM", "no-reply@fintrack.local")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.OTPTTLMinutes < 0 {
		return nil, errors.New("config: OTP_TTL_MINUTES must not be negative")
	}
	if cfg.OTPTTLMinutes == 0 {
		cfg.OTPTTLMinutes = 10
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	return &cfg, nil
}

// TokenTTL parses JWTTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) TokenTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// OTPTTL returns the one-time code lifetime as a time.Duration.
func (c *Config) OTPTTL() time.Duration {
	if c.OTPTTLMinutes <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.OTPTTLMinutes) * time.Minute
}
