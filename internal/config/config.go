// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or a path to one.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or a path to one.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the iss claim (e.g. "orghub-auth").
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the aud claim (e.g. "orghub-api").
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// JWTRefreshTTL is the refresh token lifetime (e.g. "168h").
	JWTRefreshTTL string `mapstructure:"JWT_REFRESH_TTL"`
	// JWTExpiryGrace is the clock-skew tolerance on access token expiry (e.g. "30s").
	JWTExpiryGrace string `mapstructure:"JWT_EXPIRY_GRACE"`
	// BcryptCost is the bcrypt cost factor (4-31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// ClaimCap bounds the number of compact membership claims per credential.
	// Issuance fails when a principal's verified memberships exceed it.
	ClaimCap int `mapstructure:"CLAIM_CAP"`

	// RateLimitRequests is the max requests allowed per window per principal/IP.
	RateLimitRequests int `mapstructure:"RATE_LIMIT_REQUESTS"`
	// RateLimitWindow is the rate limit window (e.g. "15m").
	RateLimitWindow string `mapstructure:"RATE_LIMIT_WINDOW"`
	// RateLimitFailClosed denies requests when the limiter backend errors.
	// Fail-closed suits mutating endpoints, fail-open read-only ones.
	RateLimitFailClosed bool `mapstructure:"RATE_LIMIT_FAIL_CLOSED"`
	// RedisAddr enables the Redis-backed limiter when set (host:port);
	// empty means in-process counters.
	RedisAddr string `mapstructure:"REDIS_ADDR"`

	// MaxCredentialAge is the anomaly threshold for flagging old credentials (e.g. "12h").
	MaxCredentialAge string `mapstructure:"MAX_CREDENTIAL_AGE"`

	// KafkaBrokers is a comma-separated broker list; empty disables
	// membership change events.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// MembershipEventsTopic is the Kafka topic for membership change events.
	MembershipEventsTopic string `mapstructure:"MEMBERSHIP_EVENTS_TOPIC"`
	// KafkaGroupID is the consumer group id for the membership events worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	// OTLPEndpoint enables OTLP export of traces/metrics/events when set.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// Env is the application environment ("development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored (e.g. in CI); env vars
// override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_ISSUER", "orghub-auth")
	v.SetDefault("JWT_AUDIENCE", "orghub-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("JWT_REFRESH_TTL", "168h") // 7d
	v.SetDefault("JWT_EXPIRY_GRACE", "30s")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("CLAIM_CAP", 64)
	v.SetDefault("RATE_LIMIT_REQUESTS", 300)
	v.SetDefault("RATE_LIMIT_WINDOW", "15m")
	v.SetDefault("RATE_LIMIT_FAIL_CLOSED", true)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("MAX_CREDENTIAL_AGE", "12h")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("MEMBERSHIP_EVENTS_TOPIC", "orghub-membership-events")
	v.SetDefault("KAFKA_GROUP_ID", "orghub-membership-worker")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if cfg.ClaimCap <= 0 {
		return nil, errors.New("config: CLAIM_CAP must be positive")
	}
	if cfg.RateLimitRequests <= 0 {
		return nil, errors.New("config: RATE_LIMIT_REQUESTS must be positive")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	return durationOr(c.JWTAccessTTL, 15*time.Minute)
}

// RefreshTTL parses JWTRefreshTTL. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	return durationOr(c.JWTRefreshTTL, 168*time.Hour)
}

// ExpiryGrace parses JWTExpiryGrace. Returns 30s if unset or invalid.
func (c *Config) ExpiryGrace() time.Duration {
	return durationOr(c.JWTExpiryGrace, 30*time.Second)
}

// RateWindow parses RateLimitWindow. Returns 15m if unset or invalid.
func (c *Config) RateWindow() time.Duration {
	return durationOr(c.RateLimitWindow, 15*time.Minute)
}

// CredentialAgeLimit parses MaxCredentialAge. Returns 12h if unset or invalid.
func (c *Config) CredentialAgeLimit() time.Duration {
	return durationOr(c.MaxCredentialAge, 12*time.Hour)
}

// KafkaBrokersList returns broker addresses from the comma-separated config.
// A non-empty list means membership change events are enabled.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func durationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
