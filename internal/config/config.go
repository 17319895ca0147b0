package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr         = ":8080"
	defaultDatabaseURL      = "tradelink.db"
	defaultJWTSecret        = "change-me-jwt-secret"
	defaultJWTAccessTTL     = "24h"
	defaultLogLevel         = "info"
	defaultWSWriteWait      = "10s"
	defaultWSPongWait       = "60s"
	defaultWSMaxMessage     = "65536"
	defaultS3Region         = "us-east-1"
	defaultUploadURLTTL     = "15m"
	defaultS3ForcePathStyle = "true"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	DatabaseURL string
	LogLevel    string

	JWTSecret    string
	JWTAccessTTL time.Duration

	CORSAllowedOrigins []string

	WS WebSocketConfig

	// RedisURL enables the cross-instance broadcast relay when set.
	RedisURL string

	S3 S3Config
}

type WebSocketConfig struct {
	WriteWait       time.Duration
	PongWait        time.Duration
	MaxMessageBytes int64
}

// PingPeriod must stay below PongWait so the peer has time to answer.
func (c WebSocketConfig) PingPeriod() time.Duration {
	return (c.PongWait * 9) / 10
}

type S3Config struct {
	Bucket         string
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
	UploadURLTTL   time.Duration
}

// Enabled reports whether presigned uploads can be issued.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Load reads configuration from the environment, optionally seeded from a .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))

	var err error
	if cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL); err != nil {
		return nil, err
	}
	if cfg.WS.WriteWait, err = parseDurationEnv("WS_WRITE_WAIT", defaultWSWriteWait); err != nil {
		return nil, err
	}
	if cfg.WS.PongWait, err = parseDurationEnv("WS_PONG_WAIT", defaultWSPongWait); err != nil {
		return nil, err
	}
	if cfg.WS.MaxMessageBytes, err = parseIntEnv("WS_MAX_MESSAGE_BYTES", defaultWSMaxMessage); err != nil {
		return nil, err
	}

	cfg.S3 = S3Config{
		Bucket:         strings.TrimSpace(os.Getenv("S3_BUCKET")),
		Region:         strings.TrimSpace(getEnv("S3_REGION", defaultS3Region)),
		Endpoint:       strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		AccessKey:      strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
		SecretKey:      strings.TrimSpace(os.Getenv("S3_SECRET_KEY")),
		ForcePathStyle: parseBoolEnv("S3_FORCE_PATH_STYLE", defaultS3ForcePathStyle),
	}
	if cfg.S3.UploadURLTTL, err = parseDurationEnv("UPLOAD_URL_TTL", defaultUploadURLTTL); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.WS.WriteWait <= 0 {
		return fmt.Errorf("WS_WRITE_WAIT must be > 0")
	}
	if cfg.WS.PongWait <= 0 {
		return fmt.Errorf("WS_PONG_WAIT must be > 0")
	}
	if cfg.WS.MaxMessageBytes <= 0 {
		return fmt.Errorf("WS_MAX_MESSAGE_BYTES must be > 0")
	}
	if cfg.S3.UploadURLTTL <= 0 {
		return fmt.Errorf("UPLOAD_URL_TTL must be > 0")
	}
	if cfg.S3.Enabled() && (cfg.S3.AccessKey == "") != (cfg.S3.SecretKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY and S3_SECRET_KEY must be set together")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.DatabaseURL == defaultDatabaseURL {
			return fmt.Errorf("in prod/release DATABASE_URL must be set")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int64, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
