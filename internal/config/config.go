package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only fit for local development.
const DefaultJWTSecret = "change-this-secret-in-prod"

type Config struct {
	Env  string
	Port int

	JWTSecret string
	JWTTTL    time.Duration
	// Gives the session cookie a Max-Age equal to the token TTL.
	CookieMatchTTL bool

	UsersFile    string
	MessagesFile string
	FrontDir     string

	CORSAllowedOrigins []string
	MaxBodyBytes       int64
	// Proxies whose X-Forwarded-For is believed. Empty trusts none.
	TrustedProxies []string

	AuthRateLimit  int
	AuthRateWindow time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTLPEndpoint     string
	TraceSampleRatio float64
	MetricsEnabled   bool
}

func Load() Config {
	// .env is optional; real environment variables win.
	_ = godotenv.Load(".env")

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 3000),

		JWTSecret:      getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTTTL:         time.Duration(getEnvInt("JWT_TTL_MINUTES", 120)) * time.Minute,
		CookieMatchTTL: getEnvBool("SESSION_COOKIE_MATCH_TTL", false),

		UsersFile:    getEnv("USERS_FILE", "data/users.json"),
		MessagesFile: getEnv("MESSAGES_FILE", "data/messages.json"),
		FrontDir:     getEnv("FRONT_DIR", "front"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 100*1024)),
		TrustedProxies:     splitList(getEnv("TRUSTED_PROXIES", "")),

		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow: time.Duration(getEnvInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		TraceSampleRatio: getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 1),
		MetricsEnabled:   getEnvBool("METRICS_ENABLED", true),
	}
}

// InsecureJWTSecret reports whether tokens are signed with the built-in
// development secret. Operators must override JWT_SECRET in production.
func (c Config) InsecureJWTSecret() bool {
	return c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret
}

// IsProd accepts both spellings operators use for APP_ENV.
func (c Config) IsProd() bool {
	switch strings.ToLower(strings.TrimSpace(c.Env)) {
	case "prod", "production":
		return true
	}
	return false
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer in environment, using default", "key", key, "default", fallback)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean in environment, using default", "key", key, "default", fallback)
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			slog.Warn("invalid number in environment, using default", "key", key, "default", fallback)
			return fallback
		}
		return f
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
