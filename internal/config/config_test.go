package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "PORT", "JWT_SECRET", "JWT_TTL_MINUTES", "CORS_ALLOWED_ORIGINS", "METRICS_ENABLED"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	if cfg.Port != 3000 {
		t.Fatalf("port: got %d want 3000", cfg.Port)
	}
	if cfg.JWTTTL != 2*time.Hour {
		t.Fatalf("ttl: got %s want 2h", cfg.JWTTTL)
	}
	if !cfg.InsecureJWTSecret() {
		t.Fatalf("default secret should be reported as insecure")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("cors origins: got %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.MetricsEnabled {
		t.Fatalf("metrics should be on by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("PORT", "8081")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_TTL_MINUTES", "30")
	t.Setenv("SESSION_COOKIE_MATCH_TTL", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg := Load()

	if !cfg.IsProd() {
		t.Fatalf("expected prod env")
	}
	if cfg.Port != 8081 {
		t.Fatalf("port: got %d", cfg.Port)
	}
	if cfg.InsecureJWTSecret() {
		t.Fatalf("custom secret flagged as insecure")
	}
	if cfg.JWTTTL != 30*time.Minute {
		t.Fatalf("ttl: got %s", cfg.JWTTTL)
	}
	if !cfg.CookieMatchTTL {
		t.Fatalf("cookie ttl flag not read")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b.test" {
		t.Fatalf("cors origins: got %v", cfg.CORSAllowedOrigins)
	}
}

func TestGetEnvInt_InvalidFallsBack(t *testing.T) {
	t.Setenv("PORT", "not-a-number")

	if got := getEnvInt("PORT", 3000); got != 3000 {
		t.Fatalf("got %d want fallback 3000", got)
	}
}

func TestIsProd_Spellings(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"prod", true},
		{"production", true},
		{"Production", true},
		{"dev", false},
		{"staging", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := (Config{Env: tt.env}).IsProd(); got != tt.want {
			t.Fatalf("%q: got %v want %v", tt.env, got, tt.want)
		}
	}
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")
	if cfg := Load(); len(cfg.TrustedProxies) != 0 {
		t.Fatalf("default should trust no proxies, got %v", cfg.TrustedProxies)
	}

	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 192.168.0.0/16")
	cfg := Load()
	if len(cfg.TrustedProxies) != 2 || cfg.TrustedProxies[1] != "192.168.0.0/16" {
		t.Fatalf("trusted proxies: got %v", cfg.TrustedProxies)
	}
}
