package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/geocoder89/siteis/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthAndReadiness(t *testing.T) {
	healthy := pingFunc(func(context.Context) error { return nil })
	broken := pingFunc(func(context.Context) error { return errors.New("permission denied") })

	tests := []struct {
		name   string
		checks map[string]handlers.Pinger
		want   int
	}{
		{"no checks", nil, http.StatusOK},
		{"all healthy", map[string]handlers.Pinger{"users": healthy, "messages": healthy}, http.StatusOK},
		{"one broken", map[string]handlers.Pinger{"users": healthy, "messages": broken}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		h := handlers.NewHealthHandler(nil, tt.checks)
		r := gin.New()
		r.GET("/health", h.Health)
		r.GET("/readyz", h.Readyz)

		if w := get(r, http.MethodGet, "/health"); w.Code != http.StatusOK || w.Body.String() != `{"status":"ok"}` {
			t.Fatalf("%s: health got %d %s", tt.name, w.Code, w.Body.String())
		}
		if w := get(r, http.MethodGet, "/readyz"); w.Code != tt.want {
			t.Fatalf("%s: readyz got %d", tt.name, w.Code)
		}
	}
}
