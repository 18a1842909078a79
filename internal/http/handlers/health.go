package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is usable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]Pinger
	log    *slog.Logger
}

// NewHealthHandler takes the named stores /readyz should check.
func NewHealthHandler(log *slog.Logger, checks map[string]Pinger) *HealthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &HealthHandler{checks: checks, log: log}
}

func (h *HealthHandler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 1*time.Second)
	defer cancel()

	for name, p := range h.checks {
		if err := p.Ping(cctx); err != nil {
			h.log.WarnContext(cctx, "readiness check failed", "check", name, "err", err)
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "failed": name})
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready"})
}
