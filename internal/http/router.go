package http

import (
	"log/slog"

	"github.com/geocoder89/siteis/internal/config"
	"github.com/geocoder89/siteis/internal/http/handlers"
	"github.com/geocoder89/siteis/internal/http/middlewares"
	"github.com/geocoder89/siteis/internal/notifications"
	"github.com/geocoder89/siteis/internal/observability"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// UserStore is what the auth endpoints need from the credential store.
type UserStore interface {
	handlers.UserReader
	handlers.UserWriter
}

type Deps struct {
	Config config.Config
	Log    *slog.Logger
	// Prom is nil when metrics are disabled.
	Prom *observability.Prom

	Users    UserStore
	Messages handlers.MessageAppender
	Ready    map[string]handlers.Pinger

	JWT      middlewares.TokenVerifier
	Issuer   handlers.TokenIssuer
	Limiter  middlewares.Limiter
	Notifier notifications.Notifier
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Config.MaxBodyBytes <= 0 {
		d.Config.MaxBodyBytes = 100 * 1024
	}

	r := gin.New()

	// client IPs key the auth limiter and are stored with contact messages
	if err := r.SetTrustedProxies(d.Config.TrustedProxies); err != nil {
		d.Log.Error("invalid TRUSTED_PROXIES, trusting none", "err", err)
		_ = r.SetTrustedProxies(nil)
	}

	var (
		gateRec middlewares.GateRecorder
		authRec handlers.AuthRecorder
	)

	rules := middlewares.DefaultPublicRules()
	if d.Prom != nil {
		gateRec, authRec = d.Prom, d.Prom
		rules = rules.WithExact("/metrics")
	}

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware("siteis"))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Config.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))
	r.Use(middlewares.NewSessionGate(d.JWT, rules, d.Log, gateRec).Handler())

	// health
	h := handlers.NewHealthHandler(d.Log, d.Ready)
	r.GET("/health", h.Health)
	r.GET("/readyz", h.Readyz)

	if d.Prom != nil {
		r.GET("/metrics", gin.WrapH(d.Prom.Handler()))
	}

	// auth
	authHandler := handlers.NewAuthHandler(d.Users, d.Users, d.Issuer, authRec, d.Config, d.Log)

	authGroup := r.Group("")
	if d.Limiter != nil {
		authGroup.Use(middlewares.RateLimit(d.Limiter, "auth", middlewares.KeyByIP, d.Log))
	}
	authGroup.Use(middlewares.RequireFormOrJSON())

	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)

	// contact form; bodies it cannot read are saved as {}
	contactHandler := handlers.NewContactHandler(d.Messages, d.Notifier, d.Log)
	r.POST("/contact", contactHandler.Submit)

	// everything else is the front end
	r.NoRoute(handlers.NewStaticHandler(d.Config.FrontDir, d.Log).Serve)

	return r
}
