package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/siteis/internal/auth"
	"github.com/geocoder89/siteis/internal/config"
	httpx "github.com/geocoder89/siteis/internal/http"
	"github.com/geocoder89/siteis/internal/http/handlers"
	"github.com/geocoder89/siteis/internal/http/middlewares"
	"github.com/geocoder89/siteis/internal/notifications"
	"github.com/geocoder89/siteis/internal/observability"
	"github.com/geocoder89/siteis/internal/redisclient"
	"github.com/geocoder89/siteis/internal/repo/jsonfile"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if cfg.InsecureJWTSecret() {
		level := slog.LevelWarn
		if cfg.IsProd() {
			level = slog.LevelError
		}
		log.Log(context.Background(), level, "JWT_SECRET is unset or the development default; set a strong secret")
	}

	shutdownTracer, err := observability.InitTracer(context.Background(), observability.TracerConfig{
		ServiceName: "siteis",
		Env:         cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
		SampleRatio: cfg.TraceSampleRatio,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	var prom *observability.Prom
	storeOpts := []jsonfile.Option{jsonfile.WithLogger(log)}
	if cfg.MetricsEnabled {
		prom = observability.NewProm()
		storeOpts = append(storeOpts, jsonfile.WithObserver(prom))
	}

	users := jsonfile.NewUsersRepo(cfg.UsersFile, storeOpts...)
	messages := jsonfile.NewMessagesRepo(cfg.MessagesFile, storeOpts...)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	// rate limiting is per process unless redis is configured
	var limiter middlewares.Limiter = middlewares.NewMemoryLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	var rdb *redisclient.Client
	if cfg.RedisAddr != "" {
		rdb = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancel := config.WithTimeout(2 * time.Second)
		if err := rdb.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable at startup, limiter will fall open until it recovers", "err", err)
		}
		cancel()

		limiter = redisclient.NewLimiter(rdb, cfg.AuthRateLimit, cfg.AuthRateWindow)
	}

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(log),
		notifications.ProtectedNotifierConfig{},
	)

	// set up routers with the log
	router := httpx.NewRouter(httpx.Deps{
		Config:   cfg,
		Log:      log,
		Prom:     prom,
		Users:    users,
		Messages: messages,
		Ready: map[string]handlers.Pinger{
			"users":    users,
			"messages": messages,
		},
		JWT:      jwtManager,
		Issuer:   jwtManager,
		Limiter:  limiter,
		Notifier: notifier,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "front_dir", cfg.FrontDir)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}

		if rdb != nil {
			_ = rdb.Close()
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
