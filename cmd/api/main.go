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

	"github.com/eduraio/qanda-api/internal/config"
	"github.com/eduraio/qanda-api/internal/db"
	httpx "github.com/eduraio/qanda-api/internal/http"
	"github.com/eduraio/qanda-api/internal/observability"
	"github.com/eduraio/qanda-api/internal/redisclient"
	"github.com/eduraio/qanda-api/internal/security"
)

func main() {
	cfg := config.Load()

	// one hash cost for the process lifetime
	security.Init(cfg.BcryptCost)

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(slog.New(observability.NewTraceHandler(log.Handler())))
	log = slog.Default()

	// tracing is optional; without an endpoint the exporter just points at
	// the local default and drops spans if nothing listens
	shutdownTracer, err := observability.InitTracer(context.Background(), "qanda-api", cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	seedCtx, cancelSeed := config.WithTimeout(5 * time.Second)
	err = db.EnsureOrganizerUser(seedCtx, pool, cfg)
	cancelSeed()

	if err != nil {
		log.Error("organizer seed failed", "err", err)
		os.Exit(1)
	}

	// redis backs the shared rate limiter; without it each process
	// enforces its own limits
	var rdb *redisclient.Client

	if cfg.RedisAddr != "" {
		rdb = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancelPing := config.WithTimeout(2 * time.Second)
		err = rdb.Ping(pingCtx)
		cancelPing()

		if err != nil {
			log.Error("redis unreachable, falling back to local rate limiting", "err", err)
			_ = rdb.Close()
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	router := httpx.NewRouter(cfg, pool, rdb)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
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
			return
		}

		_ = shutdownTracer(ctx)
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
