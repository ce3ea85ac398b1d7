package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dreamingfree09/study-portal/internal/config"
	"github.com/dreamingfree09/study-portal/internal/db"
	"github.com/dreamingfree09/study-portal/internal/lib/sl"
	"github.com/dreamingfree09/study-portal/internal/server"
	"github.com/dreamingfree09/study-portal/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", sl.Err(err))
		os.Exit(1)
	}

	log := setupLogger(cfg.Env)

	if cfg.SessionSecret == config.DefaultSessionSecret {
		log.Warn("using default session secret; set PORTAL_SESSION_SECRET in production")
	}

	pool, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", sl.Err(err))
		os.Exit(1)
	}
	defer func() { _ = pool.Close() }()

	log.Info("running migrations")
	if err := db.RunMigrations(pool); err != nil {
		log.Error("migration failed", sl.Err(err))
		os.Exit(1)
	}
	log.Info("migrations complete")

	blobs, err := store.NewMinio(cfg.S3Endpoint, cfg.S3AccessKey, cfg.S3SecretKey, cfg.Bucket)
	if err != nil {
		log.Error("blob store connect failed", sl.Err(err))
		os.Exit(1)
	}

	pg := store.NewPostgres(pool)

	srv := server.New(server.Config{
		Addr: cfg.Addr,
		Log:  log,
		Sessions: server.Sessions{
			Secret: cfg.SessionSecret,
			TTL:    12 * time.Hour,
		},
		Users:          pg,
		Materials:      pg,
		Blobs:          blobs,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Ping:           pool.PingContext,
	})

	// Run the HTTP server in the background so we can watch for signals.
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting", slog.String("addr", cfg.Addr), slog.String("env", cfg.Env))
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutting down", slog.String("signal", sig.String()))
		// Give in-flight requests 5 seconds to finish.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error("shutdown error", sl.Err(err))
			os.Exit(1)
		}
		log.Info("shutdown complete")
	case err := <-errCh:
		if err != nil {
			log.Error("server error", sl.Err(err))
			os.Exit(1)
		}
	}
}

// setupLogger picks the slog handler by environment: JSON in prod, text
// with debug level otherwise.
func setupLogger(env string) *slog.Logger {
	var h slog.Handler
	switch env {
	case "prod", "production":
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(h)
}
