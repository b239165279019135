package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/multibrand-site/internal/application/cleanup"
	"github.com/multibrand-site/internal/config"
	"github.com/multibrand-site/internal/infrastructure/cache"
	"github.com/multibrand-site/internal/infrastructure/dynamo"
	"github.com/multibrand-site/internal/infrastructure/google"
	jwtinfra "github.com/multibrand-site/internal/infrastructure/jwt"
	"github.com/multibrand-site/internal/infrastructure/memory"
	"github.com/multibrand-site/internal/infrastructure/postgres"
	s3infra "github.com/multibrand-site/internal/infrastructure/s3"
	"github.com/multibrand-site/internal/infrastructure/smtp"
	"github.com/multibrand-site/internal/infrastructure/sns"
	transporthttp "github.com/multibrand-site/internal/transport/http"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(newLogger(cfg))
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, closeStore, err := buildDeps(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	svcs := transporthttp.NewServices(cfg, deps)

	var scheduler *cleanup.Scheduler
	if cfg.CleanupSchedule != "" {
		scheduler, err = cleanup.NewScheduler(svcs.PIN, cfg.CleanupSchedule, slog.Default())
		if err != nil {
			slog.Error("startup failed", "error", err)
			os.Exit(1)
		}
		scheduler.Start()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(ctx, cfg, svcs, deps.JWTProvider),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	slog.Info("server stopped")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// buildDeps connects every backend selected by cfg. The returned func
// releases the store and cache connections.
func buildDeps(ctx context.Context, cfg *config.Config) (*transporthttp.Deps, func(), error) {
	deps := &transporthttp.Deps{}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.StoreBackend {
	case config.BackendDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		// Bootstrap DynamoDB tables (creates them if they don't exist).
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		deps.Downloads = dynamo.NewDownloadRepo(client, cfg.DynamoTables.DownloadRequests)
		deps.Content = dynamo.NewContentRepo(client, cfg.DynamoTables.Content)
	case config.BackendPostgres:
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, store.Close)
		if err := store.Migrate(ctx); err != nil {
			closeAll()
			return nil, nil, err
		}
		deps.Downloads = store.Downloads()
		deps.Content = store.Content()
	case config.BackendMemory:
		slog.Warn("using in-memory store, data is lost on restart")
		store := memory.NewStore()
		deps.Downloads = store.Downloads()
		deps.Content = store.Content()
	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	s3Client, err := s3infra.NewClient(ctx, cfg)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	deps.Objects = s3infra.NewStore(s3Client, cfg.S3BucketName, cfg.S3PublicBaseURL)

	switch cfg.Notifier {
	case config.NotifierSNS:
		pub, err := sns.NewPublisher(ctx, cfg)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		deps.Notifier = pub
	default:
		deps.Notifier = smtp.NewMailer(cfg)
	}

	if rdb := cache.NewRedisClient(ctx, cfg); rdb != nil {
		closers = append(closers, func() { _ = rdb.Close() })
		deps.Cache = cache.New(rdb)
	}

	// JWT provider (optional, admin routes are disabled without it).
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		deps.JWTProvider = p
	} else {
		slog.Warn("JWT provider not available", "error", err)
	}
	deps.Google = google.NewVerifier(cfg.GoogleClientID)

	return deps, closeAll, nil
}
