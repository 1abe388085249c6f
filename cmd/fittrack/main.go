package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/fittrack-app/fittrack/internal/adapter/driven/connectivity"
	"github.com/fittrack-app/fittrack/internal/adapter/driven/kvcache"
	"github.com/fittrack-app/fittrack/internal/adapter/driven/notify"
	redisadapter "github.com/fittrack-app/fittrack/internal/adapter/driven/redis"
	"github.com/fittrack-app/fittrack/internal/adapter/driven/remote"
	sqliteadapter "github.com/fittrack-app/fittrack/internal/adapter/driven/sqlite"
	"github.com/fittrack-app/fittrack/internal/adapter/driven/weather"
	httphandler "github.com/fittrack-app/fittrack/internal/adapter/driving/http"
	"github.com/fittrack-app/fittrack/internal/application"
	"github.com/fittrack-app/fittrack/internal/config"
	"github.com/fittrack-app/fittrack/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"cache_backend", cfg.CacheBackend,
		"remote_url", cfg.RemoteURL,
		"owner_id", cfg.OwnerID,
		"probe_interval", cfg.ProbeInterval,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the cache backend. A backend that fails to open is not fatal:
	// the cache degrades to memory-only mode and the app stays usable.
	backend, cleanup := openBackend(cfg)
	if cleanup != nil {
		defer cleanup()
	}
	cache := kvcache.New(backend)

	// 4. Wire the offline machinery: connectivity monitor, remote client
	// (which reports call outcomes back to the monitor), queue, reconciler.
	monitor := connectivity.New(false)
	remoteClient := remote.NewClient(cfg.RemoteURL, monitor)
	queue := application.NewSyncQueue(cache)
	notifier := notify.NewLogNotifier(slog.Default())
	reconciler := application.NewReconciler(queue, remoteClient, monitor, notifier)

	// 5. Weather client is optional.
	var weatherClient driven.WeatherClient
	if cfg.HasWeatherService() {
		weatherClient = weather.NewClient(cfg.WeatherURL)
		slog.Info("weather service configured", "url", cfg.WeatherURL)
	}

	// 6. Create application services.
	dataSvc := application.NewDataService(cache, queue, remoteClient, weatherClient, monitor)
	syncSvc := application.NewSyncService(reconciler, monitor, remoteClient, cfg.ProbeInterval)
	go syncSvc.Start(ctx)

	// 7. An initial ping establishes the starting connectivity state.
	if err := remoteClient.Ping(ctx); err != nil {
		slog.Warn("remote data service unreachable at startup, starting offline", "error", err)
	}

	// 8. Create HTTP handler and server.
	apiHandler := httphandler.NewHandler(dataSvc, syncSvc, monitor, cfg.OwnerID, slog.Default())
	handler := httphandler.NewServeMux(apiHandler, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("fittrack started", "listen_addr", cfg.ListenAddr, "owner_id", cfg.OwnerID)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// openBackend opens the configured cache backend. It returns a nil backend
// on failure, which kvcache.New treats as memory-only degraded mode. The
// second return value closes the backend's resources, when there are any.
func openBackend(cfg *config.Config) (kvcache.Backend, func()) {
	switch cfg.CacheBackend {
	case config.BackendRedis:
		repo, err := redisadapter.NewCacheRepo(cfg.RedisURL)
		if err != nil {
			slog.Error("failed to connect to redis, cache degraded to memory", "error", err)
			return nil, nil
		}
		slog.Info("redis cache backend opened")
		return repo, func() {
			if err := repo.Close(); err != nil {
				slog.Error("error closing redis client", "error", err)
			}
		}

	case config.BackendMemory:
		slog.Info("memory cache backend selected, local data will not survive restarts")
		return nil, nil

	default:
		db, err := sqliteadapter.NewDB(cfg.DBPath)
		if err != nil {
			slog.Error("failed to open database, cache degraded to memory", "error", err)
			return nil, nil
		}
		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			slog.Error("failed to run migrations, cache degraded to memory", "error", err)
			_ = db.Close()
			return nil, nil
		}
		slog.Info("sqlite cache backend opened", "path", cfg.DBPath)
		return sqliteadapter.NewCacheRepo(db), func() {
			if err := db.Close(); err != nil {
				slog.Error("error closing database", "error", err)
			}
		}
	}
}
