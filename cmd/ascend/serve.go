package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ascend/internal/api"
	"ascend/internal/config"
	"ascend/internal/metrics"
	"ascend/internal/notifications"
	"ascend/internal/storage"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger

	if a.relay != nil {
		ready := make(chan struct{})
		go func() {
			if err := a.relay.Run(ctx, ready); err != nil {
				logger.Error().Err(err).Msg("change relay stopped")
			}
		}()
		<-ready
	}

	dir := a.svc.Directory
	err = config.WatchDirectory(ctx, cfg.Directory.Path, cfg.DirectoryReloadInterval(), &logger, func(seed *config.DirectoryConfig) {
		if err := dir.Seed(ctx, seed); err != nil {
			logger.Error().Err(err).Msg("seed directory")
			return
		}
		if err := dir.Reload(ctx, seed); err != nil {
			logger.Error().Err(err).Msg("reload directory")
		}
	})
	if err != nil {
		logger.Warn().Err(err).Msg("directory watcher disabled")
	}

	backup := storage.NewBackupService(a.db, cfg.Backup, &logger)
	go backup.Start(ctx)

	scheduler := notifications.NewScheduler(notifications.SchedulerConfig{
		CheckInterval: cfg.NotificationCheckInterval(),
		RetentionDays: cfg.Notifications.RetentionDays,
	}, a.svc.Notifications, &logger)
	go scheduler.Start(ctx)

	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, a.db, a.rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	server := api.NewHTTPServer(a.svc, api.Options{
		Port:           cfg.API.Port,
		APIKey:         cfg.API.APIKey,
		RateLimitRPS:   cfg.API.RateLimitRPS,
		RateLimitBurst: cfg.API.RateLimitBurst,
	}, &logger)

	logger.Info().Str("db", cfg.Database.Path).Bool("redis", a.rdb != nil).Msg("ascend started")
	return server.Start(ctx)
}

type pinger interface {
	PingContext(ctx context.Context) error
}

func startHealthServer(ctx context.Context, port int, db pinger, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
