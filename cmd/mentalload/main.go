package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soluo/mental-load/internal/backup"
	"github.com/soluo/mental-load/internal/config"
	"github.com/soluo/mental-load/internal/database"
	"github.com/soluo/mental-load/internal/logging"
	"github.com/soluo/mental-load/internal/server"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(db, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if srv.PushService().Enabled() {
		srv.PushScheduler().Start(ctx)
		defer srv.PushScheduler().Stop()
		logger.Info("push reminders enabled")
	}

	backupMgr := backup.NewManager(backup.Config{
		Bucket:     cfg.Backup.Bucket,
		Region:     cfg.Backup.Region,
		Endpoint:   cfg.Backup.Endpoint,
		AccessKey:  cfg.Backup.AccessKey,
		SecretKey:  cfg.Backup.SecretKey,
		Passphrase: cfg.Backup.Passphrase,
		Interval:   cfg.Backup.Interval,
		DBPath:     cfg.DBPath,
	}, db, logger.With("component", "backup"))
	backupMgr.Start(ctx)
	defer backupMgr.Stop()
	if backupMgr.Status().State != backup.StateDisabled {
		logger.Info("encrypted snapshots enabled", "interval", cfg.Backup.Interval)
	}

	go cleanupLoop(ctx, srv, logger)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// cleanupLoop periodically drops expired sessions and stale rate-limit
// buckets.
func cleanupLoop(ctx context.Context, srv *server.Server, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Error("session cleanup", "error", err)
			} else if removed > 0 {
				logger.Info("expired sessions removed", "count", removed)
			}
			srv.RateLimiter().Cleanup()
		}
	}
}
