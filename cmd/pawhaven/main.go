package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pawhaven/pawhaven/internal/backup"
	"github.com/pawhaven/pawhaven/internal/database"
	"github.com/pawhaven/pawhaven/internal/logging"
	"github.com/pawhaven/pawhaven/internal/push"
	"github.com/pawhaven/pawhaven/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("PAWHAVEN_LOG_LEVEL"), os.Getenv("PAWHAVEN_LOG_FORMAT"))

	port := os.Getenv("PAWHAVEN_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("PAWHAVEN_DB_PATH")
	if dbPath == "" {
		dbPath = "pawhaven.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	backupCfg := backup.Config{
		S3: backup.S3Config{
			Endpoint:  os.Getenv("PAWHAVEN_S3_ENDPOINT"),
			Bucket:    os.Getenv("PAWHAVEN_S3_BUCKET"),
			Region:    os.Getenv("PAWHAVEN_S3_REGION"),
			AccessKey: os.Getenv("PAWHAVEN_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("PAWHAVEN_S3_SECRET_KEY"),
		},
		DBPath:     dbPath,
		Passphrase: os.Getenv("PAWHAVEN_BACKUP_PASSPHRASE"),
	}
	if h := os.Getenv("PAWHAVEN_BACKUP_HOUR"); h != "" {
		if hour, err := strconv.Atoi(h); err == nil && hour >= 0 && hour <= 23 {
			backupCfg.ScheduleHour = hour
		}
	}
	if d := os.Getenv("PAWHAVEN_BACKUP_RETENTION_DAYS"); d != "" {
		if days, err := strconv.Atoi(d); err == nil {
			backupCfg.RetentionDays = days
		}
	}

	pushCfg := push.Config{
		VAPIDPublicKey:  os.Getenv("PAWHAVEN_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("PAWHAVEN_VAPID_PRIVATE_KEY"),
		Subscriber:      os.Getenv("PAWHAVEN_PUSH_SUBSCRIBER"),
	}
	if !pushCfg.Enabled() {
		logger.Warn("VAPID keys not configured, push notifications disabled")
	}

	srv := server.New(db, backupCfg, pushCfg, logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(ctx)
		defer sched.Stop()
	}

	if mgr := srv.BackupManager(); mgr.Enabled() {
		mgr.Start(ctx)
		defer mgr.Stop()
	}

	go cleanupLoop(ctx, srv, logger.With("component", "cleanup"))

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("PawHaven running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

// cleanupLoop periodically expires sessions, prunes the notification
// dedup log, and drops idle rate limiter entries.
func cleanupLoop(ctx context.Context, srv *server.Server, logger *slog.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Error("delete expired sessions", "error", err)
			} else if n > 0 {
				logger.Info("removed expired sessions", "count", n)
			}

			if err := srv.PushStore().CleanupSent(time.Now().UTC().AddDate(0, 0, -7)); err != nil {
				logger.Error("prune sent notifications", "error", err)
			}

			srv.RateLimiter().Cleanup()
		}
	}
}
