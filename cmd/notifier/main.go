package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/transitlk/notifier/internal/database"
	"github.com/transitlk/notifier/internal/logging"
	"github.com/transitlk/notifier/internal/push"
	"github.com/transitlk/notifier/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("NOTIFIER_LOG_LEVEL"))

	port := os.Getenv("NOTIFIER_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("NOTIFIER_DB_PATH")
	if dbPath == "" {
		dbPath = "notifier.db"
	}

	cfg := server.Config{
		JWTSecret: os.Getenv("NOTIFIER_JWT_SECRET"),
		Push: push.Config{
			VAPIDPublicKey:  os.Getenv("NOTIFIER_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("NOTIFIER_VAPID_PRIVATE_KEY"),
			Contact:         os.Getenv("NOTIFIER_VAPID_CONTACT"),
		},
		LookupConcurrency: envInt("NOTIFIER_LOOKUP_CONCURRENCY"),
		SendConcurrency:   envInt("NOTIFIER_SEND_CONCURRENCY"),
	}
	if cfg.Push.VAPIDPublicKey == "" || cfg.Push.VAPIDPrivateKey == "" {
		log.Fatal("VAPID keys are not set; generate them with vapidgen and export NOTIFIER_VAPID_PUBLIC_KEY / NOTIFIER_VAPID_PRIVATE_KEY")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("NOTIFIER_JWT_SECRET is not set")
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv := server.New(db, cfg, logger)

	done := make(chan struct{})
	srv.StartRateLimiterCleanup(done)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("notifier listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	close(done)

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}

func envInt(name string) int {
	v, err := strconv.Atoi(os.Getenv(name))
	if err != nil {
		return 0
	}
	return v
}
