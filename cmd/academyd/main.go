package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"

	"academy-booking-client/config"
	"academy-booking-client/internal/api"
	"academy-booking-client/internal/db"
	"academy-booking-client/internal/ledger"
	"academy-booking-client/internal/notification"
	"academy-booking-client/internal/remote"
	"academy-booking-client/internal/session"
	"academy-booking-client/internal/store"
	"academy-booking-client/internal/watch"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "academy-client ", log.LstdFlags)

	if err := godotenv.Load(); err != nil {
		logger.Println("no .env file found, relying on the environment")
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Remote.BaseURL == "" {
		logger.Fatalf("remote.base_url must be configured")
	}

	// Initialize the local credential database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("credential store initialized")

	remoteClient := remote.NewClient(&cfg.Remote, appStore)
	resolver := session.NewOrderStatusResolver(remoteClient)

	sessions := session.NewManager(appStore, remoteClient, resolver, cfg.Session.RenewInterval)
	if err := sessions.Initialize(ctx); err != nil {
		logger.Printf("Warning: could not restore persisted session: %v", err)
	}
	go sessions.Run(ctx)

	hourLedger := ledger.New(remoteClient, cfg.Session.BalanceCacheTTL)

	// Reservation status notifications need VAPID keys; without them the
	// watcher stays off.
	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Println("VAPID keys are not configured; push notifications disabled")
		cfg.Watcher.Enabled = false
	}
	if cfg.Watcher.Enabled {
		webpushOptions := webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
		watcher := watch.New(&cfg.Watcher, sessions, hourLedger, pool)
		go watcher.Run(ctx)
	}

	// Initialize router
	handler := api.NewHandler(sessions, resolver, hourLedger, appStore, remoteClient, cfg.Push.PublicKey)
	router := api.NewRouter(handler)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
