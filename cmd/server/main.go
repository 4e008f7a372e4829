package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/ruralpay/cardtransfer/internal/config"
	"github.com/ruralpay/cardtransfer/internal/database"
	"github.com/ruralpay/cardtransfer/internal/handlers"
	mW "github.com/ruralpay/cardtransfer/internal/middleware"
	"github.com/ruralpay/cardtransfer/internal/services"
	"github.com/ruralpay/cardtransfer/internal/store"
	"github.com/spf13/viper"
)

func main() {
	// Initialize config
	bootLog := config.NewLogger("info", "json")
	config.Load(".env", bootLog)
	log := config.LoggerFromConfig()

	transferConfig := config.LoadTransferConfig()
	loc, err := transferConfig.Location()
	if err != nil {
		log.WithError(err).Fatal("Invalid transfer configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	db, err := database.InitDB(ctx, database.GetConfig(), log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	redisClient := database.InitRedis(ctx, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize services
	clock := services.NewSystemClock(loc)
	uow := store.NewUnitOfWork(db, transferConfig.LockTimeout)

	var publisher services.TransferPublisher
	var sweepLock services.SweepLock
	if redisClient != nil {
		publisher = services.NewRedisTransferPublisher(redisClient, transferConfig.EventsQueue)
		sweepLock = services.NewRedisSweepLock(redisClient, transferConfig.SweepLockKey, instanceName(), transferConfig.SweepLockTTL)
	}

	transferService := services.NewTransferService(uow, clock, publisher, log)
	cardService := services.NewCardService(uow, log)

	sweeper := services.NewExpirationSweeper(uow, clock, sweepLock, log)
	if err := sweeper.Start(ctx, transferConfig.SweepSchedule); err != nil {
		log.WithError(err).Fatal("Failed to start expiration sweeper")
	}
	defer sweeper.Stop()

	transferHandler := handlers.NewTransferHandler(transferService, cardService, log)
	cardHandler := handlers.NewCardHandler(cardService, log)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mW.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "healthy"}
		if err := db.PingContext(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "database unavailable"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mW.AuthMiddleware)
		handlers.RegisterRoutes(r, transferHandler, cardHandler)
	})

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.shutdown_timeout", 30*time.Second)
	port := viper.GetString("server.port")

	// Start server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.WithField("port", port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()

	log.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), viper.GetDuration("server.shutdown_timeout"))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}

// instanceName identifies this process as the holder of the sweep lock.
func instanceName() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host + "-" + uuid.NewString()[:8]
	}
	return uuid.NewString()
}
