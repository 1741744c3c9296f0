package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mantism/hyperbolic/internal/api"
	"github.com/mantism/hyperbolic/internal/config"
	"github.com/mantism/hyperbolic/internal/repository/mongo"
	"github.com/mantism/hyperbolic/internal/service"
	"github.com/mantism/hyperbolic/internal/storage"

	"github.com/gin-gonic/gin"
)

// @title Hyperbolic API
// @version 1.0
// @description API for tracking tricks, training sessions, and trick video uploads.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log.Println("Starting Hyperbolic server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureTrickIndexes(ctx, appDB.Collection("tricks"))
		mongo.EnsureVideoIndexes(ctx, appDB.Collection("videos"))
		mongo.EnsureSessionIndexes(ctx, appDB.Collection("sessions"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	trickRepo := mongo.NewMongoTrickRepository(appDB)
	videoRepo := mongo.NewMongoVideoRepository(appDB)
	sessionRepo := mongo.NewMongoSessionRepository(appDB)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	trickService := service.NewTrickService(trickRepo)
	videoService := service.NewVideoService(videoRepo, trickRepo, fileStorage, cfg.Upload.GrantExpiry, cfg.Upload.MaxSizeBytes)
	sessionService := service.NewSessionService(sessionRepo)

	// --- Expired-grant reaper ---
	// Pending videos whose upload grant lapsed without a completion are
	// failed and their orphaned bytes removed.
	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	go func() {
		ticker := time.NewTicker(cfg.Upload.ReapInterval)
		defer ticker.Stop()
		for {
			select {
			case <-reaperCtx.Done():
				return
			case <-ticker.C:
				n, err := videoService.ReapExpired(reaperCtx)
				if err != nil {
					log.Printf("ERROR: Reaper sweep failed: %v", err)
				} else if n > 0 {
					log.Printf("INFO: Reaper failed %d expired pending video(s)", n)
				}
			}
		}
	}()

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret, authService, trickService, videoService, sessionService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stopReaper()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
