package main

import (
	"classtrack/attendance-app/internal/api"
	"classtrack/attendance-app/internal/config"
	"classtrack/attendance-app/internal/domain"
	"classtrack/attendance-app/internal/repository/mongo"
	"classtrack/attendance-app/internal/service"
	"classtrack/attendance-app/internal/storage"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Attendance App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

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
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureTimetableIndexes(ctx, appDB.Collection("timetables"))
		mongo.EnsureAttendanceIndexes(ctx, appDB.Collection("attendance"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Archive Storage ---
	log.Println("Initializing ledger archive storage...")
	archiver, err := storage.NewS3Archiver(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 archive storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	timetableRepo := mongo.NewMongoTimetableRepository(appDB)
	attendanceRepo := mongo.NewMongoAttendanceRepository(appDB)
	presetRepo := mongo.NewMongoPresetRepository(appDB)
	txRunner := mongo.NewTxRunner(dbClient)

	// --- Seed Presets ---
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := presetRepo.EnsureDefaults(seedCtx, domain.DefaultPresets()); err != nil {
		log.Printf("WARN: Failed to seed default presets: %v", err)
	}
	seedCancel()

	// --- Initialize Services ---
	log.Println("Initializing services...")
	scheduleService := service.NewScheduleService(timetableRepo, attendanceRepo, txRunner)
	queryService := service.NewQueryService(timetableRepo, attendanceRepo)
	presetService := service.NewPresetService(presetRepo, timetableRepo, attendanceRepo, txRunner, archiver)

	// --- Initialize Gin Engine ---
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, scheduleService, queryService, presetService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
