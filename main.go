package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"millstat/api"
	"millstat/config"
	"millstat/database"
	"millstat/etl"
	"millstat/jobs"
	"millstat/mart"
)

func main() {
	fmt.Println("=== millStat - Cotton Quality Dashboard Service ===")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Configuration loaded")

	// Initialize databases
	db, err := database.Initialize(cfg.DBPath, cfg.AppDBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	if err := repo.CreateSchema(); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}
	log.Println("✓ Database schema created")

	// Initialize worker pool
	workerPool := jobs.NewWorkerPool(cfg.WorkerPoolSize)
	defer workerPool.Stop()
	fmt.Printf("✓ Worker pool started with %d workers\n", cfg.WorkerPoolSize)

	// Initialize mart builder
	martBuilder := mart.NewMartBuilder(db)

	// Scheduled ingest and cleanup
	ingestor := etl.NewDataIngestor(cfg, repo)
	scheduler := etl.NewScheduler(cfg, ingestor, martBuilder, repo)
	if cfg.Scheduler.Enabled {
		scheduler.Start()
		defer scheduler.Stop()
		fmt.Printf("✓ Scheduler started (every %d minutes)\n", cfg.Scheduler.IntervalMinutes)
	}

	// Initialize API handler
	handler := api.NewHandler(db, repo, cfg, martBuilder, workerPool)

	// Setup router
	router := api.SetupRouter(handler)
	router.Use(api.CORSMiddleware())
	router.Use(api.LoggingMiddleware())

	// Create HTTP server. WriteTimeout must outlast the summary stream.
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.StreamTimeoutMinutes+1) * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		fmt.Printf("✓ API server listening on %s\n", addr)
		fmt.Println("\nAPI Endpoints:")
		fmt.Println("  GET  /health")
		fmt.Println("  GET  /api/filter-options")
		fmt.Println("  GET  /api/cotton-results")
		fmt.Println("  POST /api/cotton-mixing-summary")
		fmt.Println("  GET  /api/cotton-mixing-summary/stream")
		fmt.Println("  GET  /api/cotton-results/threshold")
		fmt.Println("  POST /api/export/xlsx")
		fmt.Println("  POST /api/export/pdf")
		fmt.Println("\nPress Ctrl+C to shutdown")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		fmt.Printf("Server forced to shutdown: %v\n", err)
	}

	fmt.Println("Server exited")
}
