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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"docextract/internal/blockgraph"
	"docextract/internal/config"
	"docextract/internal/handler"
	"docextract/internal/router"
	"docextract/internal/service"
	s3storage "docextract/internal/storage/s3"
	"docextract/internal/textract"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: loading .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	formText, err := blockgraph.ParseFormTextMode(cfg.Textract.FormTextMode)
	if err != nil {
		return fmt.Errorf("invalid textract config: %w", err)
	}

	// Initialize AWS clients
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}
	analyzer, err := textract.NewTextractClient(&cfg.Textract)
	if err != nil {
		return fmt.Errorf("failed to initialize Textract client: %w", err)
	}

	// Initialize services
	poller := service.NewJobPoller(analyzer, s3Client, service.PollConfig{
		Interval:      cfg.Poller.Interval,
		MaxInterval:   cfg.Poller.MaxInterval,
		BackoffFactor: cfg.Poller.BackoffFactor,
		MaxWait:       cfg.Poller.MaxWait,
	})
	extractionSvc := service.NewExtractionService(analyzer, s3Client, poller, blockgraph.NewParser(formText), service.ExtractionConfig{
		DefaultBucket:    cfg.S3.Bucket,
		KeyPrefix:        cfg.S3.KeyPrefix,
		MaxDocumentBytes: cfg.S3.MaxFileSizeBytes(),
		SyncFeatures:     cfg.Textract.SyncFeatureTypes(),
		AsyncFeatures:    cfg.Textract.AsyncFeatureTypes(),
	})

	// Initialize handlers
	extractionH := handler.NewExtractionHandler(extractionSvc)
	healthH := handler.NewHealthHandler()

	r := router.Setup(extractionH, healthH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-sigCh:
		log.Printf("Received signal %v, shutting down...", sig)
	}

	healthH.SetDraining()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Println("Server shutdown complete")
	return nil
}
