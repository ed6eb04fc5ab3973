package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"finpulse/internal/analysis"
	"finpulse/internal/api/handlers"
	"finpulse/internal/api/middleware"
	"finpulse/internal/archive"
	"finpulse/internal/config"
	"finpulse/internal/infra/sqlite"
	"finpulse/internal/llm"
	"finpulse/internal/logger"
	"finpulse/internal/pipeline"
)

func main() {
	cfg := config.Load()
	log := logger.New()

	ctx := context.Background()

	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("Failed to open database")
	}
	defer store.Close()

	client, err := llm.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	if _, disabled := client.(llm.Disabled); disabled {
		log.Warn().Msg("No Gemini API key configured - AI features will use deterministic fallbacks")
	}

	var archiver pipeline.Archiver
	if cfg.GCSBucket != "" {
		gcs, err := archive.NewGCSArchiver(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create GCS archiver")
		}
		defer gcs.Close()
		archiver = gcs
	} else {
		log.Warn().Msg("No GCS bucket configured - upload archival disabled")
	}

	ingestor := pipeline.NewIngestor(store, client, archiver, log)
	reporter := analysis.NewReporter(client, log)

	uploadHandler := handlers.NewUploadHandler(ingestor, log)
	transactionsHandler := handlers.NewTransactionsHandler(store, log)
	reportsHandler := handlers.NewReportsHandler(reporter, log)

	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			middleware.WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		handlers.Root(w, r)
	})

	mux.HandleFunc("/health", handlers.Health)

	mux.HandleFunc("/api/v1/upload-file", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			uploadHandler.UploadFile(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/v1/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			transactionsHandler.ListTransactions(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/v1/transactions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			id := strings.TrimPrefix(r.URL.Path, "/api/v1/transactions/")
			if id == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
				return
			}
			transactionsHandler.UpdateTransaction(w, r, id)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/v1/generate-report", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			reportsHandler.GenerateReport(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
