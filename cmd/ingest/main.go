package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"finpulse/internal/config"
	"finpulse/internal/infra/sqlite"
	"finpulse/internal/llm"
	"finpulse/internal/logger"
	"finpulse/internal/pipeline"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	file := flag.String("file", "", "Path to a statement file (.csv, .xlsx, .pdf, .docx, or image)")
	flag.Parse()

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	cfg := config.Load()

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	ctx = logger.WithContext(ctx, log)

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read input file")
	}

	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("Failed to open database")
	}
	defer store.Close()

	client, err := llm.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	log.Info().Str("file", *file).Msg("Starting ingestion")

	ingestor := pipeline.NewIngestor(store, client, nil, log)
	result, err := ingestor.IngestFile(ctx, filepath.Base(*file), data)
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	fmt.Printf("Ingestion completed: %d transactions, %d rows dropped.\n",
		len(result.Transactions), result.DroppedRows)
}
