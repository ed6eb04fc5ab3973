package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"finpulse/internal/analysis"
	"finpulse/internal/api/middleware"
	"finpulse/internal/domain"
	"finpulse/internal/fileparse"
	"finpulse/internal/infra/sqlite"
	"finpulse/internal/pipeline"
)

// maxUploadBytes bounds the multipart payload held in memory per request.
const maxUploadBytes = 32 << 20

// transactionPayload is the wire shape of a transaction. Dates travel as
// ISO strings, never as time.Time.
type transactionPayload struct {
	ID          string  `json:"id,omitempty"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category,omitempty"`
}

func toPayload(txs []domain.Transaction) []transactionPayload {
	out := make([]transactionPayload, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionPayload{
			ID:          tx.ID,
			Date:        tx.Date.Format(domain.DateLayout),
			Description: tx.Description,
			Amount:      tx.Amount,
			Category:    tx.Category,
		})
	}
	return out
}

// FileIngestor runs the full ingestion flow for one uploaded file.
type FileIngestor interface {
	IngestFile(ctx context.Context, filename string, data []byte) (*pipeline.IngestResult, error)
}

// UploadHandler handles POST /api/v1/upload-file.
type UploadHandler struct {
	ingestor FileIngestor
	log      zerolog.Logger
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(ingestor FileIngestor, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{ingestor: ingestor, log: log}
}

// UploadFile accepts a multipart "file" field, ingests it, and returns the
// parsed transactions.
func (h *UploadHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read upload body")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	filename := filepath.Base(header.Filename)
	result, err := h.ingestor.IngestFile(r.Context(), filename, data)
	if err != nil {
		switch {
		case errors.Is(err, fileparse.ErrUnsupportedFormat):
			middleware.WriteError(w, http.StatusBadRequest, "Unsupported file format")
		case errors.Is(err, pipeline.ErrUnmappableSchema):
			middleware.WriteError(w, http.StatusBadRequest, "Could not map Date/Amount columns")
		default:
			h.log.Error().Err(err).Str("filename", filename).Msg("Ingestion failed")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to process file")
		}
		return
	}

	h.log.Info().
		Str("filename", filename).
		Int("transactions", len(result.Transactions)).
		Int("dropped_rows", result.DroppedRows).
		Msg("File ingested")

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":      fmt.Sprintf("Successfully processed %d transactions", len(result.Transactions)),
		"transactions": toPayload(result.Transactions),
		"dropped_rows": result.DroppedRows,
	})
}

// TransactionStore is the persistence surface the transaction endpoints use.
type TransactionStore interface {
	ListTransactions(ctx context.Context, companyID string) ([]domain.Transaction, error)
	UpdateTransaction(ctx context.Context, id, description, category string) error
}

// TransactionsHandler handles transaction listing and edits.
type TransactionsHandler struct {
	store TransactionStore
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(store TransactionStore, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: store, log: log}
}

// ListTransactions handles GET /api/v1/transactions.
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.store.ListTransactions(r.Context(), "")
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toPayload(txs))
}

// UpdateTransaction handles PUT /api/v1/transactions/{id}.
func (h *TransactionsHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Description == "" && req.Category == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Nothing to update")
		return
	}
	category := ""
	if req.Category != "" {
		if !domain.IsValidCategory(req.Category) {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid category")
			return
		}
		category = domain.CanonicalCategory(req.Category)
	}

	err := h.store.UpdateTransaction(r.Context(), id, req.Description, category)
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to update transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"message": "Updated"})
}

// ReportGenerator assembles a full health report from transactions.
type ReportGenerator interface {
	Generate(ctx context.Context, industry, language string, txs []domain.Transaction) *analysis.Report
}

// ReportsHandler handles POST /api/v1/generate-report.
type ReportsHandler struct {
	reporter ReportGenerator
	log      zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(reporter ReportGenerator, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{reporter: reporter, log: log}
}

// GenerateReport computes metrics, score, alerts, and the narrative for the
// transactions supplied in the request body.
func (h *ReportsHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CompanyName  string               `json:"company_name"`
		Industry     string               `json:"industry"`
		Language     string               `json:"language"`
		Transactions []transactionPayload `json:"transactions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Language == "" {
		req.Language = "en"
	}

	txs := make([]domain.Transaction, 0, len(req.Transactions))
	dropped := 0
	for _, p := range req.Transactions {
		date, err := pipeline.ParseDate(p.Date)
		if err != nil {
			dropped++
			continue
		}
		txs = append(txs, domain.Transaction{
			Date:        date,
			Description: p.Description,
			Amount:      p.Amount,
			Category:    domain.CanonicalCategory(p.Category),
		})
	}
	if dropped > 0 {
		h.log.Warn().Int("dropped", dropped).Msg("Report request rows with unparseable dates dropped")
	}

	report := h.reporter.Generate(r.Context(), req.Industry, req.Language, txs)
	middleware.WriteJSON(w, http.StatusOK, report)
}

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// Root handles GET /.
func Root(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"service": "finpulse",
		"status":  "ok",
	})
}
