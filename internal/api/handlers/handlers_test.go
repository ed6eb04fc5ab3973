package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finpulse/internal/analysis"
	"finpulse/internal/domain"
	"finpulse/internal/fileparse"
	"finpulse/internal/infra/sqlite"
	"finpulse/internal/llm"
	"finpulse/internal/pipeline"
)

type stubIngestor struct {
	result   *pipeline.IngestResult
	err      error
	filename string
}

func (s *stubIngestor) IngestFile(_ context.Context, filename string, _ []byte) (*pipeline.IngestResult, error) {
	s.filename = filename
	return s.result, s.err
}

type stubStore struct {
	txs       []domain.Transaction
	listErr   error
	updateErr error

	updatedID       string
	updatedDesc     string
	updatedCategory string
}

func (s *stubStore) ListTransactions(context.Context, string) ([]domain.Transaction, error) {
	return s.txs, s.listErr
}

func (s *stubStore) UpdateTransaction(_ context.Context, id, description, category string) error {
	s.updatedID = id
	s.updatedDesc = description
	s.updatedCategory = category
	return s.updateErr
}

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse(domain.DateLayout, value)
	require.NoError(t, err)
	return d
}

func multipartUpload(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload-file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadFile(t *testing.T) {
	ingestor := &stubIngestor{result: &pipeline.IngestResult{
		CompanyID: "c1",
		Transactions: []domain.Transaction{{
			ID:          "t1",
			Date:        mustDate(t, "2024-01-05"),
			Description: "Invoice #1",
			Amount:      1000,
			Category:    "Revenue",
		}},
		DroppedRows: 2,
	}}
	h := NewUploadHandler(ingestor, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.UploadFile(rec, multipartUpload(t, "statement.csv", "Date,Amount\n2024-01-05,1000\n"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "statement.csv", ingestor.filename)

	var resp struct {
		Message      string               `json:"message"`
		Transactions []transactionPayload `json:"transactions"`
		DroppedRows  int                  `json:"dropped_rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Successfully processed 1 transactions", resp.Message)
	assert.Equal(t, 2, resp.DroppedRows)
	require.Len(t, resp.Transactions, 1)
	assert.Equal(t, "2024-01-05", resp.Transactions[0].Date)
	assert.Equal(t, 1000.0, resp.Transactions[0].Amount)
}

func TestUploadFile_MissingFileField(t *testing.T) {
	h := NewUploadHandler(&stubIngestor{}, zerolog.Nop())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload-file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	h.UploadFile(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadFile_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unsupported format", fmt.Errorf("IngestFile: %w", fileparse.ErrUnsupportedFormat), http.StatusBadRequest},
		{"unmappable schema", fmt.Errorf("IngestFile: %w", pipeline.ErrUnmappableSchema), http.StatusBadRequest},
		{"storage failure", fmt.Errorf("IngestFile: disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewUploadHandler(&stubIngestor{err: tt.err}, zerolog.Nop())
			rec := httptest.NewRecorder()
			h.UploadFile(rec, multipartUpload(t, "statement.csv", "data"))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestListTransactions(t *testing.T) {
	store := &stubStore{txs: []domain.Transaction{{
		ID:          "t1",
		Date:        mustDate(t, "2024-01-05"),
		Description: "Invoice #1",
		Amount:      1000,
		Category:    "Revenue",
	}}}
	h := NewTransactionsHandler(store, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ListTransactions(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []transactionPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "t1", resp[0].ID)
}

func TestListTransactions_EmptyIsArray(t *testing.T) {
	h := NewTransactionsHandler(&stubStore{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.ListTransactions(rec, httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestUpdateTransaction(t *testing.T) {
	store := &stubStore{}
	h := NewTransactionsHandler(store, zerolog.Nop())

	body := strings.NewReader(`{"category": "software"}`)
	rec := httptest.NewRecorder()
	h.UpdateTransaction(rec, httptest.NewRequest(http.MethodPut, "/api/v1/transactions/t1", body), "t1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t1", store.updatedID)
	// Category names are canonicalized before storage.
	assert.Equal(t, "Software", store.updatedCategory)
	assert.Contains(t, rec.Body.String(), "Updated")
}

func TestUpdateTransaction_InvalidCategory(t *testing.T) {
	h := NewTransactionsHandler(&stubStore{}, zerolog.Nop())

	body := strings.NewReader(`{"category": "Cryptocurrency"}`)
	rec := httptest.NewRecorder()
	h.UpdateTransaction(rec, httptest.NewRequest(http.MethodPut, "/api/v1/transactions/t1", body), "t1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTransaction_NotFound(t *testing.T) {
	h := NewTransactionsHandler(&stubStore{updateErr: sqlite.ErrNotFound}, zerolog.Nop())

	body := strings.NewReader(`{"description": "Adjusted"}`)
	rec := httptest.NewRecorder()
	h.UpdateTransaction(rec, httptest.NewRequest(http.MethodPut, "/api/v1/transactions/missing", body), "missing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTransaction_EmptyBody(t *testing.T) {
	h := NewTransactionsHandler(&stubStore{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.UpdateTransaction(rec, httptest.NewRequest(http.MethodPut, "/api/v1/transactions/t1", strings.NewReader(`{}`)), "t1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubReporter struct {
	report   *analysis.Report
	industry string
	language string
	txCount  int
}

func (s *stubReporter) Generate(_ context.Context, industry, language string, txs []domain.Transaction) *analysis.Report {
	s.industry = industry
	s.language = language
	s.txCount = len(txs)
	return s.report
}

func TestGenerateReport(t *testing.T) {
	reporter := &stubReporter{report: &analysis.Report{
		Score: 80,
		Metrics: analysis.Metrics{
			TotalRevenue:     1000,
			MonthlyTrend:     map[string]float64{"2024-01": 600},
			ComplianceAlerts: []string{},
		},
		AIAnalysis: llm.Insight{Summary: "Stable", RiskLevel: "Low"},
	}}
	h := NewReportsHandler(reporter, zerolog.Nop())

	body := strings.NewReader(`{
		"company_name": "Acme",
		"industry": "SaaS",
		"transactions": [
			{"date": "2024-01-05", "amount": 1000, "description": "Invoice"},
			{"date": "not-a-date", "amount": -50, "description": "Bad row"}
		]
	}`)
	rec := httptest.NewRecorder()
	h.GenerateReport(rec, httptest.NewRequest(http.MethodPost, "/api/v1/generate-report", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SaaS", reporter.industry)
	assert.Equal(t, "en", reporter.language)
	// The unparseable row is dropped before analysis.
	assert.Equal(t, 1, reporter.txCount)

	var resp struct {
		Score      int `json:"score"`
		AIAnalysis struct {
			RiskLevel string `json:"risk_level"`
		} `json:"ai_analysis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 80, resp.Score)
	assert.Equal(t, "Low", resp.AIAnalysis.RiskLevel)
}

func TestGenerateReport_InvalidBody(t *testing.T) {
	h := NewReportsHandler(&stubReporter{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GenerateReport(rec, httptest.NewRequest(http.MethodPost, "/api/v1/generate-report", strings.NewReader("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
