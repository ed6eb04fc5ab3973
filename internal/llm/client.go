package llm

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by every call when the extraction capability is
// absent or misconfigured. Callers are expected to recover locally with
// their documented fallback; it is never a fatal condition.
var ErrUnavailable = errors.New("llm: extraction capability unavailable")

// ColumnMapping is the model's best-effort mapping from raw headers to
// canonical fields. Values are column names from the input table; an empty
// string means the model offered nothing for that field.
type ColumnMapping struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Credit      string `json:"credit"`
	Debit       string `json:"debit"`
}

// ExtractedTransaction is one record as the model reports it. It is
// unvalidated: the date may not parse, the category may be outside the
// taxonomy. The pipeline normalizes it before anything is committed.
type ExtractedTransaction struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
}

// CategoryMapping pairs a transaction description with an assigned category.
type CategoryMapping struct {
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Insight is the narrative section of a health report.
type Insight struct {
	Summary   string   `json:"summary"`
	Actions   []string `json:"actions"`
	RiskLevel string   `json:"risk_level"`
}

// InsightRequest carries the metric summary the narrative is built from.
type InsightRequest struct {
	Industry     string
	Language     string
	TotalRevenue float64
	RunwayMonths float64
	TrendJSON    string
}

// Client is the external extraction capability. Every method is a single
// best-effort round trip with no retry; implementations must never panic.
type Client interface {
	// MapColumns asks the model to map raw table headers onto canonical
	// fields, given one representative row for context.
	MapColumns(ctx context.Context, columns []string, sampleRow map[string]string) (*ColumnMapping, error)

	// ExtractFromText pulls transactions out of free-form document text.
	ExtractFromText(ctx context.Context, text string) ([]ExtractedTransaction, error)

	// ExtractFromImage pulls the (single) transaction out of a receipt image.
	ExtractFromImage(ctx context.Context, data []byte, mimeType string) ([]ExtractedTransaction, error)

	// CategorizeBatch assigns a taxonomy category to each description in one
	// call. The returned map is keyed by description.
	CategorizeBatch(ctx context.Context, descriptions []string) (map[string]string, error)

	// GenerateInsight produces the CFO-style narrative for a report.
	GenerateInsight(ctx context.Context, req InsightRequest) (*Insight, error)
}

// NewClient returns a Gemini-backed client, or a Disabled client when no
// API key is configured. Absence of credentials is a normal state, not an
// error: the Disabled client reports ErrUnavailable from every call.
func NewClient(ctx context.Context, apiKey, model string) (Client, error) {
	if apiKey == "" {
		return Disabled{}, nil
	}
	return NewGemini(ctx, apiKey, model)
}

// Disabled is the typed "capability absent" variant of Client.
type Disabled struct{}

func (Disabled) MapColumns(context.Context, []string, map[string]string) (*ColumnMapping, error) {
	return nil, ErrUnavailable
}

func (Disabled) ExtractFromText(context.Context, string) ([]ExtractedTransaction, error) {
	return nil, ErrUnavailable
}

func (Disabled) ExtractFromImage(context.Context, []byte, string) ([]ExtractedTransaction, error) {
	return nil, ErrUnavailable
}

func (Disabled) CategorizeBatch(context.Context, []string) (map[string]string, error) {
	return nil, ErrUnavailable
}

func (Disabled) GenerateInsight(context.Context, InsightRequest) (*Insight, error) {
	return nil, ErrUnavailable
}
