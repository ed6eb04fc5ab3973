package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"finpulse/internal/domain"
	"finpulse/internal/llm"
)

// Extractor is the delegation seam for non-tabular inputs.
type Extractor interface {
	ExtractFromText(ctx context.Context, text string) ([]llm.ExtractedTransaction, error)
	ExtractFromImage(ctx context.Context, data []byte, mimeType string) ([]llm.ExtractedTransaction, error)
}

// DocumentExtractor adapts the extraction capability's best-effort records
// into canonical transactions. A single call per document, no retry: if the
// capability is unavailable or its output is malformed, the result is an
// empty list and ingestion proceeds with zero transactions.
type DocumentExtractor struct {
	llm Extractor
	log zerolog.Logger
}

// NewDocumentExtractor creates a document/image extraction adapter.
func NewDocumentExtractor(extractor Extractor, log zerolog.Logger) *DocumentExtractor {
	return &DocumentExtractor{llm: extractor, log: log}
}

// FromText extracts transactions from document text, truncated to a bounded
// prefix to respect capability limits.
func (d *DocumentExtractor) FromText(ctx context.Context, text string) []domain.Transaction {
	if d.llm == nil {
		return nil
	}
	if len(text) > maxDocumentChars {
		text = text[:maxDocumentChars]
	}

	records, err := d.llm.ExtractFromText(ctx, text)
	if err != nil {
		d.logExtractionError(err, "document")
		return nil
	}
	return d.normalize(records)
}

// FromImage extracts the transaction from a single receipt image.
func (d *DocumentExtractor) FromImage(ctx context.Context, data []byte, mimeType string) []domain.Transaction {
	if d.llm == nil {
		return nil
	}

	records, err := d.llm.ExtractFromImage(ctx, data, mimeType)
	if err != nil {
		d.logExtractionError(err, "image")
		return nil
	}
	return d.normalize(records)
}

// normalize validates model records into canonical transactions: zero
// amounts and unparseable dates are dropped, descriptions default to
// "Unknown", categories outside the taxonomy degrade to "Uncategorized".
func (d *DocumentExtractor) normalize(records []llm.ExtractedTransaction) []domain.Transaction {
	txs := make([]domain.Transaction, 0, len(records))
	for _, rec := range records {
		if rec.Amount == 0 {
			continue
		}
		date, err := ParseDate(rec.Date)
		if err != nil {
			d.log.Debug().Str("date", rec.Date).Msg("Dropping extracted record with unparseable date")
			continue
		}

		description := strings.TrimSpace(rec.Description)
		if description == "" {
			description = DefaultDescription
		}

		txs = append(txs, domain.Transaction{
			Date:        date,
			Description: description,
			Amount:      rec.Amount,
			Category:    domain.CanonicalCategory(rec.Category),
		})
	}
	return txs
}

func (d *DocumentExtractor) logExtractionError(err error, kind string) {
	if errors.Is(err, llm.ErrUnavailable) {
		d.log.Debug().Str("input", kind).Msg("Extraction skipped: capability unavailable")
		return
	}
	d.log.Warn().Err(err).Str("input", kind).Msg("Extraction failed, proceeding with zero transactions")
}
