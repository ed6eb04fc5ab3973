package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"finpulse/internal/fileparse"
	"finpulse/internal/llm"
)

// ErrUnmappableSchema signals tabular input whose required fields could not
// be resolved even after delegation. The ingestion is rejected as a whole;
// there is no partial result.
var ErrUnmappableSchema = errors.New("pipeline: could not map date/amount columns")

// Keyword rule tables for fuzzy header matching. Ordered, first match wins,
// substring semantics against the lower-cased header.
var (
	dateKeywords        = []string{"date", "time"}
	descriptionKeywords = []string{"details", "desc", "memo"}
	amountKeywords      = []string{"amt", "amount"}
	creditKeywords      = []string{"deposit", "credit", "cr"}
	debitKeywords       = []string{"withdrawal", "debit", "dr"}
)

// ColumnMapper is the delegation seam for schema resolution. It is invoked
// only when the deterministic heuristics leave date or amount unresolved.
type ColumnMapper interface {
	MapColumns(ctx context.Context, columns []string, sampleRow map[string]string) (*llm.ColumnMapping, error)
}

// Resolution maps canonical fields onto column indexes of a Table. A value
// of -1 means the field was not resolved. Amount is satisfied either by a
// direct column or by a credit/debit pair, never both.
type Resolution struct {
	Date        int
	Description int
	Amount      int
	Credit      int
	Debit       int
	Category    int
}

func newResolution() *Resolution {
	return &Resolution{Date: -1, Description: -1, Amount: -1, Credit: -1, Debit: -1, Category: -1}
}

// HasAmount reports whether the amount can be derived for a row.
func (r *Resolution) HasAmount() bool {
	return r.Amount >= 0 || (r.Credit >= 0 && r.Debit >= 0)
}

// ResolveSchema produces a best-effort mapping from unknown column headers
// to the canonical fields. Resolution order per field, first success wins:
// exact lower-cased match, fuzzy keyword match (with credit/debit pair
// derivation for amount), then one delegation to the column mapper. Date
// and amount are required; failure to resolve both is ErrUnmappableSchema.
func ResolveSchema(ctx context.Context, table *fileparse.Table, mapper ColumnMapper, log zerolog.Logger) (*Resolution, error) {
	res := newResolution()

	lower := make([]string, len(table.Headers))
	for i, h := range table.Headers {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	// 1. Exact lower-cased header match.
	res.Date = indexOfExact(lower, "date")
	res.Description = indexOfExact(lower, "description")
	res.Amount = indexOfExact(lower, "amount")
	res.Category = indexOfExact(lower, "category")

	// 2. Fuzzy substring match against the keyword tables.
	if res.Date < 0 {
		res.Date = indexOfKeyword(lower, dateKeywords)
	}
	if res.Description < 0 {
		res.Description = indexOfKeyword(lower, descriptionKeywords)
	}
	if res.Amount < 0 {
		res.Amount = indexOfKeyword(lower, amountKeywords)
	}
	if res.Amount < 0 {
		credit := indexOfKeyword(lower, creditKeywords)
		debit := indexOfKeyword(lower, debitKeywords)
		if credit >= 0 && debit >= 0 {
			res.Credit = credit
			res.Debit = debit
		}
	}

	if res.Date >= 0 && res.HasAmount() {
		return res, nil
	}

	// 3. Delegate to the extraction capability with one representative row.
	if mapper != nil {
		applyDelegatedMapping(ctx, table, res, mapper, log)
	}

	// 4. Date and amount are required; everything else has a default.
	if res.Date < 0 || !res.HasAmount() {
		return nil, ErrUnmappableSchema
	}
	return res, nil
}

// applyDelegatedMapping fills still-unresolved fields from the model's
// column mapping. Capability unavailability or a failed call degrades to an
// empty mapping; the caller decides whether that is fatal.
func applyDelegatedMapping(ctx context.Context, table *fileparse.Table, res *Resolution, mapper ColumnMapper, log zerolog.Logger) {
	sampleRow := make(map[string]string, len(table.Headers))
	if len(table.Rows) > 0 {
		for i, h := range table.Headers {
			sampleRow[h] = table.Rows[0][i]
		}
	}

	mapping, err := mapper.MapColumns(ctx, table.Headers, sampleRow)
	if err != nil {
		if errors.Is(err, llm.ErrUnavailable) {
			log.Debug().Msg("Column mapping delegation skipped: capability unavailable")
		} else {
			log.Warn().Err(err).Msg("Column mapping delegation failed")
		}
		return
	}

	if res.Date < 0 {
		res.Date = indexOfFold(table.Headers, mapping.Date)
	}
	if res.Description < 0 {
		res.Description = indexOfFold(table.Headers, mapping.Description)
	}
	if res.Amount < 0 {
		res.Amount = indexOfFold(table.Headers, mapping.Amount)
	}
	if res.Amount < 0 {
		credit := indexOfFold(table.Headers, mapping.Credit)
		debit := indexOfFold(table.Headers, mapping.Debit)
		if credit >= 0 && debit >= 0 {
			res.Credit = credit
			res.Debit = debit
		}
	}
}

func indexOfExact(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

func indexOfKeyword(headers []string, keywords []string) int {
	for i, h := range headers {
		for _, kw := range keywords {
			if strings.Contains(h, kw) {
				return i
			}
		}
	}
	return -1
}

// indexOfFold finds a header by case-insensitive comparison. Used for
// delegated mappings, which may not preserve the original casing.
func indexOfFold(headers []string, name string) int {
	if strings.TrimSpace(name) == "" {
		return -1
	}
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}
