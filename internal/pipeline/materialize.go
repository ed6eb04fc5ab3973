package pipeline

import (
	"strings"

	"finpulse/internal/domain"
	"finpulse/internal/fileparse"
)

// MaterializeRows converts resolved table rows into canonical transactions.
// Zero-amount rows are non-events (balance lines, headers repeated mid-file)
// and are skipped silently. Rows whose date fails to parse are dropped
// individually and counted; a bad row never aborts the batch. Description
// defaults to "Unknown". When a category column was resolved the cell value
// is kept as-is, with blanks degrading to "Uncategorized"; without one the
// category is left empty for the categorizer to fill.
func MaterializeRows(table *fileparse.Table, res *Resolution) (txs []domain.Transaction, dropped int) {
	txs = make([]domain.Transaction, 0, len(table.Rows))

	for _, row := range table.Rows {
		var amount float64
		if res.Amount >= 0 {
			amount = NormalizeCurrency(row[res.Amount])
		} else {
			amount = NormalizeCurrency(row[res.Credit]) - NormalizeCurrency(row[res.Debit])
		}
		if amount == 0 {
			continue
		}

		date, err := ParseDate(row[res.Date])
		if err != nil {
			dropped++
			continue
		}

		description := DefaultDescription
		if res.Description >= 0 {
			if d := strings.TrimSpace(row[res.Description]); d != "" {
				description = d
			}
		}

		category := ""
		if res.Category >= 0 {
			category = strings.TrimSpace(row[res.Category])
			if category == "" {
				category = domain.CategoryUncategorized
			}
		}

		txs = append(txs, domain.Transaction{
			Date:        date,
			Description: description,
			Amount:      amount,
			Category:    category,
		})
	}

	return txs, dropped
}
