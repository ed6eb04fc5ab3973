package pipeline

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"finpulse/internal/domain"
	"finpulse/internal/llm"
)

// BatchCategorizer is the delegation seam for category assignment.
type BatchCategorizer interface {
	CategorizeBatch(ctx context.Context, descriptions []string) (map[string]string, error)
}

// CategorizeTransactions assigns a taxonomy category to every transaction
// that lacks one, delegating the whole batch in a single call. The
// operation is total from the caller's perspective: capability
// unavailability, errors, and out-of-taxonomy answers all degrade to
// "Uncategorized". Transactions that already carry a category are left
// untouched.
func CategorizeTransactions(ctx context.Context, cat BatchCategorizer, txs []domain.Transaction, log zerolog.Logger) {
	// Deduplicated, order-preserving list of descriptions still needing a
	// category.
	seen := make(map[string]bool)
	var descriptions []string
	for _, tx := range txs {
		if tx.Category != "" || seen[tx.Description] {
			continue
		}
		seen[tx.Description] = true
		descriptions = append(descriptions, tx.Description)
	}
	if len(descriptions) == 0 {
		return
	}

	assigned := map[string]string{}
	if cat != nil {
		result, err := cat.CategorizeBatch(ctx, descriptions)
		switch {
		case errors.Is(err, llm.ErrUnavailable):
			log.Debug().Msg("Categorization skipped: capability unavailable")
		case err != nil:
			log.Warn().Err(err).Msg("Batch categorization failed, falling back to Uncategorized")
		default:
			assigned = result
		}
	}

	for i := range txs {
		if txs[i].Category != "" {
			continue
		}
		category := assigned[txs[i].Description]
		if !domain.IsValidCategory(category) {
			category = domain.CategoryUncategorized
		}
		txs[i].Category = domain.CanonicalCategory(category)
	}
}
