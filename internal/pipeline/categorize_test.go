package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"finpulse/internal/domain"
	"finpulse/internal/llm"
)

type mockCategorizer struct {
	calls    int
	received []string
	result   map[string]string
	err      error
}

func (m *mockCategorizer) CategorizeBatch(ctx context.Context, descriptions []string) (map[string]string, error) {
	m.calls++
	m.received = descriptions
	return m.result, m.err
}

func TestCategorizeTransactions_AssignsFromBatch(t *testing.T) {
	txs := []domain.Transaction{
		{Description: "AWS subscription"},
		{Description: "Office rent"},
		{Description: "AWS subscription"}, // duplicate: one entry in the batch
	}
	cat := &mockCategorizer{result: map[string]string{
		"AWS subscription": "Software",
		"Office rent":      "Rent",
	}}

	CategorizeTransactions(context.Background(), cat, txs, zerolog.Nop())

	assert.Equal(t, 1, cat.calls)
	assert.Equal(t, []string{"AWS subscription", "Office rent"}, cat.received)
	assert.Equal(t, "Software", txs[0].Category)
	assert.Equal(t, "Rent", txs[1].Category)
	assert.Equal(t, "Software", txs[2].Category)
}

func TestCategorizeTransactions_UnavailableFallsBackToUncategorized(t *testing.T) {
	txs := []domain.Transaction{{Description: "Coffee"}, {Description: "Flight"}}
	cat := &mockCategorizer{err: llm.ErrUnavailable}

	CategorizeTransactions(context.Background(), cat, txs, zerolog.Nop())

	for _, tx := range txs {
		assert.Equal(t, domain.CategoryUncategorized, tx.Category)
	}
}

func TestCategorizeTransactions_ErrorFallsBackToUncategorized(t *testing.T) {
	txs := []domain.Transaction{{Description: "Coffee"}}
	cat := &mockCategorizer{err: errors.New("model timeout")}

	CategorizeTransactions(context.Background(), cat, txs, zerolog.Nop())

	assert.Equal(t, domain.CategoryUncategorized, txs[0].Category)
}

func TestCategorizeTransactions_RejectsOutOfTaxonomyAnswers(t *testing.T) {
	txs := []domain.Transaction{{Description: "Coffee"}}
	cat := &mockCategorizer{result: map[string]string{"Coffee": "Beverages"}}

	CategorizeTransactions(context.Background(), cat, txs, zerolog.Nop())

	assert.Equal(t, domain.CategoryUncategorized, txs[0].Category)
}

func TestCategorizeTransactions_SkipsAlreadyCategorized(t *testing.T) {
	txs := []domain.Transaction{
		{Description: "Payroll run", Category: "Payroll"},
		{Description: "Coffee"},
	}
	cat := &mockCategorizer{result: map[string]string{"Coffee": "Travel"}}

	CategorizeTransactions(context.Background(), cat, txs, zerolog.Nop())

	assert.Equal(t, []string{"Coffee"}, cat.received)
	assert.Equal(t, "Payroll", txs[0].Category)
	assert.Equal(t, "Travel", txs[1].Category)
}

func TestCategorizeTransactions_NoWorkNoCall(t *testing.T) {
	txs := []domain.Transaction{{Description: "Payroll run", Category: "Payroll"}}
	cat := &mockCategorizer{}

	CategorizeTransactions(context.Background(), cat, txs, zerolog.Nop())

	assert.Equal(t, 0, cat.calls)
}
