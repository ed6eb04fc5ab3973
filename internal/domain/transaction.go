package domain

import (
	"time"
)

// Transaction is the canonical unit every ingestion path normalizes into.
// Amount carries a fixed sign convention across the whole pipeline:
// positive = inflow/revenue, negative = outflow/expense. Zero-amount rows
// are dropped during ingestion and never reach storage or analysis.
type Transaction struct {
	ID          string
	CompanyID   string
	Date        time.Time
	Description string
	Amount      float64
	Category    string
}

// Company scopes transactions. Each ingestion replaces all prior
// transactions for the company (full-batch overwrite, not a merge).
type Company struct {
	ID        string
	Name      string
	Industry  string
	CreatedAt time.Time
}

// DateLayout is the wire format for transaction dates.
const DateLayout = "2006-01-02"
