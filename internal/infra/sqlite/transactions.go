package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finpulse/internal/domain"
)

func parseStoredDate(value string) (time.Time, error) {
	d, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parseStoredDate: %w", err)
	}
	return d, nil
}

// ReplaceTransactions atomically swaps a company's transaction set for the
// given batch. Either the whole replacement lands or nothing changes; a
// re-upload therefore never duplicates rows. An empty batch clears the set.
func (s *Store) ReplaceTransactions(ctx context.Context, companyID string, txs []domain.Transaction) error {
	dbtx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ReplaceTransactions: beginning transaction: %w", err)
	}
	defer dbtx.Rollback()

	if _, err := dbtx.ExecContext(ctx,
		`DELETE FROM transactions WHERE company_id = ?`, companyID); err != nil {
		return fmt.Errorf("ReplaceTransactions: clearing previous rows: %w", err)
	}

	stmt, err := dbtx.PrepareContext(ctx,
		`INSERT INTO transactions (id, company_id, date, description, amount, category)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("ReplaceTransactions: preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range txs {
		tx := &txs[i]
		if tx.ID == "" {
			tx.ID = uuid.New().String()
		}
		tx.CompanyID = companyID
		if _, err := stmt.ExecContext(ctx,
			tx.ID, companyID, tx.Date.Format(domain.DateLayout),
			tx.Description, tx.Amount, tx.Category); err != nil {
			return fmt.Errorf("ReplaceTransactions: inserting row %d: %w", i, err)
		}
	}

	if err := dbtx.Commit(); err != nil {
		return fmt.Errorf("ReplaceTransactions: committing: %w", err)
	}
	return nil
}

// ListTransactions returns every stored transaction, oldest first. An empty
// companyID lists across all companies.
func (s *Store) ListTransactions(ctx context.Context, companyID string) ([]domain.Transaction, error) {
	query := `SELECT id, company_id, date, description, amount, category
		FROM transactions`
	args := []any{}
	if companyID != "" {
		query += ` WHERE company_id = ?`
		args = append(args, companyID)
	}
	query += ` ORDER BY date ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: querying: %w", err)
	}
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		var tx domain.Transaction
		var date string
		if err := rows.Scan(&tx.ID, &tx.CompanyID, &date, &tx.Description, &tx.Amount, &tx.Category); err != nil {
			return nil, fmt.Errorf("ListTransactions: scanning row: %w", err)
		}
		tx.Date, err = parseStoredDate(date)
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: row %s: %w", tx.ID, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListTransactions: iterating: %w", err)
	}
	return txs, nil
}

// UpdateTransaction overwrites the description and category of a single
// transaction. An empty argument leaves the stored value unchanged.
func (s *Store) UpdateTransaction(ctx context.Context, id, description, category string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions
		 SET description = COALESCE(NULLIF(?, ''), description),
		     category    = COALESCE(NULLIF(?, ''), category)
		 WHERE id = ?`,
		description, category, id)
	if err != nil {
		return fmt.Errorf("UpdateTransaction: updating %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateTransaction: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
