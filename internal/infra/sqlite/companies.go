package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finpulse/internal/domain"
)

// GetOrCreateCompany returns the company with the given name, creating it
// with a fresh id when absent. Industry is only set on creation.
func (s *Store) GetOrCreateCompany(ctx context.Context, name, industry string) (*domain.Company, error) {
	company, err := s.companyByName(ctx, name)
	if err == nil {
		return company, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("GetOrCreateCompany: looking up %q: %w", name, err)
	}

	company = &domain.Company{
		ID:        uuid.New().String(),
		Name:      name,
		Industry:  industry,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO companies (id, name, industry, created_at) VALUES (?, ?, ?, ?)`,
		company.ID, company.Name, company.Industry, company.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("GetOrCreateCompany: inserting %q: %w", name, err)
	}
	return company, nil
}

func (s *Store) companyByName(ctx context.Context, name string) (*domain.Company, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, industry, created_at FROM companies WHERE name = ?`, name)

	var c domain.Company
	if err := row.Scan(&c.ID, &c.Name, &c.Industry, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
