package storage

import (
	"context"
	"fmt"

	"spendwatch/internal/analysis"
)

// AddTrustedMerchant adds a merchant to the persistent whitelist. Adds are
// idempotent; the normalized name is the key, the display name is kept for
// output.
func (s *SQLiteStorage) AddTrustedMerchant(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO trusted_merchants (name, display_name) VALUES (?, ?)
	`, analysis.NormalizeMerchant(name), name)
	if err != nil {
		return fmt.Errorf("failed to add trusted merchant %s: %w", name, err)
	}
	return nil
}

// RemoveTrustedMerchant removes a merchant from the whitelist; removing an
// absent entry is a no-op.
func (s *SQLiteStorage) RemoveTrustedMerchant(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM trusted_merchants WHERE name = ?
	`, analysis.NormalizeMerchant(name))
	if err != nil {
		return fmt.Errorf("failed to remove trusted merchant %s: %w", name, err)
	}
	return nil
}

// GetTrustedMerchants returns the whitelist display names, sorted.
func (s *SQLiteStorage) GetTrustedMerchants(ctx context.Context) ([]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT display_name FROM trusted_merchants ORDER BY display_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query trusted merchants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var merchants []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan trusted merchant: %w", err)
		}
		merchants = append(merchants, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trusted merchants: %w", err)
	}

	return merchants, nil
}
