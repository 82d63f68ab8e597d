package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spendwatch/internal/common"
	"spendwatch/internal/model"
	"spendwatch/internal/service"
)

// SaveTransactions saves multiple transactions, ignoring duplicates by hash.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, hash, date, merchant, category, amount, currency, payment_method
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i := range transactions {
		txn := &transactions[i]
		hash := txn.Hash
		if hash == "" {
			hash = txn.GenerateHash()
		}
		currency := txn.Currency
		if currency == "" {
			currency = model.DefaultCurrency
		}
		if _, err := stmt.ExecContext(ctx,
			txn.ID, hash, txn.Date, txn.Merchant, txn.Category,
			txn.Amount, currency, txn.PaymentMethod,
		); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// GetTransactions returns transactions matching the filter, oldest first.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT id, hash, date, merchant, category, amount, currency, payment_method
		FROM transactions WHERE 1=1`
	var args []any
	if filter.StartDate != nil {
		query += " AND date >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND date <= ?"
		args = append(args, *filter.EndDate)
	}
	query += " ORDER BY date ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		var txn model.Transaction
		var merchant, category, paymentMethod sql.NullString
		if err := rows.Scan(&txn.ID, &txn.Hash, &txn.Date, &merchant, &category,
			&txn.Amount, &txn.Currency, &paymentMethod); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Merchant = merchant.String
		txn.Category = category.String
		txn.PaymentMethod = paymentMethod.String
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

// GetTransactionByID returns a single transaction or common.ErrNotFound.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var txn model.Transaction
	var merchant, category, paymentMethod sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, hash, date, merchant, category, amount, currency, payment_method
		FROM transactions WHERE id = ?
	`, id).Scan(&txn.ID, &txn.Hash, &txn.Date, &merchant, &category,
		&txn.Amount, &txn.Currency, &paymentMethod)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction %s: %w", id, err)
	}

	txn.Merchant = merchant.String
	txn.Category = category.String
	txn.PaymentMethod = paymentMethod.String
	return &txn, nil
}
