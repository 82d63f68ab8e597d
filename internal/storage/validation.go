package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"spendwatch/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidCandidate   = errors.New("invalid anomaly candidate")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if strings.TrimSpace(txn.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date for %s", ErrInvalidTransaction, txn.ID)
	}
	if txn.Amount <= 0 {
		return fmt.Errorf("%w: non-positive amount for %s", ErrInvalidTransaction, txn.ID)
	}
	return nil
}

// validateCandidate validates an anomaly candidate before persisting feedback.
func validateCandidate(c *model.AnomalyCandidate) error {
	if c == nil {
		return fmt.Errorf("%w: candidate", ErrNilParameter)
	}
	if strings.TrimSpace(c.TransactionID) == "" {
		return fmt.Errorf("%w: missing transaction ID", ErrInvalidCandidate)
	}
	if !c.Status.Terminal() {
		return fmt.Errorf("%w: status %q is not terminal", ErrInvalidCandidate, c.Status)
	}
	return nil
}
