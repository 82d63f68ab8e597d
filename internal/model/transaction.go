// Package model defines the core domain types shared across the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// DefaultCurrency is applied when the ingestion source carries no currency code.
const DefaultCurrency = "CNY"

// CategoryOther is the bucket for transactions without a category label.
const CategoryOther = "Other"

// Transaction represents a single validated financial transaction from any source.
// The analysis core only ever reads transactions; it never mutates them.
type Transaction struct {
	Date          time.Time
	ID            string
	Merchant      string // Cleaned merchant name, may be empty
	Category      string // Category label, CategoryOther when unknown
	Currency      string // ISO-like code, DefaultCurrency when unset
	PaymentMethod string
	Hash          string
	Amount        float64
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Merchant,
		t.Category)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Valid reports whether the transaction carries enough data to be analyzed.
// Amounts must be strictly positive; records that fail here are filtered by
// the analysis layer rather than aborting a whole batch.
func (t *Transaction) Valid() bool {
	return strings.TrimSpace(t.ID) != "" && !t.Date.IsZero() && t.Amount > 0
}

// CategoryOrOther returns the category label, falling back to the shared
// "Other" bucket for unlabeled transactions.
func (t *Transaction) CategoryOrOther() string {
	if strings.TrimSpace(t.Category) == "" {
		return CategoryOther
	}
	return t.Category
}
