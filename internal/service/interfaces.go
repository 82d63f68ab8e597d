// Package service defines the contracts between the analysis core's
// collaborators. The core itself never touches storage; the CLI hydrates a
// session from it and persists mutations back through these interfaces.
package service

import (
	"context"
	"time"

	"spendwatch/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
}

// Storage is the persistence collaborator: transactions, the trusted
// merchant whitelist, and the anomaly review history survive process
// restarts through it. The analysis core treats all of this as opaque
// load/save operations owned by the caller.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)

	// Trusted merchant whitelist
	AddTrustedMerchant(ctx context.Context, name string) error
	RemoveTrustedMerchant(ctx context.Context, name string) error
	GetTrustedMerchants(ctx context.Context) ([]string, error)

	// Anomaly review history
	SaveAnomalyFeedback(ctx context.Context, candidate model.AnomalyCandidate) error
	GetAnomalyHistory(ctx context.Context) ([]model.AnomalyCandidate, error)

	Close() error
}
