package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"spendwatch/internal/common"
	"spendwatch/internal/model"
	"spendwatch/internal/service"
	"spendwatch/internal/session"
	"spendwatch/internal/storage"
)

// openStorage opens the configured SQLite database and runs migrations.
func openStorage() (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "spendwatch", "spendwatch.db")
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("could not open the database at %s", dbPath), err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, common.NewUserError(fmt.Sprintf("could not migrate the database at %s", dbPath), err)
	}

	slog.Debug("Opened database", "path", store.Path())
	return store, nil
}

// hydrateSession builds a review session from persisted state: the trusted
// merchant whitelist and the review history. The session itself stays
// in-memory and single-threaded; storage is only its load/save collaborator.
func hydrateSession(ctx context.Context, store service.Storage) (*session.Session, error) {
	sess := session.New()

	merchants, err := store.GetTrustedMerchants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load trusted merchants: %w", err)
	}
	for _, name := range merchants {
		sess.AddTrustedMerchant(name)
	}

	history, err := store.GetAnomalyHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load anomaly history: %w", err)
	}
	sess.SeedHistory(history)

	return sess, nil
}

// loadTransactions fetches the full transaction snapshot for a detection or
// reporting pass.
func loadTransactions(ctx context.Context, store service.Storage) ([]model.Transaction, error) {
	transactions, err := store.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return transactions, nil
}
