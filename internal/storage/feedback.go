package storage

import (
	"context"
	"fmt"

	"spendwatch/internal/model"
)

// SaveAnomalyFeedback appends a reviewed candidate to the persistent history.
// Only terminal statuses are accepted; the review state machine owns the
// pending -> terminal transition.
func (s *SQLiteStorage) SaveAnomalyFeedback(ctx context.Context, candidate model.AnomalyCandidate) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCandidate(&candidate); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO anomaly_feedback (transaction_id, date, merchant, amount, score, reason, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, candidate.TransactionID, candidate.Date, candidate.Merchant,
		candidate.Amount, candidate.Score, candidate.Reason, string(candidate.Status))
	if err != nil {
		return fmt.Errorf("failed to save anomaly feedback for %s: %w", candidate.TransactionID, err)
	}
	return nil
}

// GetAnomalyHistory returns all reviewed candidates in review order.
func (s *SQLiteStorage) GetAnomalyHistory(ctx context.Context) ([]model.AnomalyCandidate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, date, merchant, amount, score, reason, status
		FROM anomaly_feedback ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query anomaly history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var history []model.AnomalyCandidate
	for rows.Next() {
		var c model.AnomalyCandidate
		var status string
		if err := rows.Scan(&c.TransactionID, &c.Date, &c.Merchant,
			&c.Amount, &c.Score, &c.Reason, &status); err != nil {
			return nil, fmt.Errorf("failed to scan anomaly feedback: %w", err)
		}
		c.Status = model.AnomalyStatus(status)
		history = append(history, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate anomaly history: %w", err)
	}

	return history, nil
}
