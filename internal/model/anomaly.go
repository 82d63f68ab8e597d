package model

import "time"

// AnomalyStatus tracks the review state of a detected anomaly.
type AnomalyStatus string

const (
	// AnomalyStatusPending means the anomaly is awaiting user review.
	AnomalyStatusPending AnomalyStatus = "pending"
	// AnomalyStatusConfirmed means the user confirmed the spend as legitimate.
	AnomalyStatusConfirmed AnomalyStatus = "confirmed"
	// AnomalyStatusFraud means the user flagged the spend as fraudulent.
	AnomalyStatusFraud AnomalyStatus = "fraud"
)

// Terminal reports whether the status ends the review lifecycle.
func (s AnomalyStatus) Terminal() bool {
	return s == AnomalyStatusConfirmed || s == AnomalyStatusFraud
}

// AnomalyCandidate is a transaction whose amount deviates enough from its
// merchant or category history to warrant review. Candidates are rebuilt on
// every detection pass; only TransactionID carries identity across passes.
type AnomalyCandidate struct {
	Date          time.Time
	TransactionID string
	Merchant      string
	Reason        string
	Status        AnomalyStatus
	Amount        float64
	Score         float64
}

// AnomalyReport is the result of one detection pass, ordered most anomalous
// first.
type AnomalyReport struct {
	Items []AnomalyCandidate
	Count int
}
