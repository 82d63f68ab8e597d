// Package session tracks per-session anomaly review state and the trusted
// merchant whitelist. One Session belongs to exactly one user session and is
// confined to that session's single logical thread of control; hosts running
// multiple sessions isolate them through a Manager.
package session

import (
	"errors"
	"fmt"
	"sort"

	"spendwatch/internal/analysis"
	"spendwatch/internal/model"
)

// Review messages shown when there is nothing to surface.
const (
	MessageNoTransactions = "No transaction data yet - import some bills to get started"
	MessageNoAnomalies    = "No anomalies detected in your recent spending"
)

// ErrInvalidTransition is returned when feedback targets a candidate that is
// not currently pending review.
var ErrInvalidTransition = errors.New("invalid anomaly state transition")

// Session holds the anomaly review state machine for a single user session:
// the active (pending) candidates, the reviewed history, and the trusted
// merchant whitelist the detector honors.
type Session struct {
	trusted map[string]string // normalized name -> display name
	message string
	active  []model.AnomalyCandidate
	history []model.AnomalyCandidate
}

// New creates an empty session.
func New() *Session {
	return &Session{trusted: make(map[string]string)}
}

// Refresh recomputes anomaly detection for the session. An empty snapshot
// sets the "no data" message; otherwise the detector runs with the current
// whitelist and the result replaces the active list.
func (s *Session) Refresh(detector *analysis.Detector, transactions []model.Transaction) {
	if len(transactions) == 0 {
		s.UpdateState([]model.AnomalyCandidate{}, MessageNoTransactions)
		return
	}
	report := detector.ComputeAnomalyReport(transactions, s.TrustedMerchants())
	s.Sync(report)
}

// Sync replaces the active list with the report's items, excluding any
// transaction already reviewed. Re-detection must never resurface an anomaly
// the user has already judged.
func (s *Session) Sync(report model.AnomalyReport) {
	reviewed := make(map[string]struct{}, len(s.history))
	for i := range s.history {
		reviewed[s.history[i].TransactionID] = struct{}{}
	}

	active := make([]model.AnomalyCandidate, 0, len(report.Items))
	for _, item := range report.Items {
		if _, ok := reviewed[item.TransactionID]; ok {
			continue
		}
		active = append(active, item)
	}

	s.active = active
	s.message = ""
	if len(active) == 0 {
		s.message = MessageNoAnomalies
	}
}

// RecordFeedback moves a candidate into history with a terminal status. The
// candidate must be pending in the active list; removal from the active list
// is the caller's explicit follow-up so both mutations stay independently
// observable.
func (s *Session) RecordFeedback(candidate model.AnomalyCandidate, decision model.AnomalyStatus) error {
	if !decision.Terminal() {
		return fmt.Errorf("%w: decision %q is not terminal", ErrInvalidTransition, decision)
	}

	found := false
	for i := range s.active {
		if s.active[i].TransactionID == candidate.TransactionID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: transaction %s is not pending review", ErrInvalidTransition, candidate.TransactionID)
	}

	reviewed := candidate
	reviewed.Status = decision
	s.history = append(s.history, reviewed)
	return nil
}

// DropActive removes one candidate from the active list by transaction ID,
// the follow-up step after recording feedback.
func (s *Session) DropActive(transactionID string) {
	remaining := make([]model.AnomalyCandidate, 0, len(s.active))
	for _, item := range s.active {
		if item.TransactionID != transactionID {
			remaining = append(remaining, item)
		}
	}
	s.active = remaining
}

// UpdateState replaces the active list and message wholesale. Last writer
// wins; history is untouched.
func (s *Session) UpdateState(active []model.AnomalyCandidate, message string) {
	s.active = active
	s.message = message
}

// ActiveAnomalies returns a copy of the pending candidates.
func (s *Session) ActiveAnomalies() []model.AnomalyCandidate {
	out := make([]model.AnomalyCandidate, len(s.active))
	copy(out, s.active)
	return out
}

// AnomalyHistory returns a copy of the reviewed candidates in append order.
func (s *Session) AnomalyHistory() []model.AnomalyCandidate {
	out := make([]model.AnomalyCandidate, len(s.history))
	copy(out, s.history)
	return out
}

// Message returns the user-facing status string for an empty active list.
func (s *Session) Message() string {
	return s.message
}

// SeedHistory preloads reviewed candidates, used when hydrating a session
// from the storage collaborator.
func (s *Session) SeedHistory(reviewed []model.AnomalyCandidate) {
	s.history = append(s.history, reviewed...)
}

// AddTrustedMerchant adds a merchant to the whitelist. Matching is
// case-insensitive and trimmed; duplicate adds are no-ops.
func (s *Session) AddTrustedMerchant(name string) {
	key := analysis.NormalizeMerchant(name)
	if key == "" {
		return
	}
	if _, ok := s.trusted[key]; !ok {
		s.trusted[key] = name
	}
}

// RemoveTrustedMerchant removes a merchant from the whitelist; removing an
// absent entry is a no-op.
func (s *Session) RemoveTrustedMerchant(name string) {
	delete(s.trusted, analysis.NormalizeMerchant(name))
}

// IsTrusted reports whitelist membership.
func (s *Session) IsTrusted(name string) bool {
	_, ok := s.trusted[analysis.NormalizeMerchant(name)]
	return ok
}

// TrustedMerchants returns the whitelist display names, sorted for
// deterministic output.
func (s *Session) TrustedMerchants() []string {
	out := make([]string, 0, len(s.trusted))
	for _, display := range s.trusted {
		out = append(out, display)
	}
	sort.Strings(out)
	return out
}
