package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwatch/internal/analysis"
	"spendwatch/internal/model"
)

func candidate(txnID string, amount float64) model.AnomalyCandidate {
	return model.AnomalyCandidate{
		TransactionID: txnID,
		Date:          time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC),
		Merchant:      "Suspicious Shop",
		Amount:        amount,
		Score:         5.0,
		Status:        model.AnomalyStatusPending,
		Reason:        "amount is 10.0x the typical merchant spend of 50.00",
	}
}

func report(items ...model.AnomalyCandidate) model.AnomalyReport {
	return model.AnomalyReport{Items: items, Count: len(items)}
}

func TestSyncReplacesActive(t *testing.T) {
	sess := New()

	sess.Sync(report(candidate("t1", 9000)))
	require.Len(t, sess.ActiveAnomalies(), 1)
	assert.Empty(t, sess.Message())

	sess.Sync(report(candidate("t2", 500)))
	active := sess.ActiveAnomalies()
	require.Len(t, active, 1)
	assert.Equal(t, "t2", active[0].TransactionID)
}

func TestSyncEmptyReportSetsMessage(t *testing.T) {
	sess := New()
	sess.Sync(report())
	assert.Empty(t, sess.ActiveAnomalies())
	assert.Equal(t, MessageNoAnomalies, sess.Message())
}

func TestSyncSuppressesReviewedCandidates(t *testing.T) {
	sess := New()
	first := candidate("t1", 9000)

	sess.Sync(report(first))
	require.NoError(t, sess.RecordFeedback(first, model.AnomalyStatusConfirmed))
	sess.DropActive(first.TransactionID)

	// A later detection pass still contains t1; history must keep it out.
	sess.Sync(report(first, candidate("t2", 700)))

	active := sess.ActiveAnomalies()
	require.Len(t, active, 1)
	assert.Equal(t, "t2", active[0].TransactionID)
}

func TestRecordFeedback(t *testing.T) {
	tests := []struct {
		name     string
		decision model.AnomalyStatus
		pending  bool
		wantErr  bool
	}{
		{name: "confirm pending candidate", decision: model.AnomalyStatusConfirmed, pending: true},
		{name: "flag pending candidate as fraud", decision: model.AnomalyStatusFraud, pending: true},
		{name: "unknown transaction rejected", decision: model.AnomalyStatusConfirmed, pending: false, wantErr: true},
		{name: "non-terminal decision rejected", decision: model.AnomalyStatusPending, pending: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := New()
			c := candidate("t1", 9000)
			if tt.pending {
				sess.Sync(report(c))
			}

			err := sess.RecordFeedback(c, tt.decision)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Empty(t, sess.AnomalyHistory())
				return
			}

			require.NoError(t, err)
			history := sess.AnomalyHistory()
			require.Len(t, history, 1)
			assert.Equal(t, tt.decision, history[0].Status)

			// Recording feedback does not itself touch the active list.
			assert.Len(t, sess.ActiveAnomalies(), 1)
		})
	}
}

func TestFeedbackHistoryOrdering(t *testing.T) {
	sess := New()
	x := candidate("x", 9000)
	y := candidate("y", 700)
	sess.Sync(report(x, y))

	require.NoError(t, sess.RecordFeedback(x, model.AnomalyStatusConfirmed))
	sess.DropActive("x")
	require.NoError(t, sess.RecordFeedback(y, model.AnomalyStatusFraud))
	sess.DropActive("y")

	history := sess.AnomalyHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "x", history[0].TransactionID)
	assert.Equal(t, model.AnomalyStatusConfirmed, history[0].Status)
	assert.Equal(t, "y", history[1].TransactionID)
	assert.Equal(t, model.AnomalyStatusFraud, history[1].Status)
	assert.Empty(t, sess.ActiveAnomalies())
}

func TestUpdateStateLastWriterWins(t *testing.T) {
	sess := New()
	sess.UpdateState([]model.AnomalyCandidate{candidate("t1", 100)}, "")
	sess.UpdateState(nil, MessageNoTransactions)

	assert.Empty(t, sess.ActiveAnomalies())
	assert.Equal(t, MessageNoTransactions, sess.Message())
}

func TestRefresh(t *testing.T) {
	detector := analysis.NewDetector(analysis.DefaultConfig())

	t.Run("empty snapshot sets no-data message", func(t *testing.T) {
		sess := New()
		sess.Refresh(detector, nil)
		assert.Empty(t, sess.ActiveAnomalies())
		assert.Equal(t, MessageNoTransactions, sess.Message())
	})

	t.Run("detection honours session whitelist", func(t *testing.T) {
		transactions := []model.Transaction{
			{ID: "t1", Date: time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC), Merchant: "Coffee House", Category: "Dining", Amount: 50},
			{ID: "t2", Date: time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC), Merchant: "Coffee House", Category: "Dining", Amount: 52},
			{ID: "t3", Date: time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC), Merchant: "Coffee House", Category: "Dining", Amount: 48},
			{ID: "t4", Date: time.Date(2025, 11, 4, 0, 0, 0, 0, time.UTC), Merchant: "Coffee House", Category: "Dining", Amount: 9000},
		}

		sess := New()
		sess.Refresh(detector, transactions)
		require.Len(t, sess.ActiveAnomalies(), 1)

		sess.AddTrustedMerchant("coffee house")
		sess.Refresh(detector, transactions)
		assert.Empty(t, sess.ActiveAnomalies())
		assert.Equal(t, MessageNoAnomalies, sess.Message())
	})
}

func TestTrustedMerchants(t *testing.T) {
	sess := New()

	sess.AddTrustedMerchant("Coffee House")
	sess.AddTrustedMerchant("Fresh Mart")
	sess.AddTrustedMerchant("  coffee house ") // duplicate modulo normalization

	merchants := sess.TrustedMerchants()
	assert.Equal(t, []string{"Coffee House", "Fresh Mart"}, merchants)
	assert.True(t, sess.IsTrusted("COFFEE HOUSE"))

	sess.RemoveTrustedMerchant("coffee house")
	assert.False(t, sess.IsTrusted("Coffee House"))
	sess.RemoveTrustedMerchant("coffee house") // removing absent entry is a no-op
	assert.Equal(t, []string{"Fresh Mart"}, sess.TrustedMerchants())

	sess.AddTrustedMerchant("   ")
	assert.Equal(t, []string{"Fresh Mart"}, sess.TrustedMerchants())
}

func TestManagerIsolation(t *testing.T) {
	mgr := NewManager()

	a := mgr.Get("session-a")
	b := mgr.Get("session-b")
	require.NotSame(t, a, b)
	assert.Same(t, a, mgr.Get("session-a"))
	assert.Equal(t, 2, mgr.Len())

	a.AddTrustedMerchant("Coffee House")
	assert.False(t, b.IsTrusted("Coffee House"))

	mgr.Drop("session-a")
	assert.Equal(t, 1, mgr.Len())
	assert.NotSame(t, a, mgr.Get("session-a"))
}
