package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendwatch/internal/model"
)

func txn(id string, date time.Time, merchant, category string, amount float64) model.Transaction {
	return model.Transaction{
		ID:       id,
		Date:     date,
		Merchant: merchant,
		Category: category,
		Amount:   amount,
		Currency: model.DefaultCurrency,
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestCategoryTotals(t *testing.T) {
	tests := []struct {
		name         string
		wantShares   map[string]float64
		transactions []model.Transaction
		wantTotal    float64
	}{
		{
			name:         "empty input returns empty map",
			transactions: nil,
			wantTotal:    0,
		},
		{
			name: "sums per category with shares",
			transactions: []model.Transaction{
				txn("t1", day(2025, 11, 1), "Coffee House", "Dining", 40),
				txn("t2", day(2025, 11, 2), "Noodle Bar", "Dining", 60),
				txn("t3", day(2025, 11, 3), "Metro", "Transport", 100),
			},
			wantTotal: 200,
			wantShares: map[string]float64{
				"Dining":    0.5,
				"Transport": 0.5,
			},
		},
		{
			name: "missing category falls into Other bucket",
			transactions: []model.Transaction{
				txn("t1", day(2025, 11, 1), "Somewhere", "", 25),
				txn("t2", day(2025, 11, 2), "Elsewhere", "  ", 75),
			},
			wantTotal: 100,
			wantShares: map[string]float64{
				model.CategoryOther: 1.0,
			},
		},
		{
			name: "invalid records are skipped",
			transactions: []model.Transaction{
				txn("t1", day(2025, 11, 1), "Coffee House", "Dining", 40),
				txn("", day(2025, 11, 2), "No ID", "Dining", 1000),
				txn("t3", day(2025, 11, 3), "Negative", "Dining", -5),
			},
			wantTotal: 40,
			wantShares: map[string]float64{
				"Dining": 1.0,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			breakdown := CategoryTotals(tt.transactions)

			var total float64
			for _, ct := range breakdown {
				total += ct.Amount
			}
			assert.InDelta(t, tt.wantTotal, total, 1e-9)

			for category, wantShare := range tt.wantShares {
				require.Contains(t, breakdown, category)
				assert.InDelta(t, wantShare, breakdown[category].Share, 1e-9)
			}
			assert.Len(t, breakdown, len(tt.wantShares))
		})
	}
}

func TestCategoryTotalsSharesSumToOne(t *testing.T) {
	transactions := []model.Transaction{
		txn("t1", day(2025, 10, 1), "A", "Dining", 45),
		txn("t2", day(2025, 10, 5), "B", "Transport", 6),
		txn("t3", day(2025, 11, 1), "C", "Shopping", 120),
		txn("t4", day(2025, 11, 3), "D", "", 85),
	}

	breakdown := CategoryTotals(transactions)
	var shares float64
	for _, ct := range breakdown {
		shares += ct.Share
	}
	assert.InDelta(t, 1.0, shares, 1e-9)
}

func TestMonthlyAverage(t *testing.T) {
	tests := []struct {
		name         string
		transactions []model.Transaction
		want         float64
	}{
		{
			name:         "empty input returns zero",
			transactions: nil,
			want:         0,
		},
		{
			name: "single month returns that month's sum",
			transactions: []model.Transaction{
				txn("t1", day(2025, 11, 1), "A", "Dining", 30),
				txn("t2", day(2025, 11, 20), "B", "Dining", 70),
			},
			want: 100,
		},
		{
			name: "mean across months",
			transactions: []model.Transaction{
				txn("t1", day(2025, 9, 10), "A", "Dining", 100),
				txn("t2", day(2025, 10, 10), "B", "Dining", 200),
				txn("t3", day(2025, 11, 10), "C", "Dining", 300),
			},
			want: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MonthlyAverage(tt.transactions), 1e-9)
		})
	}
}

func TestSpendingVolatility(t *testing.T) {
	tests := []struct {
		name         string
		transactions []model.Transaction
		want         float64
	}{
		{
			name:         "empty input returns zero",
			transactions: nil,
			want:         0,
		},
		{
			name: "single month returns zero",
			transactions: []model.Transaction{
				txn("t1", day(2025, 11, 1), "A", "Dining", 50),
				txn("t2", day(2025, 11, 15), "B", "Dining", 500),
			},
			want: 0,
		},
		{
			name: "identical months have zero volatility",
			transactions: []model.Transaction{
				txn("t1", day(2025, 10, 1), "A", "Dining", 100),
				txn("t2", day(2025, 11, 1), "B", "Dining", 100),
			},
			want: 0,
		},
		{
			// Monthly sums 100 and 300: mean 200, population stddev 100.
			name: "coefficient of variation across months",
			transactions: []model.Transaction{
				txn("t1", day(2025, 10, 1), "A", "Dining", 100),
				txn("t2", day(2025, 11, 1), "B", "Dining", 300),
			},
			want: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SpendingVolatility(tt.transactions), 1e-9)
		})
	}
}

func TestInvestableAmount(t *testing.T) {
	tests := []struct {
		name       string
		monthlyAvg float64
		want       float64
	}{
		{"zero spend", 0, 0},
		{"negative spend", -10, 0},
		{"low spend tier", 2000, 200},
		{"middle tier", 5000, 1000},
		{"high tier", 20000, 6000},
		{"rounds to cents", 2500.6, 250.06},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, InvestableAmount(tt.monthlyAvg), 1e-9)
		})
	}
}
