// Package analysis implements the spending-analysis and anomaly-detection core.
// Everything here is a pure computation over an injected transaction snapshot;
// the package owns no state and never caches data across calls.
package analysis

import (
	"math"
	"sort"

	"spendwatch/internal/model"
)

// CategoryTotals sums amounts per category and computes each category's share
// of total spend. Transactions without a category fall into the shared "Other"
// bucket. Invalid records are skipped; an empty input yields an empty map.
func CategoryTotals(transactions []model.Transaction) model.CategoryBreakdown {
	totals := make(map[string]float64)
	var overall float64

	for i := range transactions {
		txn := &transactions[i]
		if !txn.Valid() {
			continue
		}
		totals[txn.CategoryOrOther()] += txn.Amount
		overall += txn.Amount
	}

	breakdown := make(model.CategoryBreakdown, len(totals))
	for category, amount := range totals {
		share := 0.0
		if overall > 0 {
			share = amount / overall
		}
		breakdown[category] = model.CategoryTotal{Amount: amount, Share: share}
	}
	return breakdown
}

// MonthlyAverage groups transactions by calendar month and returns the mean
// of the monthly sums, or 0 when there is no data.
func MonthlyAverage(transactions []model.Transaction) float64 {
	sums := monthlySums(transactions)
	if len(sums) == 0 {
		return 0
	}
	var total float64
	for _, s := range sums {
		total += s
	}
	return total / float64(len(sums))
}

// SpendingVolatility returns the coefficient of variation (population standard
// deviation divided by mean) of monthly spending sums. Fewer than two months
// of history, or a zero mean, yields 0: a single data point says nothing about
// stability.
func SpendingVolatility(transactions []model.Transaction) float64 {
	sums := monthlySums(transactions)
	if len(sums) < 2 {
		return 0
	}
	mean, std := meanStddev(sums)
	if mean == 0 {
		return 0
	}
	return std / mean
}

// InvestableAmount estimates the monthly sum a user can reasonably set aside,
// as a tier of their average spend: 10% under 3,000, 20% under 10,000, 30%
// above. Rounded to cents.
func InvestableAmount(monthlyAvg float64) float64 {
	if monthlyAvg <= 0 {
		return 0
	}
	ratio := 0.3
	switch {
	case monthlyAvg < 3_000:
		ratio = 0.1
	case monthlyAvg < 10_000:
		ratio = 0.2
	}
	return math.Round(monthlyAvg*ratio*100) / 100
}

// monthlySums returns per-calendar-month spending totals, ordered
// chronologically.
func monthlySums(transactions []model.Transaction) []float64 {
	byMonth := make(map[string]float64)
	for i := range transactions {
		txn := &transactions[i]
		if !txn.Valid() {
			continue
		}
		byMonth[txn.Date.Format("2006-01")] += txn.Amount
	}

	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		months = append(months, month)
	}
	sort.Strings(months)

	sums := make([]float64, 0, len(months))
	for _, month := range months {
		sums = append(sums, byMonth[month])
	}
	return sums
}

// meanStddev computes the arithmetic mean and population standard deviation.
func meanStddev(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	mean = total / float64(len(values))

	var sumSquares float64
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	std = math.Sqrt(sumSquares / float64(len(values)))
	return mean, std
}
