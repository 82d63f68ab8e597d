package analysis

import (
	"fmt"
	"sort"

	"spendwatch/internal/model"
)

// GenerateInsights derives a small set of deterministic, human-readable
// observations from a transaction snapshot. monthlyBudget comes from user
// settings owned by the caller; pass 0 when no budget is configured.
//
// Empty input returns an empty slice: "no data yet" is an expected steady
// state, not an error.
func GenerateInsights(transactions []model.Transaction, monthlyBudget float64) []model.Insight {
	breakdown := CategoryTotals(transactions)
	if len(breakdown) == 0 {
		return nil
	}

	var insights []model.Insight

	topCategory, topTotal := topSpendingCategory(breakdown)
	insights = append(insights, model.Insight{
		Title: "Top spending category",
		Detail: fmt.Sprintf("%s accounts for %.1f%% of your spend (%.2f total)",
			topCategory, topTotal.Share*100, topTotal.Amount),
	})

	monthlyAvg := MonthlyAverage(transactions)
	if monthlyBudget > 0 {
		usage := monthlyAvg / monthlyBudget * 100
		remaining := monthlyBudget - monthlyAvg
		detail := fmt.Sprintf("Average monthly spend of %.2f uses %.1f%% of your %.2f budget (%.2f headroom)",
			monthlyAvg, usage, monthlyBudget, remaining)
		if remaining < 0 {
			detail = fmt.Sprintf("Average monthly spend of %.2f exceeds your %.2f budget by %.2f",
				monthlyAvg, monthlyBudget, -remaining)
		}
		insights = append(insights, model.Insight{Title: "Budget pressure", Detail: detail})
	}

	if trend, ok := trendInsight(transactions); ok {
		insights = append(insights, trend)
	}

	if investable := InvestableAmount(monthlyAvg); investable > 0 {
		insights = append(insights, model.Insight{
			Title: "Investable amount",
			Detail: fmt.Sprintf("Based on your average spend you could set aside roughly %.2f per month",
				investable),
		})
	}

	return insights
}

// topSpendingCategory picks the category with the largest share, breaking
// ties by name so the output is deterministic.
func topSpendingCategory(breakdown model.CategoryBreakdown) (string, model.CategoryTotal) {
	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := breakdown[names[i]], breakdown[names[j]]
		if a.Share != b.Share {
			return a.Share > b.Share
		}
		return names[i] < names[j]
	})
	top := names[0]
	return top, breakdown[top]
}

// trendInsight compares the most recent month against the trailing average of
// the earlier months. It needs at least two months of history.
func trendInsight(transactions []model.Transaction) (model.Insight, bool) {
	sums := monthlySums(transactions)
	if len(sums) < 2 {
		return model.Insight{}, false
	}

	latest := sums[len(sums)-1]
	var trailing float64
	for _, s := range sums[:len(sums)-1] {
		trailing += s
	}
	trailing /= float64(len(sums) - 1)

	if trailing == 0 {
		return model.Insight{}, false
	}

	change := (latest - trailing) / trailing * 100
	direction := "up"
	if change < 0 {
		direction = "down"
	}
	return model.Insight{
		Title: "Spending trend",
		Detail: fmt.Sprintf("Latest month is %s %.1f%% versus your trailing average (%.2f vs %.2f)",
			direction, abs(change), latest, trailing),
	}, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
