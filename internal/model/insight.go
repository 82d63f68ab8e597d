package model

// CategoryTotal aggregates spend for a single category.
type CategoryTotal struct {
	Amount float64
	Share  float64 // Fraction of total spend, 0..1
}

// CategoryBreakdown maps category labels to their aggregate totals.
// Iteration order is unspecified; consumers sort by share descending.
type CategoryBreakdown map[string]CategoryTotal

// Insight is a single qualitative observation derived from spending data.
type Insight struct {
	Title  string
	Detail string
}
