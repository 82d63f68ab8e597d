package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spendwatch/internal/analysis"
	"spendwatch/internal/cli"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show spending aggregates and insights",
		Long: `Aggregate imported transactions into category totals, monthly averages,
and volatility, and derive qualitative insights from them.

Set a monthly budget with --budget (or budget.monthly in the config file) to
include budget-pressure commentary.`,
		RunE: runReport,
	}

	cmd.Flags().Float64("budget", 0, "monthly budget for budget-relative insights")
	_ = viper.BindPFlag("budget.monthly", cmd.Flags().Lookup("budget"))

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	transactions, err := loadTransactions(ctx, store)
	if err != nil {
		return err
	}
	if len(transactions) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No transactions imported yet - run 'spendwatch import' first"))
		return nil
	}

	breakdown := analysis.CategoryTotals(transactions)
	monthlyAvg := analysis.MonthlyAverage(transactions)
	volatility := analysis.SpendingVolatility(transactions)

	fmt.Println(cli.TitleStyle.Render("Spending by category"))

	categories := make([]string, 0, len(breakdown))
	for name := range breakdown {
		categories = append(categories, name)
	}
	sort.Slice(categories, func(i, j int) bool {
		a, b := breakdown[categories[i]], breakdown[categories[j]]
		if a.Share != b.Share {
			return a.Share > b.Share
		}
		return categories[i] < categories[j]
	})
	for _, name := range categories {
		total := breakdown[name]
		fmt.Printf("  %-20s %10.2f  %s\n", name, total.Amount,
			cli.SubtleStyle.Render(fmt.Sprintf("%.1f%%", total.Share*100)))
	}

	fmt.Println()
	fmt.Printf("%s %.2f\n", cli.BoldStyle.Render("Monthly average:"), monthlyAvg)
	fmt.Printf("%s %.1f%%\n", cli.BoldStyle.Render("Volatility:"), volatility*100)

	budget := viper.GetFloat64("budget.monthly")
	insights := analysis.GenerateInsights(transactions, budget)
	if len(insights) > 0 {
		fmt.Println()
		fmt.Println(cli.TitleStyle.Render("Insights"))
		for _, insight := range insights {
			fmt.Printf("  %s\n    %s\n", cli.BoldStyle.Render(insight.Title), insight.Detail)
		}
	}

	return nil
}
