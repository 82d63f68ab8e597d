package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spendwatch/internal/analysis"
	"spendwatch/internal/cli"
	"spendwatch/internal/common"
	"spendwatch/internal/model"
	"spendwatch/internal/session"
)

func anomaliesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anomalies",
		Short: "Detect and review unusual transactions",
		Long: `Run anomaly detection over imported transactions and review the results.

Each candidate is scored against the merchant's own history (falling back to
category and overall history when sparse). Reviewed transactions never
resurface, and trusted merchants are never flagged.`,
		RunE: runAnomaliesList,
	}

	cmd.PersistentFlags().Float64("threshold", analysis.DefaultBaseThreshold,
		"minimum deviation score to flag a transaction")
	_ = viper.BindPFlag("anomaly.threshold", cmd.PersistentFlags().Lookup("threshold"))

	confirmCmd := &cobra.Command{
		Use:   "confirm [transaction-id]",
		Short: "Confirm a flagged transaction as legitimate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnomalyFeedback(cmd, args[0], model.AnomalyStatusConfirmed)
		},
	}
	confirmCmd.Flags().Bool("trust", false, "also add the merchant to the trusted whitelist")

	fraudCmd := &cobra.Command{
		Use:   "fraud [transaction-id]",
		Short: "Mark a flagged transaction as fraudulent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnomalyFeedback(cmd, args[0], model.AnomalyStatusFraud)
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show reviewed anomalies",
		RunE:  runAnomalyHistory,
	}

	cmd.AddCommand(confirmCmd)
	cmd.AddCommand(fraudCmd)
	cmd.AddCommand(historyCmd)

	return cmd
}

// refreshSession hydrates a session from storage and runs a detection pass.
func refreshSession(ctx context.Context) (*session.Session, func() error, error) {
	store, err := openStorage()
	if err != nil {
		return nil, nil, err
	}

	sess, err := hydrateSession(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	transactions, err := loadTransactions(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	detector := analysis.NewDetector(analysis.Config{
		BaseThreshold: viper.GetFloat64("anomaly.threshold"),
	})
	sess.Refresh(detector, transactions)

	return sess, store.Close, nil
}

func runAnomaliesList(cmd *cobra.Command, _ []string) error {
	sess, closeStore, err := refreshSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	active := sess.ActiveAnomalies()
	if len(active) == 0 {
		fmt.Println(cli.SuccessStyle.Render(sess.Message()))
		return nil
	}

	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("%d anomalies awaiting review", len(active))))
	for _, item := range active {
		fmt.Printf("  %s  %s\n", cli.WarningStyle.Render(item.TransactionID),
			cli.BoldStyle.Render(fmt.Sprintf("%.2f", item.Amount)))
		fmt.Printf("    %s | %s | score %.1f\n",
			item.Date.Format("2006-01-02"), merchantOrUnknown(item.Merchant), item.Score)
		fmt.Printf("    %s\n", cli.SubtleStyle.Render(item.Reason))
	}
	fmt.Println()
	fmt.Println(cli.SubtleStyle.Render("Review with 'spendwatch anomalies confirm <id>' or 'spendwatch anomalies fraud <id>'"))

	return nil
}

func runAnomalyFeedback(cmd *cobra.Command, transactionID string, decision model.AnomalyStatus) error {
	ctx := cmd.Context()

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	sess, err := hydrateSession(ctx, store)
	if err != nil {
		return err
	}
	transactions, err := loadTransactions(ctx, store)
	if err != nil {
		return err
	}
	if len(transactions) == 0 {
		return common.NewUserError(session.MessageNoTransactions, common.ErrNoTransactions)
	}

	detector := analysis.NewDetector(analysis.Config{
		BaseThreshold: viper.GetFloat64("anomaly.threshold"),
	})
	sess.Refresh(detector, transactions)

	var candidate *model.AnomalyCandidate
	for _, item := range sess.ActiveAnomalies() {
		if item.TransactionID == transactionID {
			candidate = &item
			break
		}
	}
	if candidate == nil {
		return fmt.Errorf("transaction %s is not an active anomaly", transactionID)
	}

	detail, err := store.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	fmt.Printf("  %s  %s  %.2f %s  %s\n",
		detail.Date.Format("2006-01-02"), merchantOrUnknown(detail.Merchant),
		detail.Amount, detail.Currency, cli.SubtleStyle.Render(detail.CategoryOrOther()))

	if err := sess.RecordFeedback(*candidate, decision); err != nil {
		return err
	}
	sess.DropActive(transactionID)

	reviewed := *candidate
	reviewed.Status = decision
	if err := store.SaveAnomalyFeedback(ctx, reviewed); err != nil {
		return err
	}

	if decision == model.AnomalyStatusConfirmed {
		if trust, _ := cmd.Flags().GetBool("trust"); trust && candidate.Merchant != "" {
			if err := store.AddTrustedMerchant(ctx, candidate.Merchant); err != nil {
				return err
			}
			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Added %s to trusted merchants", candidate.Merchant)))
		}
		fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("Confirmed %s as legitimate", transactionID)))
		return nil
	}

	fmt.Println(cli.ErrorStyle.Render(fmt.Sprintf("Marked %s as fraud - consider contacting your bank", transactionID)))
	return nil
}

func runAnomalyHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	history, err := store.GetAnomalyHistory(ctx)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println(cli.SubtleStyle.Render("No reviewed anomalies yet"))
		return nil
	}

	fmt.Println(cli.TitleStyle.Render("Review history"))
	for _, item := range history {
		status := cli.SuccessStyle.Render(string(item.Status))
		if item.Status == model.AnomalyStatusFraud {
			status = cli.ErrorStyle.Render(string(item.Status))
		}
		fmt.Printf("  %s  %s  %.2f  %s\n", item.TransactionID,
			item.Date.Format("2006-01-02"), item.Amount, status)
	}

	return nil
}

func merchantOrUnknown(name string) string {
	if name == "" {
		return "unknown merchant"
	}
	return name
}
