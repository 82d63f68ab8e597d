package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"spendwatch/internal/model"
	"spendwatch/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX or CSV files",
		Long: `Import financial transactions from bank exports.

OFX and QFX files are parsed as statements; CSV files need a header row with
date, merchant, category, amount and optional id, currency, payment_method
columns.

Examples:
  spendwatch import ~/Downloads/statement_jan.qfx
  spendwatch import ~/Downloads/*.ofx bills.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "Preview import without saving")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	ctx := cmd.Context()

	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}
	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	slog.Info("Importing transaction files", "file_count", len(allFiles), "dry_run", dryRun)

	bar := progressbar.NewOptions(len(allFiles),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Importing files..."))

	parser := ofx.NewParser()
	seen := make(map[string]bool)
	var allTransactions []model.Transaction

	for _, filePath := range allFiles {
		transactions, err := parseFile(ctx, parser, filePath)
		if err != nil {
			slog.Error("Failed to parse file", "file", filePath, "error", err)
			_ = bar.Add(1)
			continue
		}

		added := 0
		for _, txn := range transactions {
			if txn.Hash == "" {
				txn.Hash = txn.GenerateHash()
			}
			if !seen[txn.Hash] {
				seen[txn.Hash] = true
				allTransactions = append(allTransactions, txn)
				added++
			}
		}

		slog.Info("Processed file",
			"file", filepath.Base(filePath),
			"transactions", len(transactions),
			"added", added,
			"duplicates", len(transactions)-added)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	if len(allTransactions) == 0 {
		slog.Warn("No transactions found in any file")
		return nil
	}

	if dryRun {
		slog.Info("Dry run complete - no data saved", "would_save", len(allTransactions))
		return nil
	}

	store, err := openStorage()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.SaveTransactions(ctx, allTransactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	slog.Info("Import complete", "saved", len(allTransactions))
	return nil
}

func parseFile(ctx context.Context, parser *ofx.Parser, filePath string) ([]model.Transaction, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if strings.EqualFold(filepath.Ext(filePath), ".csv") {
		return parseCSV(f)
	}
	return parser.ParseFile(ctx, f)
}

// parseCSV reads transactions from a CSV export with a header row. Rows that
// fail to parse are skipped with a warning so one bad record never blocks the
// rest of the batch.
func parseCSV(r io.Reader) ([]model.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "amount"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("CSV is missing required column %q", required)
		}
	}

	field := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var transactions []model.Transaction
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			slog.Warn("Skipping malformed CSV row", "line", line, "error", err)
			continue
		}

		date, err := parseCSVDate(field(record, "date"))
		if err != nil {
			slog.Warn("Skipping CSV row with bad date", "line", line, "error", err)
			continue
		}
		amount, err := strconv.ParseFloat(field(record, "amount"), 64)
		if err != nil || amount <= 0 {
			slog.Warn("Skipping CSV row with bad amount", "line", line, "value", field(record, "amount"))
			continue
		}

		id := field(record, "id")
		if id == "" {
			id = uuid.NewString()
		}

		txn := model.Transaction{
			ID:            id,
			Date:          date,
			Merchant:      field(record, "merchant"),
			Category:      field(record, "category"),
			Amount:        amount,
			Currency:      field(record, "currency"),
			PaymentMethod: field(record, "payment_method"),
		}
		if txn.Currency == "" {
			txn.Currency = model.DefaultCurrency
		}
		txn.Hash = txn.GenerateHash()
		transactions = append(transactions, txn)
	}

	return transactions, nil
}

func parseCSVDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006/01/02", "01/02/2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
