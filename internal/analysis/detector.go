package analysis

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"spendwatch/internal/model"
)

// Default detector tuning. The base threshold is deliberately configurable:
// 1.5 is the loose default, 2.0 the higher-confidence setting used by the
// end-to-end scenarios.
const (
	DefaultBaseThreshold    = 1.5
	StrictThreshold         = 2.0
	defaultMinReferenceSize = 3
	defaultZeroVarScore     = 10.0
)

// Config tunes the anomaly detector.
type Config struct {
	// BaseThreshold is the minimum deviation score for a transaction to
	// become an anomaly candidate.
	BaseThreshold float64
	// MinReferenceSize is the minimum number of leave-one-out observations a
	// merchant or category partition needs before it is trusted as a
	// reference distribution.
	MinReferenceSize int
	// ZeroVarianceScore is assigned when the reference history has zero
	// variance and the amount exceeds it. A reference of identical amounts
	// makes any larger spend automatically suspicious.
	ZeroVarianceScore float64
}

// DefaultConfig returns the default detector configuration.
func DefaultConfig() Config {
	return Config{
		BaseThreshold:     DefaultBaseThreshold,
		MinReferenceSize:  defaultMinReferenceSize,
		ZeroVarianceScore: defaultZeroVarScore,
	}
}

// Detector scores transactions for unusualness against merchant, category,
// and global spending history. It is stateless and safe to reuse across
// detection passes.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector, filling unset config fields with defaults.
func NewDetector(cfg Config) *Detector {
	if cfg.BaseThreshold <= 0 {
		cfg.BaseThreshold = DefaultBaseThreshold
	}
	if cfg.MinReferenceSize <= 0 {
		cfg.MinReferenceSize = defaultMinReferenceSize
	}
	if cfg.ZeroVarianceScore <= 0 {
		cfg.ZeroVarianceScore = defaultZeroVarScore
	}
	return &Detector{cfg: cfg}
}

// NormalizeMerchant canonicalizes a merchant name for whitelist membership
// checks: trimmed and case-folded.
func NormalizeMerchant(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ComputeAnomalyReport scores every transaction against its local reference
// distribution and returns candidates ordered most anomalous first.
//
// The reference is chosen with leave-one-out semantics: the merchant's other
// transactions when there are enough of them, then the category's, then the
// global distribution. Excluding the transaction under test keeps a single
// large purchase from inflating its own baseline.
//
// The whitelist filter runs after scoring so that trusted merchants only
// suppress their own candidacy without distorting anyone else's statistics.
func (d *Detector) ComputeAnomalyReport(transactions []model.Transaction, whitelist []string) model.AnomalyReport {
	valid := make([]model.Transaction, 0, len(transactions))
	for i := range transactions {
		if transactions[i].Valid() {
			valid = append(valid, transactions[i])
		}
	}
	if skipped := len(transactions) - len(valid); skipped > 0 {
		slog.Debug("Skipped malformed transactions during detection", "skipped", skipped)
	}
	if len(valid) == 0 {
		return model.AnomalyReport{Items: []model.AnomalyCandidate{}}
	}

	trusted := make(map[string]struct{}, len(whitelist))
	for _, name := range whitelist {
		trusted[NormalizeMerchant(name)] = struct{}{}
	}

	byMerchant := make(map[string][]float64)
	byCategory := make(map[string][]float64)
	global := make([]float64, 0, len(valid))
	for i := range valid {
		txn := &valid[i]
		if merchant := NormalizeMerchant(txn.Merchant); merchant != "" {
			byMerchant[merchant] = append(byMerchant[merchant], txn.Amount)
		}
		byCategory[txn.CategoryOrOther()] = append(byCategory[txn.CategoryOrOther()], txn.Amount)
		global = append(global, txn.Amount)
	}

	items := make([]model.AnomalyCandidate, 0)
	for i := range valid {
		txn := &valid[i]

		reference, scope := d.selectReference(txn, byMerchant, byCategory, global)
		if len(reference) == 0 {
			continue
		}

		mean, std := meanStddev(reference)
		var score float64
		switch {
		case std > 0:
			score = (txn.Amount - mean) / std
		case txn.Amount > mean:
			score = d.cfg.ZeroVarianceScore
		default:
			continue
		}

		if score < d.cfg.BaseThreshold {
			continue
		}
		if _, ok := trusted[NormalizeMerchant(txn.Merchant)]; ok {
			continue
		}

		items = append(items, model.AnomalyCandidate{
			TransactionID: txn.ID,
			Date:          txn.Date,
			Merchant:      txn.Merchant,
			Amount:        txn.Amount,
			Score:         score,
			Status:        model.AnomalyStatusPending,
			Reason:        anomalyReason(txn.Amount, mean, scope),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.After(items[j].Date)
		}
		return items[i].TransactionID < items[j].TransactionID
	})

	return model.AnomalyReport{Items: items, Count: len(items)}
}

// selectReference builds the leave-one-out reference distribution for a
// transaction, preferring merchant history, then category history, then the
// global distribution.
func (d *Detector) selectReference(txn *model.Transaction, byMerchant, byCategory map[string][]float64, global []float64) ([]float64, string) {
	if merchant := NormalizeMerchant(txn.Merchant); merchant != "" {
		if ref := excludeOne(byMerchant[merchant], txn.Amount); len(ref) >= d.cfg.MinReferenceSize {
			return ref, "merchant"
		}
	}
	if ref := excludeOne(byCategory[txn.CategoryOrOther()], txn.Amount); len(ref) >= d.cfg.MinReferenceSize {
		return ref, "category"
	}
	return excludeOne(global, txn.Amount), "overall"
}

// excludeOne returns amounts with a single occurrence of value removed.
func excludeOne(amounts []float64, value float64) []float64 {
	out := make([]float64, 0, len(amounts))
	removed := false
	for _, a := range amounts {
		if !removed && a == value {
			removed = true
			continue
		}
		out = append(out, a)
	}
	return out
}

// anomalyReason summarizes the comparison that made a transaction a candidate.
func anomalyReason(amount, mean float64, scope string) string {
	if mean > 0 {
		return fmt.Sprintf("amount is %.1fx the typical %s spend of %.2f", amount/mean, scope, mean)
	}
	return fmt.Sprintf("amount %.2f is far above the typical %s spend", amount, scope)
}
