// Package ofx parses OFX/QFX bank exports into the transaction model the
// analysis core consumes. Ingestion owns all format coercion; by the time a
// transaction leaves this package it is validated and typed.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"spendwatch/internal/model"
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file and returns analyzable transactions.
// Credits (deposits, refunds) are skipped: the analysis core models spending,
// which must be strictly positive.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error) {
	if ctx != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction
	var skippedCredits int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		currency := strings.ToUpper(stmt.CurDef.String())
		for _, ofxTx := range stmt.BankTranList.Transactions {
			txn, ok := p.convertTransaction(ofxTx, currency)
			if !ok {
				skippedCredits++
				continue
			}
			transactions = append(transactions, txn)
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		currency := strings.ToUpper(stmt.CurDef.String())
		for _, ofxTx := range stmt.BankTranList.Transactions {
			txn, ok := p.convertTransaction(ofxTx, currency)
			if !ok {
				skippedCredits++
				continue
			}
			transactions = append(transactions, txn)
		}
	}

	slog.Info("Parsed OFX file",
		"transactions", len(transactions),
		"skipped_credits", skippedCredits)

	return transactions, nil
}

// convertTransaction converts an OFX transaction to our model. The second
// return value is false for credits, which carry no spending signal.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, currency string) (model.Transaction, bool) {
	amount, _ := ofxTx.TrnAmt.Float64()
	// OFX uses negative amounts for debits; spending is modeled positive.
	if amount >= 0 {
		return model.Transaction{}, false
	}

	if currency == "" {
		currency = model.DefaultCurrency
	}

	txn := model.Transaction{
		ID:            string(ofxTx.FiTID),
		Date:          ofxTx.DtPosted.Time,
		Merchant:      p.extractMerchantName(ofxTx),
		Category:      categoryForType(fmt.Sprintf("%v", ofxTx.TrnType)),
		Amount:        -amount,
		Currency:      currency,
		PaymentMethod: fmt.Sprintf("%v", ofxTx.TrnType),
	}
	txn.Hash = txn.GenerateHash()
	return txn, true
}

// categoryForType infers a coarse category from the OFX transaction type.
// Most spending stays in the shared "Other" bucket until categorized
// upstream.
func categoryForType(trnType string) string {
	switch trnType {
	case "FEE", "SRVCHG":
		return "Bank Fees"
	case "ATM", "CASH":
		return "Cash & ATM"
	default:
		return ""
	}
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func (p *Parser) extractMerchantName(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available (cleaner merchant name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		// Sometimes MEMO has better merchant info
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Strip leading "MM/DD " date patterns
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"POS TRANSACTION",
		"CARD PURCHASE",
	}
	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
