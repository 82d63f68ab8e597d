package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransactionValid(t *testing.T) {
	base := Transaction{
		ID:     "t1",
		Date:   time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		Amount: 45,
	}

	tests := []struct {
		name   string
		mutate func(*Transaction)
		want   bool
	}{
		{name: "complete transaction", mutate: func(_ *Transaction) {}, want: true},
		{name: "blank ID", mutate: func(tx *Transaction) { tx.ID = "  " }, want: false},
		{name: "zero date", mutate: func(tx *Transaction) { tx.Date = time.Time{} }, want: false},
		{name: "zero amount", mutate: func(tx *Transaction) { tx.Amount = 0 }, want: false},
		{name: "negative amount", mutate: func(tx *Transaction) { tx.Amount = -10 }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := base
			tt.mutate(&txn)
			assert.Equal(t, tt.want, txn.Valid())
		})
	}
}

func TestCategoryOrOther(t *testing.T) {
	txn := Transaction{Category: "Dining"}
	assert.Equal(t, "Dining", txn.CategoryOrOther())

	txn.Category = "   "
	assert.Equal(t, CategoryOther, txn.CategoryOrOther())
}

func TestAnomalyStatusTerminal(t *testing.T) {
	assert.False(t, AnomalyStatusPending.Terminal())
	assert.True(t, AnomalyStatusConfirmed.Terminal())
	assert.True(t, AnomalyStatusFraud.Terminal())
	assert.False(t, AnomalyStatus("unknown").Terminal())
}
