package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCurrencyIsValid(t *testing.T) {
	tests := []struct {
		in   Currency
		want bool
	}{
		{"USD", true},
		{"EUR", true},
		{"usd", false},
		{"GBP", false},
		{"", false},
		{" USD", false},
	}

	for _, tc := range tests {
		t.Run(string(tc.in), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.IsValid())
		})
	}
}

func TestSortNewestFirst(t *testing.T) {
	records := []TransactionRecord{
		{ID: "payment_b", TimestampMillis: 100},
		{ID: "payment_c", TimestampMillis: 300},
		{ID: "payment_a", TimestampMillis: 100},
		{ID: "payment_d", TimestampMillis: 200},
	}

	SortNewestFirst(records)

	var ids []string
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"payment_c", "payment_d", "payment_a", "payment_b"}, ids)
}

func TestNewTransactionRecord(t *testing.T) {
	res := PaymentResult{
		ID:              "payment_1",
		RecipientEmail:  "test@example.com",
		Amount:          decimal.RequireFromString("50.00"),
		Currency:        CurrencyUSD,
		Status:          PaymentStatusSuccess,
		TimestampMillis: 1_700_000_000_000,
	}

	rec := NewTransactionRecord(res)

	assert.Equal(t, res.ID, rec.ID)
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, res.AcceptedAt(), rec.CreatedAt())
}
