package testutil

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/mobile-payments/internal/domain"
)

// BaseTimestamp is an arbitrary acceptance time used by fixtures.
const BaseTimestamp int64 = 1_700_000_000_000

// NewRecord builds a valid USD record accepted offset milliseconds after
// BaseTimestamp.
func NewRecord(t *testing.T, id string, offset int64) domain.TransactionRecord {
	t.Helper()
	return domain.TransactionRecord{
		ID:              id,
		RecipientEmail:  "test@example.com",
		Amount:          decimal.RequireFromString("50.00"),
		Currency:        domain.CurrencyUSD,
		Status:          domain.PaymentStatusSuccess,
		TimestampMillis: BaseTimestamp + offset,
	}
}

// NewRecords builds n records with increasing timestamps, oldest first.
func NewRecords(t *testing.T, n int) []domain.TransactionRecord {
	t.Helper()
	out := make([]domain.TransactionRecord, n)
	for i := range n {
		out[i] = NewRecord(t, fmt.Sprintf("payment_%03d", i), int64(i)*1000)
	}
	return out
}

// IDs returns the ids of records in order.
func IDs(records []domain.TransactionRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
