package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is the persisted mirror of a successful PaymentResult.
// Records are written once and never mutated.
type TransactionRecord struct {
	ID              string
	RecipientEmail  string
	Amount          decimal.Decimal
	Currency        Currency
	Status          PaymentStatus
	TimestampMillis int64
}

func NewTransactionRecord(r PaymentResult) TransactionRecord {
	return TransactionRecord{
		ID:              r.ID,
		RecipientEmail:  r.RecipientEmail,
		Amount:          r.Amount,
		Currency:        r.Currency,
		Status:          r.Status,
		TimestampMillis: r.TimestampMillis,
	}
}

// Result returns the record in its PaymentResult form, which is also the
// shape it is stored in.
func (t TransactionRecord) Result() PaymentResult {
	return PaymentResult{
		ID:              t.ID,
		RecipientEmail:  t.RecipientEmail,
		Amount:          t.Amount,
		Currency:        t.Currency,
		Status:          t.Status,
		TimestampMillis: t.TimestampMillis,
	}
}

func (t TransactionRecord) CreatedAt() time.Time {
	return time.UnixMilli(t.TimestampMillis).UTC()
}

// SortNewestFirst orders records by timestamp descending. Ties are broken by id
// so repeated listings of the same data are stable.
func SortNewestFirst(records []TransactionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].TimestampMillis != records[j].TimestampMillis {
			return records[i].TimestampMillis > records[j].TimestampMillis
		}
		return records[i].ID < records[j].ID
	})
}
