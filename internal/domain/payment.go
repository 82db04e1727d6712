package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// MaxPaymentAmount is the inclusive upper bound for a single payment.
var MaxPaymentAmount = decimal.NewFromInt(10_000)

// PaymentRequest is built per submission attempt and never persisted as-is.
// Currency is carried unchecked so that validation decides membership.
type PaymentRequest struct {
	RecipientEmail string
	Amount         decimal.Decimal
	Currency       Currency
}

// PaymentResult is the backend's answer to an accepted request.
type PaymentResult struct {
	ID              string
	RecipientEmail  string
	Amount          decimal.Decimal
	Currency        Currency
	Status          PaymentStatus
	TimestampMillis int64
}

func (r PaymentResult) AcceptedAt() time.Time {
	return time.UnixMilli(r.TimestampMillis).UTC()
}

// Equal compares amounts numerically, so 50 and 50.00 are the same payment.
func (r PaymentResult) Equal(o PaymentResult) bool {
	return r.ID == o.ID &&
		r.RecipientEmail == o.RecipientEmail &&
		r.Amount.Equal(o.Amount) &&
		r.Currency == o.Currency &&
		r.Status == o.Status &&
		r.TimestampMillis == o.TimestampMillis
}

func (r PaymentRequest) Equal(o PaymentRequest) bool {
	return r.RecipientEmail == o.RecipientEmail &&
		r.Amount.Equal(o.Amount) &&
		r.Currency == o.Currency
}
