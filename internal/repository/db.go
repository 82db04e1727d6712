package repository

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/mobile-payments/internal/domain"
)

const transactionColumns = `id, recipient_email, amount, currency, status, timestamp_ms`

type scanner interface {
	Scan(dest ...any) error
}

// scanTransaction reads one row. The amount is scanned as text so NUMERIC
// values keep their exact digits.
func scanTransaction(s scanner) (domain.TransactionRecord, error) {
	var (
		rec      domain.TransactionRecord
		amount   string
		currency string
		status   string
	)
	if err := s.Scan(&rec.ID, &rec.RecipientEmail, &amount, &currency, &status, &rec.TimestampMillis); err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("scanTransaction: %w", err)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.TransactionRecord{}, fmt.Errorf("scanTransaction: amount %q: %w", amount, err)
	}
	rec.Amount = d

	rec.Currency = domain.Currency(currency)
	if !rec.Currency.IsValid() {
		return domain.TransactionRecord{}, fmt.Errorf("scanTransaction: unknown currency %q", currency)
	}
	rec.Status = domain.PaymentStatus(status)
	if !rec.Status.IsValid() {
		return domain.TransactionRecord{}, fmt.Errorf("scanTransaction: unknown status %q", status)
	}
	return rec, nil
}
