// Package validation holds the payment rules shared by the backend and the
// client. Every function is pure; a nil error means the input is valid.
package validation

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/mobile-payments/internal/domain"
)

// Kinds of validation failure. An *Error unwraps to exactly one of these.
var (
	ErrInvalidFormat = errors.New("invalid format")
	ErrOutOfRange    = errors.New("out of range")
	ErrUnsupported   = errors.New("unsupported")
)

const (
	MsgInvalidEmail      = "Invalid email format"
	MsgAmountNotPositive = "Amount must be greater than 0"
	MsgAmountTooLarge    = "Amount cannot exceed 10,000"
	MsgInvalidCurrency   = "Invalid currency. Use USD or EUR"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Error is the Invalid outcome. Message is safe to show to the user verbatim.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func invalid(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func ValidateEmail(s string) error {
	if !emailPattern.MatchString(s) {
		return invalid(ErrInvalidFormat, MsgInvalidEmail)
	}
	return nil
}

func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalid(ErrOutOfRange, MsgAmountNotPositive)
	}
	if exceedsMax(amount) {
		return invalid(ErrOutOfRange, MsgAmountTooLarge)
	}
	return nil
}

// exceedsMax compares a positive amount with the limit by order of magnitude
// first. Only amounts within the limit's magnitude are compared exactly, so an
// extreme exponent is never rescaled.
func exceedsMax(amount decimal.Decimal) bool {
	m, limit := magnitude(amount), magnitude(domain.MaxPaymentAmount)
	switch {
	case m < limit:
		return false
	case m > limit:
		return true
	default:
		return amount.GreaterThan(domain.MaxPaymentAmount)
	}
}

// magnitude is the m with 10^(m-1) <= |d| < 10^m, for non-zero d.
func magnitude(d decimal.Decimal) int64 {
	digits := strings.TrimPrefix(d.Coefficient().String(), "-")
	return int64(len(digits)) + int64(d.Exponent())
}

func ValidateCurrency(s string) error {
	if !domain.Currency(s).IsValid() {
		return invalid(ErrUnsupported, MsgInvalidCurrency)
	}
	return nil
}

// ValidatePayment runs the checks in the fixed order email, amount, currency
// and returns the first failure.
func ValidatePayment(email string, amount decimal.Decimal, currency string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := ValidateAmount(amount); err != nil {
		return err
	}
	return ValidateCurrency(currency)
}

// ValidateRequest is ValidatePayment over a decoded request.
func ValidateRequest(req domain.PaymentRequest) error {
	return ValidatePayment(req.RecipientEmail, req.Amount, string(req.Currency))
}

// AsError extracts the validation failure from err, if there is one.
func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
