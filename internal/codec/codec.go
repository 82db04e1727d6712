// Package codec defines the JSON shapes exchanged between the payment client
// and the backend, and their conversion to the domain types.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/mobile-payments/internal/domain"
)

const (
	wireStatusSuccess = "success"
	wireStatusFailed  = "failed"

	MaxAmountScale         = 8
	MaxAmountIntegerDigits = 18
)

// RequestBody is the POST /payments body.
type RequestBody struct {
	RecipientEmail string      `json:"recipientEmail"`
	Amount         json.Number `json:"amount"`
	Currency       string      `json:"currency"`
}

// ResultBody is the 200 response body.
type ResultBody struct {
	ID             string      `json:"id"`
	RecipientEmail string      `json:"recipientEmail"`
	Amount         json.Number `json:"amount"`
	Currency       string      `json:"currency"`
	Status         string      `json:"status"`
	Timestamp      int64       `json:"timestamp"`
}

// ErrorBody is the body of every non-200 response.
type ErrorBody struct {
	Error string `json:"error"`
}

// UnknownEnumValueError reports a currency or status the client does not know.
type UnknownEnumValueError struct {
	Field string
	Value string
}

func (e *UnknownEnumValueError) Error() string {
	return fmt.Sprintf("unknown %s value %q", e.Field, e.Value)
}

// Pointer fields let decoding tell a missing key from a zero value.
// Amounts stay raw so a quoted number can be told apart from a JSON number.
type requestWire struct {
	RecipientEmail *string          `json:"recipientEmail"`
	Amount         *json.RawMessage `json:"amount"`
	Currency       *string          `json:"currency"`
}

type resultWire struct {
	ID             *string          `json:"id"`
	RecipientEmail *string          `json:"recipientEmail"`
	Amount         *json.RawMessage `json:"amount"`
	Currency       *string          `json:"currency"`
	Status         *string          `json:"status"`
	Timestamp      *int64           `json:"timestamp"`
}

func NewRequestBody(req domain.PaymentRequest) RequestBody {
	return RequestBody{
		RecipientEmail: req.RecipientEmail,
		Amount:         amountNumber(req.Amount),
		Currency:       string(req.Currency),
	}
}

func NewResultBody(res domain.PaymentResult) ResultBody {
	return ResultBody{
		ID:             res.ID,
		RecipientEmail: res.RecipientEmail,
		Amount:         amountNumber(res.Amount),
		Currency:       string(res.Currency),
		Status:         StatusText(res.Status),
		Timestamp:      res.TimestampMillis,
	}
}

// amountNumber writes zero as "0" whatever its exponent.
func amountNumber(d decimal.Decimal) json.Number {
	if d.IsZero() {
		return "0"
	}
	return json.Number(d.String())
}

func EncodeRequest(req domain.PaymentRequest) ([]byte, error) {
	if err := checkAmountShape(req.Amount); err != nil {
		return nil, fmt.Errorf("EncodeRequest: %w", err)
	}
	b, err := json.Marshal(NewRequestBody(req))
	if err != nil {
		return nil, fmt.Errorf("EncodeRequest: %w", err)
	}
	return b, nil
}

func EncodeResult(res domain.PaymentResult) ([]byte, error) {
	if err := checkAmountShape(res.Amount); err != nil {
		return nil, fmt.Errorf("EncodeResult: %w", err)
	}
	b, err := json.Marshal(NewResultBody(res))
	if err != nil {
		return nil, fmt.Errorf("EncodeResult: %w", err)
	}
	return b, nil
}

// DecodeRequest is strict: unknown keys, missing keys, non-numeric amounts and
// trailing data all fail with domain.ErrMalformedRequest. The currency is
// passed through unchecked.
func DecodeRequest(r io.Reader) (domain.PaymentRequest, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var w requestWire
	if err := dec.Decode(&w); err != nil {
		return domain.PaymentRequest{}, fmt.Errorf("DecodeRequest: %v: %w", err, domain.ErrMalformedRequest)
	}
	if err := expectEOF(dec); err != nil {
		return domain.PaymentRequest{}, fmt.Errorf("DecodeRequest: %w", err)
	}

	switch {
	case w.RecipientEmail == nil:
		return domain.PaymentRequest{}, missing("DecodeRequest", "recipientEmail")
	case w.Amount == nil:
		return domain.PaymentRequest{}, missing("DecodeRequest", "amount")
	case w.Currency == nil:
		return domain.PaymentRequest{}, missing("DecodeRequest", "currency")
	}

	amount, err := parseAmount(*w.Amount)
	if err != nil {
		return domain.PaymentRequest{}, fmt.Errorf("DecodeRequest: %w", err)
	}

	return domain.PaymentRequest{
		RecipientEmail: *w.RecipientEmail,
		Amount:         amount,
		Currency:       domain.Currency(*w.Currency),
	}, nil
}

// DecodeResult ignores unknown keys so older clients keep working when the
// backend adds fields.
func DecodeResult(r io.Reader) (domain.PaymentResult, error) {
	var w resultWire
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return domain.PaymentResult{}, fmt.Errorf("DecodeResult: %v: %w", err, domain.ErrMalformedRequest)
	}

	switch {
	case w.ID == nil:
		return domain.PaymentResult{}, missing("DecodeResult", "id")
	case w.RecipientEmail == nil:
		return domain.PaymentResult{}, missing("DecodeResult", "recipientEmail")
	case w.Amount == nil:
		return domain.PaymentResult{}, missing("DecodeResult", "amount")
	case w.Currency == nil:
		return domain.PaymentResult{}, missing("DecodeResult", "currency")
	case w.Status == nil:
		return domain.PaymentResult{}, missing("DecodeResult", "status")
	case w.Timestamp == nil:
		return domain.PaymentResult{}, missing("DecodeResult", "timestamp")
	}

	amount, err := parseAmount(*w.Amount)
	if err != nil {
		return domain.PaymentResult{}, fmt.Errorf("DecodeResult: %w", err)
	}

	currency := domain.Currency(*w.Currency)
	if !currency.IsValid() {
		return domain.PaymentResult{}, fmt.Errorf("DecodeResult: %w", &UnknownEnumValueError{Field: "currency", Value: *w.Currency})
	}

	status, err := ParseStatus(*w.Status)
	if err != nil {
		return domain.PaymentResult{}, fmt.Errorf("DecodeResult: %w", err)
	}

	return domain.PaymentResult{
		ID:              *w.ID,
		RecipientEmail:  *w.RecipientEmail,
		Amount:          amount,
		Currency:        currency,
		Status:          status,
		TimestampMillis: *w.Timestamp,
	}, nil
}

// DecodeError reads an {"error": "..."} body.
func DecodeError(r io.Reader) (string, error) {
	var body struct {
		Error *string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return "", fmt.Errorf("DecodeError: %v: %w", err, domain.ErrMalformedRequest)
	}
	if body.Error == nil {
		return "", missing("DecodeError", "error")
	}
	return *body.Error, nil
}

// StatusText is the wire spelling of a status.
func StatusText(s domain.PaymentStatus) string {
	switch s {
	case domain.PaymentStatusSuccess:
		return wireStatusSuccess
	case domain.PaymentStatusFailed:
		return wireStatusFailed
	}
	return string(s)
}

func ParseStatus(s string) (domain.PaymentStatus, error) {
	switch s {
	case wireStatusSuccess:
		return domain.PaymentStatusSuccess, nil
	case wireStatusFailed:
		return domain.PaymentStatusFailed, nil
	}
	return "", &UnknownEnumValueError{Field: "status", Value: s}
}

func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	var n json.Number
	if len(raw) == 0 || raw[0] == '"' || json.Unmarshal(raw, &n) != nil {
		return decimal.Decimal{}, fmt.Errorf("amount %.32s is not a number: %w", raw, domain.ErrMalformedRequest)
	}
	return ParseAmount(n.String())
}

// ParseAmount parses a decimal amount. Amounts with more than MaxAmountScale
// decimal places or more than MaxAmountIntegerDigits integer digits fail with
// domain.ErrMalformedRequest. The check looks only at the digits and the
// exponent, so an extreme exponent is rejected without being expanded.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("amount %.32q: %w", s, domain.ErrMalformedRequest)
	}
	if d.IsZero() {
		return decimal.Zero, nil
	}
	if err := checkAmountShape(d); err != nil {
		return decimal.Decimal{}, fmt.Errorf("amount %.32q: %w", s, err)
	}
	return d, nil
}

func checkAmountShape(d decimal.Decimal) error {
	if d.IsZero() {
		return nil
	}
	digits := strings.TrimPrefix(d.Coefficient().String(), "-")
	significant := strings.TrimRight(digits, "0")
	exp := int64(d.Exponent()) + int64(len(digits)-len(significant))

	if exp < -MaxAmountScale {
		return fmt.Errorf("more than %d decimal places: %w", MaxAmountScale, domain.ErrMalformedRequest)
	}
	if int64(len(significant))+exp > MaxAmountIntegerDigits {
		return fmt.Errorf("more than %d integer digits: %w", MaxAmountIntegerDigits, domain.ErrMalformedRequest)
	}
	return nil
}

func missing(op, field string) error {
	return fmt.Errorf("%s: missing field %s: %w", op, field, domain.ErrMalformedRequest)
}

func expectEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return fmt.Errorf("trailing data after body: %w", domain.ErrMalformedRequest)
	}
	return nil
}

// IsDecodeFault reports whether err came from a malformed body or an unknown
// enum value.
func IsDecodeFault(err error) bool {
	var enumErr *UnknownEnumValueError
	return errors.Is(err, domain.ErrMalformedRequest) || errors.As(err, &enumErr)
}
