// Package submission is the client side of a payment: it sends one request to
// the backend, interprets the outcome and mirrors accepted payments into the
// local transaction store.
package submission

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/josh-kwaku/mobile-payments/internal/codec"
	"github.com/josh-kwaku/mobile-payments/internal/domain"
	"github.com/josh-kwaku/mobile-payments/internal/validation"
)

const (
	maxResponseBody = 1 << 20
	saveTimeout     = 5 * time.Second

	// GenericFailureMessage is what a user sees for a transport failure.
	GenericFailureMessage = "Failed to send payment"
)

var (
	// ErrRejected means the backend refused the payment with a 400.
	ErrRejected = errors.New("payment rejected")
	// ErrTransport covers network failures, unexpected statuses and
	// undecodable responses.
	ErrTransport = errors.New("payment transport failure")
)

// Error is a failed submission. It unwraps to ErrRejected or ErrTransport.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

// UserMessage is the text to show for this failure. Rejections are shown
// verbatim.
func (e *Error) UserMessage() string {
	if errors.Is(e.Kind, ErrRejected) {
		return e.Message
	}
	return GenericFailureMessage
}

func rejected(msg string) *Error { return &Error{Kind: ErrRejected, Message: msg} }

func transport(format string, args ...any) *Error {
	return &Error{Kind: ErrTransport, Message: fmt.Sprintf(format, args...)}
}

type recordSaver interface {
	Save(ctx context.Context, rec domain.TransactionRecord) error
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	// LocalPrecheck runs the shared validator before the network call.
	LocalPrecheck bool
}

type Service struct {
	baseURL    string
	httpClient *http.Client
	store      recordSaver
	logger     *slog.Logger
	precheck   bool
	inFlight   atomic.Int64
}

func NewService(cfg Config, store recordSaver, logger *slog.Logger) *Service {
	return &Service{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		store:    store,
		logger:   logger,
		precheck: cfg.LocalPrecheck,
	}
}

// InFlight reports how many Submit calls are outstanding. Callers use it to
// keep a second submit for the same action from starting.
func (s *Service) InFlight() int64 {
	return s.inFlight.Load()
}

// Submit makes exactly one call to POST /payments. It returns a
// *validation.Error when the local precheck fails and a *Error for any other
// failure. On success the accepted record has already been offered to the
// store; a store failure is logged and does not fail the submission.
func (s *Service) Submit(ctx context.Context, email string, amount decimal.Decimal, currency domain.Currency) (*domain.TransactionRecord, error) {
	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	ctx, span := otel.Tracer("submission").Start(ctx, "submission.submit")
	defer span.End()

	rec, err := s.submit(ctx, email, amount, currency)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("Submit: %w", err)
	}
	span.SetAttributes(attribute.String("payment.id", rec.ID))
	return rec, nil
}

func (s *Service) submit(ctx context.Context, email string, amount decimal.Decimal, currency domain.Currency) (*domain.TransactionRecord, error) {
	if s.precheck {
		if err := validation.ValidatePayment(email, amount, string(currency)); err != nil {
			return nil, err
		}
	}

	body, err := codec.EncodeRequest(domain.PaymentRequest{
		RecipientEmail: email,
		Amount:         amount,
		Currency:       currency,
	})
	if err != nil {
		return nil, transport("Network error: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/payments", bytes.NewReader(body))
	if err != nil {
		return nil, transport("Network error: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	s.logger.Info("payment request sent", "currency", currency)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		s.logger.Warn("payment request failed", "error", err)
		return nil, transport("Network error: %v", err)
	}
	defer resp.Body.Close()

	s.logger.Info("payment response received",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	respBody := io.LimitReader(resp.Body, maxResponseBody)

	switch resp.StatusCode {
	case http.StatusOK:
		res, err := codec.DecodeResult(respBody)
		if err != nil {
			s.logger.Warn("undecodable payment response", "error", err)
			return nil, transport("Network error: %v", err)
		}
		rec := domain.NewTransactionRecord(res)
		s.save(ctx, rec)
		return &rec, nil

	case http.StatusBadRequest:
		msg, err := codec.DecodeError(respBody)
		if err != nil {
			return nil, transport("Network error: %v", err)
		}
		return nil, rejected(msg)

	default:
		return nil, transport("Unexpected error: %d", resp.StatusCode)
	}
}

// save outlives the caller's context: the payment is already accepted.
func (s *Service) save(ctx context.Context, rec domain.TransactionRecord) {
	if s.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()

	if err := s.store.Save(ctx, rec); err != nil {
		s.logger.Warn("failed to record accepted payment", "payment_id", rec.ID, "error", err)
	}
}

// AsError extracts the submission failure from err, if there is one.
func AsError(err error) (*Error, bool) {
	var serr *Error
	if errors.As(err, &serr) {
		return serr, true
	}
	return nil, false
}
