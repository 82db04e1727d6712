// Package payment is the backend's mock processor: it gates requests on the
// shared validation rules and accepts everything that passes. No money moves
// and nothing is stored; a repeated request is accepted again under a new id.
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/josh-kwaku/mobile-payments/internal/domain"
	"github.com/josh-kwaku/mobile-payments/internal/validation"
)

const (
	idPrefix       = "payment_"
	publishTimeout = 500 * time.Millisecond
)

type eventPublisher interface {
	PublishAccepted(ctx context.Context, res domain.PaymentResult) error
}

type Service struct {
	events eventPublisher
	logger *slog.Logger
	now    func() time.Time
	newID  func() (string, error)
}

func NewService(events eventPublisher, logger *slog.Logger) *Service {
	return &Service{
		events: events,
		logger: logger,
		now:    time.Now,
		newID:  newPaymentID,
	}
}

// Process returns a *validation.Error for a rejected request. Any other error
// is an internal fault.
func (s *Service) Process(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentResult, error) {
	ctx, span := otel.Tracer("payment").Start(ctx, "payment.process")
	defer span.End()

	if err := validation.ValidateRequest(req); err != nil {
		span.SetAttributes(attribute.String("payment.rejected", err.Error()))
		return nil, fmt.Errorf("Process: %w", err)
	}

	id, err := s.newID()
	if err != nil {
		span.SetStatus(codes.Error, "id generation failed")
		return nil, fmt.Errorf("Process: generate id: %w", err)
	}

	res := domain.PaymentResult{
		ID:              id,
		RecipientEmail:  req.RecipientEmail,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Status:          domain.PaymentStatusSuccess,
		TimestampMillis: s.now().UnixMilli(),
	}
	span.SetAttributes(attribute.String("payment.id", res.ID))

	s.publish(ctx, res)

	return &res, nil
}

// publish never fails the request: the payment is already accepted. The
// Kafka writer only queues here, so publishTimeout bounds a full queue rather
// than broker delivery.
func (s *Service) publish(ctx context.Context, res domain.PaymentResult) {
	if s.events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.events.PublishAccepted(ctx, res); err != nil {
		s.logger.Warn("failed to publish accepted payment", "payment_id", res.ID, "error", err)
	}
}

func newPaymentID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return idPrefix + id.String(), nil
}
