package handler

import (
	"context"
	"net/http"

	"github.com/josh-kwaku/mobile-payments/internal/codec"
	"github.com/josh-kwaku/mobile-payments/internal/domain"
	"github.com/josh-kwaku/mobile-payments/internal/logging"
	"github.com/josh-kwaku/mobile-payments/internal/metrics"
	"github.com/josh-kwaku/mobile-payments/internal/validation"
)

const maxRequestBody = 64 << 10

type paymentProcessor interface {
	Process(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentResult, error)
}

type PaymentHandler struct {
	payments paymentProcessor
	metrics  *metrics.Metrics
}

func NewPaymentHandler(payments paymentProcessor, m *metrics.Metrics) *PaymentHandler {
	return &PaymentHandler{payments: payments, metrics: m}
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	req, err := codec.DecodeRequest(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		log.Warn("malformed payment request", "error", err)
		h.metrics.PaymentProcessed(metrics.OutcomeRejected)
		RespondAppError(w, ErrInvalidRequest)
		return
	}

	res, err := h.payments.Process(r.Context(), req)
	if err != nil {
		appErr := AppErrorFor(err)
		if _, ok := validation.AsError(err); ok {
			log.Info("payment rejected", "code", appErr.Code, "currency", req.Currency)
			h.metrics.PaymentProcessed(metrics.OutcomeRejected)
		} else {
			log.Error("payment processing failed", "error", err)
			h.metrics.PaymentProcessed(metrics.OutcomeError)
		}
		RespondAppError(w, appErr)
		return
	}

	log.Info("payment accepted", "payment_id", res.ID, "currency", res.Currency)
	h.metrics.PaymentProcessed(metrics.OutcomeAccepted)
	RespondJSON(w, http.StatusOK, codec.NewResultBody(*res))
}
