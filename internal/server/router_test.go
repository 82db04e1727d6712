package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/josh-kwaku/mobile-payments/internal/codec"
	"github.com/josh-kwaku/mobile-payments/internal/domain"
	"github.com/josh-kwaku/mobile-payments/internal/handler"
	"github.com/josh-kwaku/mobile-payments/internal/logging"
	"github.com/josh-kwaku/mobile-payments/internal/metrics"
	"github.com/josh-kwaku/mobile-payments/internal/service/payment"
)

func newTestRouter(t *testing.T) (http.Handler, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	svc := payment.NewService(nil, logging.Discard())
	return NewRouter(logging.Discard(), RouterDependencies{
		Payments: handler.NewPaymentHandler(svc, m),
		Metrics:  m,
	}), m
}

func postPayment(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPaymentScenarios(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantError string
	}{
		{
			name:     "valid USD payment",
			body:     `{"recipientEmail":"test@example.com","amount":50.00,"currency":"USD"}`,
			wantCode: http.StatusOK,
		},
		{
			name:      "invalid email",
			body:      `{"recipientEmail":"invalid-email","amount":100.00,"currency":"EUR"}`,
			wantCode:  http.StatusBadRequest,
			wantError: "Invalid email format",
		},
		{
			name:      "zero amount",
			body:      `{"recipientEmail":"test@example.com","amount":0,"currency":"USD"}`,
			wantCode:  http.StatusBadRequest,
			wantError: "Amount must be greater than 0",
		},
		{
			name:      "amount above limit",
			body:      `{"recipientEmail":"test@example.com","amount":20000,"currency":"USD"}`,
			wantCode:  http.StatusBadRequest,
			wantError: "Amount cannot exceed 10,000",
		},
		{
			name:      "unsupported currency",
			body:      `{"recipientEmail":"test@example.com","amount":10,"currency":"GBP"}`,
			wantCode:  http.StatusBadRequest,
			wantError: "Unsupported currency. Use USD or EUR",
		},
		{
			name:      "amount as quoted string",
			body:      `{"recipientEmail":"test@example.com","amount":"50","currency":"USD"}`,
			wantCode:  http.StatusBadRequest,
			wantError: "Invalid request body",
		},
		{
			name:      "amount with extreme negative exponent",
			body:      `{"recipientEmail":"test@example.com","amount":1e-20000000,"currency":"USD"}`,
			wantCode:  http.StatusBadRequest,
			wantError: "Invalid request body",
		},
		{
			name:      "amount with extreme positive exponent",
			body:      `{"recipientEmail":"test@example.com","amount":1e999999999,"currency":"USD"}`,
			wantCode:  http.StatusBadRequest,
			wantError: "Invalid request body",
		},
		{
			name:      "malformed body",
			body:      `{"recipientEmail":`,
			wantCode:  http.StatusBadRequest,
			wantError: "Invalid request body",
		},
	}

	h, _ := newTestRouter(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postPayment(t, h, tc.body)

			require.Equal(t, tc.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			if tc.wantError != "" {
				assert.JSONEq(t, `{"error":"`+tc.wantError+`"}`, rec.Body.String())
				return
			}

			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "success", body["status"])
			assert.Equal(t, "test@example.com", body["recipientEmail"])
			assert.Equal(t, 50.0, body["amount"])
			assert.Equal(t, "USD", body["currency"])
			assert.NotEmpty(t, body["id"])
			assert.NotZero(t, body["timestamp"])
		})
	}
}

func TestSameRequestTwiceIsAcceptedTwice(t *testing.T) {
	h, _ := newTestRouter(t)
	body := `{"recipientEmail":"test@example.com","amount":5,"currency":"EUR"}`

	first, err := codec.DecodeResult(postPayment(t, h, body).Body)
	require.NoError(t, err)
	second, err := codec.DecodeResult(postPayment(t, h, body).Body)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestHealth(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/payments", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestRequestIDEchoed(t *testing.T) {
	h, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestMetricsEndpointCountsOutcomes(t *testing.T) {
	h, _ := newTestRouter(t)

	postPayment(t, h, `{"recipientEmail":"test@example.com","amount":1,"currency":"USD"}`)
	postPayment(t, h, `{"recipientEmail":"nope","amount":1,"currency":"USD"}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `payments_processed_total{outcome="accepted"} 1`)
	assert.Contains(t, rec.Body.String(), `payments_processed_total{outcome="rejected"} 1`)
	assert.Contains(t, rec.Body.String(), `route="POST /payments"`)
}

type panickingProcessor struct{}

func (panickingProcessor) Process(context.Context, domain.PaymentRequest) (*domain.PaymentResult, error) {
	panic("nil map write in processor")
}

func TestPanicBecomesGeneric500(t *testing.T) {
	h := NewRouter(logging.Discard(), RouterDependencies{
		Payments: handler.NewPaymentHandler(panickingProcessor{}, nil),
	})

	rec := postPayment(t, h, `{"recipientEmail":"test@example.com","amount":1,"currency":"USD"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "nil map")
}

func TestWrongMethod(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/payments", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPanicIsCountedInRequestMetrics(t *testing.T) {
	m := metrics.New()
	h := NewRouter(logging.Discard(), RouterDependencies{
		Payments: handler.NewPaymentHandler(panickingProcessor{}, m),
		Metrics:  m,
	})

	postPayment(t, h, `{"recipientEmail":"test@example.com","amount":1,"currency":"USD"}`)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Regexp(t, `http_request_duration_seconds_count\{method="POST",route="POST /payments",status="500"\} 1`, rec.Body.String())
}

func TestSpanNamesUseMatchedRoute(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)

	h, _ := newTestRouter(t)
	postPayment(t, h, `{"recipientEmail":"test@example.com","amount":1,"currency":"USD"}`)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/scan/a1b2c3/d4e5f6", nil))

	names := map[string]bool{}
	for _, s := range sr.Ended() {
		names[s.Name()] = true
	}
	assert.True(t, names["POST /payments"], "got %v", names)
	assert.True(t, names[http.MethodGet], "got %v", names)
	for name := range names {
		assert.NotContains(t, name, "a1b2c3")
	}
}
