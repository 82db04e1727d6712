package server

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/josh-kwaku/mobile-payments/internal/handler"
	"github.com/josh-kwaku/mobile-payments/internal/metrics"
	"github.com/josh-kwaku/mobile-payments/internal/middleware"
)

type RouterDependencies struct {
	Payments *handler.PaymentHandler
	// Metrics is optional; when nil /metrics is not served.
	Metrics *metrics.Metrics
}

func NewRouter(logger *slog.Logger, deps RouterDependencies) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("POST /payments", deps.Payments.Create)
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	// Recovery, Metrics and RouteSpan hand the same *http.Request to the mux,
	// which records the matched pattern on it.
	var h http.Handler = mux
	h = middleware.Recovery(h)
	h = middleware.Metrics(deps.Metrics)(h)
	h = middleware.RouteSpan(h)
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.RequestID(h)

	// The route is not known yet when the span starts; RouteSpan renames it.
	return otelhttp.NewHandler(h, "payments-api",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method
		}),
	)
}
