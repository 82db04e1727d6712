package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/josh-kwaku/mobile-payments/internal/handler"
	"github.com/josh-kwaku/mobile-payments/internal/logging"
)

// Recovery turns a panic into a generic 500. The stack is logged, never sent.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				log := logging.FromContext(r.Context())
				log.Error("panic recovered", "error", err, "stack", string(debug.Stack()))
				handler.RespondAppError(w, handler.ErrInternalError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
