package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/josh-kwaku/mobile-payments/internal/codec"
	"github.com/josh-kwaku/mobile-payments/internal/domain"
	"github.com/josh-kwaku/mobile-payments/internal/validation"
)

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondAppError(w http.ResponseWriter, appErr *AppError) {
	RespondJSON(w, appErr.Status, codec.ErrorBody{Error: appErr.Message})
}

// AppErrorFor maps an error from decoding or processing to its HTTP form.
// Anything unrecognised becomes a bare 500 so internals never reach the body.
func AppErrorFor(err error) *AppError {
	switch {
	case errors.Is(err, domain.ErrMalformedRequest):
		return ErrInvalidRequest
	case errors.Is(err, validation.ErrInvalidFormat):
		return ErrInvalidEmail
	case errors.Is(err, validation.ErrUnsupported):
		return ErrUnsupportedCurrency
	case errors.Is(err, validation.ErrOutOfRange):
		if verr, ok := validation.AsError(err); ok && verr.Message == validation.MsgAmountTooLarge {
			return ErrAmountTooLarge
		}
		return ErrInvalidAmount
	default:
		return ErrInternalError
	}
}
