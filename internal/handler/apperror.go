package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrInternalError  = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"}

	ErrInvalidEmail        = &AppError{http.StatusBadRequest, "INVALID_EMAIL", "Invalid email format"}
	ErrInvalidAmount       = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than 0"}
	ErrAmountTooLarge      = &AppError{http.StatusBadRequest, "AMOUNT_TOO_LARGE", "Amount cannot exceed 10,000"}
	ErrUnsupportedCurrency = &AppError{http.StatusBadRequest, "UNSUPPORTED_CURRENCY", "Unsupported currency. Use USD or EUR"}
)
