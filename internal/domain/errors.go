package domain

import "errors"

var (
	ErrMalformedRequest = errors.New("malformed request")
	ErrStoreUnavailable = errors.New("store unavailable")
)
