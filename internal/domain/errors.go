package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// OTP lifecycle outcomes. Handlers collapse all of them into a generic
	// invalid/expired message so responses don't aid brute-forcing.
	ErrRateLimited = errors.New("rate limited")
	ErrExpired     = errors.New("expired")
	ErrExhausted   = errors.New("attempts exhausted")
	ErrInvalidCode = errors.New("invalid code")
)
