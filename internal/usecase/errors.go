package usecase

import "errors"

var (
	// ErrSignatureInvalid marks an inbound payload that failed webhook
	// authentication. Never processed, always rejected.
	ErrSignatureInvalid = errors.New("webhook signature invalid")

	// ErrUnmatchedOrder marks a verified event whose order reference does
	// not match any merchant order. Reported, never fatal to the endpoint.
	ErrUnmatchedOrder = errors.New("unmatched order reference")
)

type ErrNotFound string

func (e ErrNotFound) Error() string { return string(e) + " not found" }

type ErrBadRequest string

func (e ErrBadRequest) Error() string { return string(e) }
