package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates no usable token exists for the account.
	// Callers treat this as "cannot act on this account now".
	ErrUnauthorized = errors.New("account not authorized")

	// ErrRemoteAPI indicates a provider call failed or was rejected.
	// Unlike ErrNotFound this is potentially transient.
	ErrRemoteAPI = errors.New("remote api failure")

	// ErrAttachmentTooLarge indicates the aggregate attachment payload
	// exceeds the outbound size limit.
	ErrAttachmentTooLarge = errors.New("attachment payload too large")

	// ErrInternal indicates an unexpected mapping or invariant failure.
	ErrInternal = errors.New("internal failure")
)
