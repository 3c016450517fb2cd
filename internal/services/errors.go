// Package services holds the request pipeline for the combinations API: the
// persistence pipeline that stores one request atomically, the orchestrator
// that derives, generates and persists, and the read-back and idempotency
// helpers used by the HTTP layer.
//
// This file defines the closed error taxonomy every service method returns.
// Translation into HTTP status codes happens in the handlers.
package services

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure.
type Kind uint8

const (
	// KindInvalidInput is a caller error. Nothing was persisted; retrying the
	// same request fails the same way.
	KindInvalidInput Kind = iota + 1
	// KindPersistence is a failed transaction. It was rolled back in full.
	KindPersistence
	// KindResourceExhausted means no transaction slot was free in time.
	// Nothing ran; retry with backoff.
	KindResourceExhausted
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindPersistence:
		return "persistence error"
	case KindResourceExhausted:
		return "resource exhausted"
	default:
		return "unknown"
	}
}

// Error is the tagged error returned by services. Msg is safe to show to
// callers; Err keeps the underlying cause for logs and errors.Is/As.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the Err* sentinels below work
// with errors.Is regardless of message or cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrPersistence       = &Error{Kind: KindPersistence}
	ErrResourceExhausted = &Error{Kind: KindResourceExhausted}
)

// ErrResponseNotFound is returned by read-back lookups for an unknown id.
var ErrResponseNotFound = errors.New("response not found")

// ErrIdempotencyConflict is returned when an Idempotency-Key is reused with a
// different request body.
var ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")

func invalidInput(cause error) error {
	return &Error{Kind: KindInvalidInput, Msg: cause.Error(), Err: cause}
}

func invalidInputf(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

func persistenceError(msg string, cause error) error {
	return &Error{Kind: KindPersistence, Msg: msg, Err: cause}
}

func resourceExhausted(cause error) error {
	return &Error{Kind: KindResourceExhausted, Msg: "no database transaction available", Err: cause}
}

// KindOf returns the Kind of err, or 0 when err is not a service error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Retryable reports whether the same request may succeed if retried later.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindPersistence, KindResourceExhausted:
		return true
	default:
		return false
	}
}
