// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable; clients branch on them rather
// than on messages. Generic codes mirror HTTP status semantics; the
// domain-specific ones map the service error taxonomy:
//
//	invalid input       -> 400 bad_request
//	resource exhausted  -> 503 resource_exhausted (+ Retry-After)
//	persistence failure -> 500 persistence_failed
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "bad_request",
//	  "message": "Invalid request",
//	  "details": ["Length must be a positive integer"]
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeConflict         = "conflict"
	ErrCodePayloadTooLarge  = "payload_too_large"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeUnavailable      = "service_unavailable"

	// Domain-specific:
	ErrCodeResourceExhausted = "resource_exhausted"
	ErrCodePersistenceFailed = "persistence_failed"
)
