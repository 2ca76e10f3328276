// Package handlers defines HTTP-layer error codes used across all API
// endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP
// responses (via the `fail()` helper in this package). These codes provide
// clients with a stable, machine-readable error taxonomy that supplements
// human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly
//     noted.
//   - Generic codes (e.g., bad_request, unauthorized, conflict) mirror common
//     HTTP status semantics to aid interoperability.
//   - Domain-specific codes (banned, group_banned, license_invalid) cover
//     dispatch outcomes that cannot be conveyed by status alone.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "license_invalid",
//	  "message": "license code already activated"
//	}
package handlers

import "github.com/tbourn/go-groupbot-backend/internal/services"

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeBanned           = "banned"
	ErrCodeGroupBanned      = "group_banned"
	ErrCodeLicenseInvalid   = "license_invalid"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// codeForKind maps a dispatch error kind to its wire-level error code.
func codeForKind(kind services.ErrorKind) string {
	switch kind {
	case services.KindValidation:
		return ErrCodeBadRequest
	case services.KindPermission:
		return ErrCodeForbidden
	case services.KindBanned:
		return ErrCodeBanned
	case services.KindGroupBanned:
		return ErrCodeGroupBanned
	case services.KindNotFound:
		return ErrCodeNotFound
	case services.KindLicenseInvalid:
		return ErrCodeLicenseInvalid
	default:
		return ErrCodeInternal
	}
}
