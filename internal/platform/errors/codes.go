// Package errors provides structured error handling for the auth service.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Configuration errors. Fatal to the operation, never retried.
	CodeInvalidOrigin     Code = "INVALID_ORIGIN"
	CodeInvalidAuthHash   Code = "INVALID_AUTH_HASH"
	CodeInvalidPrivateKey Code = "INVALID_PRIVATE_KEY"

	// Not-found errors. Expected, user-facing, low severity.
	CodeUserNotFound Code = "USER_NOT_FOUND"
	CodeNoPasskey    Code = "NO_PASSKEY"

	// Availability errors. Transient infrastructure conditions.
	CodeNoAvailableRelayer Code = "NO_AVAILABLE_RELAYER"

	// Decoding errors. Data corruption or secret mismatch.
	CodeMalformedPasskey Code = "MALFORMED_PASSKEY"
	CodeDecryptFailed    Code = "DECRYPT_FAILED"

	// Token errors
	CodeInvalidAuthorization Code = "INVALID_AUTHORIZATION"

	// Request errors
	CodeInvalidBody Code = "INVALID_BODY"

	// Catch-all for the authentication options flow. Internals are logged
	// server-side and never echoed to the caller.
	CodeAuthenticationOptions Code = "FAILED_GENERATE_OPTIONS"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// BadRequest - validation failures, expected user-facing conditions
	case CodeInvalidOrigin,
		CodeNoPasskey,
		CodeInvalidBody:
		return http.StatusBadRequest

	// Unauthorized - token failures
	case CodeInvalidAuthorization:
		return http.StatusUnauthorized

	// NotFound - no account behind the derived address
	case CodeUserNotFound:
		return http.StatusNotFound

	// ServiceUnavailable - transient; caller may retry after a delay
	case CodeNoAvailableRelayer:
		return http.StatusServiceUnavailable

	// Internal - misconfiguration, corruption, and the generic catch-all
	case CodeInvalidAuthHash,
		CodeInvalidPrivateKey,
		CodeMalformedPasskey,
		CodeDecryptFailed,
		CodeAuthenticationOptions:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
