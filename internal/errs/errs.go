// Package errs defines the stable error taxonomy shared by every component.
// HTTP adapters are the only place that translate a Kind into a status code;
// nothing else should pattern-match on error strings.
package errs

import "fmt"

// Kind is one of the stable error codes from spec §7.
type Kind string

const (
	InvalidArgument     Kind = "invalid_argument"
	InvalidFormat       Kind = "invalid_format"
	Taken               Kind = "taken"
	Reserved            Kind = "reserved"
	SimilarToProtected  Kind = "similar_to_protected"
	Inappropriate       Kind = "inappropriate"
	ClaimRequired       Kind = "claim_required"
	TransferExpired     Kind = "transfer_expired"
	TransferConflict    Kind = "transfer_conflict"
	Unauthenticated     Kind = "unauthenticated"
	InvalidCredentials  Kind = "invalid_credentials"
	AccountLocked       Kind = "account_locked"
	AccountInactive     Kind = "account_inactive"
	MFARequired         Kind = "mfa_required"
	MFAFailed           Kind = "mfa_failed"
	InvalidToken        Kind = "invalid_token"
	InvalidGrant        Kind = "invalid_grant"
	InvalidClient       Kind = "invalid_client"
	InvalidScope        Kind = "invalid_scope"
	ReuseDetected       Kind = "reuse_detected"
	Conflict            Kind = "conflict"
	NotFound            Kind = "not_found"
	RateLimited         Kind = "rate_limited"
	TransientError      Kind = "transient_error"
	PermanentError      Kind = "permanent_error"
	Internal            Kind = "internal"
)

// Error is the uniform error envelope every component returns. Message is
// always user-safe; Details is optional context for logs, never echoed to
// the caller verbatim by the HTTP layer.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds an *Error. Message should already be user-safe.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an *Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetail attaches a single diagnostic key/value and returns the
// receiver for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if ae, ok := err.(*Error); ok {
		e = ae
	} else {
		return false
	}
	return e.Kind == kind
}

// KindOf extracts the Kind from err, defaulting to Internal for unrecognized
// errors so callers never leak raw infrastructure errors to a client.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return Internal
}

// HTTPStatus maps a Kind to the status code from spec §7.
func HTTPStatus(kind Kind) int {
	switch kind {
	case InvalidArgument, InvalidFormat, InvalidScope, InvalidGrant, InvalidClient:
		return 400
	case Unauthenticated, InvalidCredentials, InvalidToken, MFAFailed:
		return 401
	case AccountLocked:
		return 423
	case AccountInactive:
		return 403
	case NotFound:
		return 404
	case Conflict, Taken, Reserved, SimilarToProtected, Inappropriate, ReuseDetected, ClaimRequired, MFARequired, TransferExpired, TransferConflict:
		return 409
	case RateLimited:
		return 429
	case TransientError:
		return 503
	case Internal, PermanentError:
		return 500
	default:
		return 500
	}
}
