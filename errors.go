package useradmin

import (
	"github.com/goliatone/go-errors"
)

const (
	// TextCodeTokenMissing means the request carried no bearer token
	TextCodeTokenMissing = "TOKEN_MISSING"
	// TextCodeTokenExpired means the token is past its expiry
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed means the token could not be parsed or its signature failed
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
	// TextCodeTokenRevoked means the token predates the provider's revocation watermark
	TextCodeTokenRevoked = "TOKEN_REVOKED"
	// TextCodeUserDeleted means a tombstone exists for the principal
	TextCodeUserDeleted = "USER_DELETED"
	// TextCodeUserNotFound means the identity provider has no such principal
	TextCodeUserNotFound = "USER_NOT_FOUND"
	// TextCodeUserDisabled means the principal exists but is disabled
	TextCodeUserDisabled = "USER_DISABLED"
	// TextCodeNotAdmin means the caller is authenticated but not on the admin allow-list
	TextCodeNotAdmin = "NOT_ADMIN"
)

// ErrMissingToken is returned when a request has no Authorization bearer value
var ErrMissingToken = errors.New("missing authorization token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMissing).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned for tokens past their expiry
var ErrTokenExpired = errors.New("authorization token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that fail parsing or signature checks
var ErrTokenMalformed = errors.New("authorization token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenRevoked is returned for tokens issued before the principal's
// revocation watermark
var ErrTokenRevoked = errors.New("authorization token has been revoked", errors.CategoryAuth).
	WithTextCode(TextCodeTokenRevoked).
	WithCode(errors.CodeUnauthorized)

// ErrPrincipalDisabled is returned when the principal is administratively disabled
var ErrPrincipalDisabled = errors.New("principal is disabled", errors.CategoryAuth).
	WithTextCode(TextCodeUserDisabled).
	WithCode(errors.CodeUnauthorized)

// ErrPrincipalNotFound is returned when the identity provider has no record
var ErrPrincipalNotFound = errors.New("principal not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrNotAdmin is returned for authenticated callers outside the admin allow-list
var ErrNotAdmin = errors.New("caller is not an administrator", errors.CategoryAuthz).
	WithTextCode(TextCodeNotAdmin).
	WithCode(errors.CodeForbidden)

// ErrTombstoneNotFound is returned when no tombstone exists for a principal
var ErrTombstoneNotFound = errors.New("tombstone not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// ErrProfileNotFound is returned when no profile document exists for a principal
var ErrProfileNotFound = errors.New("profile document not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// IsAuthError reports whether err carries an authentication category
func IsAuthError(err error) bool {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return false
	}
	return rich.Category == errors.CategoryAuth
}

// StatusFromError maps a rich error to the HTTP status the admin API uses
func StatusFromError(err error) int {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return 500
	}

	switch rich.Category {
	case errors.CategoryAuth:
		return 401
	case errors.CategoryAuthz:
		return 403
	case errors.CategoryNotFound:
		return 404
	case errors.CategoryBadInput, errors.CategoryValidation:
		return 400
	default:
		return 500
	}
}
