package diary

import (
	"net/http"

	"github.com/goliatone/go-errors"
)

// Authentication failures share one category (and one HTTP shape) on purpose:
// clients must not be able to tell a bad password from an unknown email, or an
// expired token from a revoked one.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("INVALID_CREDENTIALS")

	// ErrNotAuthenticated is returned when no usable token is present.
	ErrNotAuthenticated = errors.New("not authenticated", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("NOT_AUTHENTICATED")

	// ErrTokenInvalid covers malformed, tampered, and expired tokens.
	ErrTokenInvalid = errors.New("invalid or expired token", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("TOKEN_INVALID")

	// ErrTokenTypeMismatch is an access token where a refresh is required or
	// vice versa. Internal only; it renders identically to ErrTokenInvalid.
	ErrTokenTypeMismatch = errors.New("invalid token type", errors.CategoryAuth).
				WithCode(errors.CodeUnauthorized).
				WithTextCode("TOKEN_TYPE_MISMATCH")

	// ErrTokenRevoked is a structurally valid token whose id is blacklisted.
	ErrTokenRevoked = errors.New("token revoked", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode("TOKEN_REVOKED")

	// ErrMismatchedHashAndPassword is the internal bcrypt mismatch error.
	ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
					WithCode(errors.CodeUnauthorized).
					WithTextCode("PASSWORD_MISMATCH")
)

var (
	// ErrEmailTaken signals a duplicate registration.
	ErrEmailTaken = errors.New("email already registered", errors.CategoryConflict).
			WithCode(errors.CodeConflict).
			WithTextCode("EMAIL_TAKEN")

	// ErrTagExists signals a duplicate tag name for the same user.
	ErrTagExists = errors.New("tag already exists", errors.CategoryConflict).
			WithCode(errors.CodeConflict).
			WithTextCode("TAG_EXISTS")

	// ErrNoEmptyString rejects empty passwords before hashing.
	ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest).
				WithTextCode("EMPTY_VALUE")
)

// IsAuthError reports whether err belongs to the uniform unauthenticated
// class. Every failure in this class must render the same to clients.
func IsAuthError(err error) bool {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.Category == errors.CategoryAuth || richErr.Category == errors.CategoryAuthz
}

// HTTPStatus maps an error to a response status. Unknown errors are server
// errors.
func HTTPStatus(err error) int {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return http.StatusInternalServerError
	}

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return http.StatusUnauthorized
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// NewNotFound builds a NotFound error for a missing resource.
func NewNotFound(resource string) *errors.Error {
	return errors.New(resource+" not found", errors.CategoryNotFound).
		WithCode(errors.CodeNotFound)
}

// NewValidation builds a field-level validation error.
func NewValidation(msg string, fields map[string]any) *errors.Error {
	e := errors.New(msg, errors.CategoryValidation).
		WithCode(errors.CodeBadRequest).
		WithTextCode("VALIDATION")
	if len(fields) > 0 {
		e = e.WithMetadata(fields)
	}
	return e
}
