package errors

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	// Unknown email and wrong password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrConfirmationMismatch is returned when password and confirmation differ.
	ErrConfirmationMismatch = errors.New("password confirmation does not match")
	// ErrSelfFollow is returned when a user attempts to follow themselves.
	ErrSelfFollow = errors.New("cannot follow yourself")
	// ErrNotFoundOrForbidden is returned when a micropost is missing or owned by
	// someone other than the acting user.
	ErrNotFoundOrForbidden = errors.New("micropost not found or not yours")
	// ErrForbidden is returned when the acting user lacks permission.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidActivation is returned when an activation token does not match.
	ErrInvalidActivation = errors.New("invalid activation token")
)

// Validation error codes.
const (
	CodeBlank                = "BLANK"
	CodeTooLong              = "TOO_LONG"
	CodeTooShort             = "TOO_SHORT"
	CodeInvalidFormat        = "INVALID_FORMAT"
	CodeTaken                = "TAKEN"
	CodeConfirmationMismatch = "CONFIRMATION_MISMATCH"
)

// FieldError describes a single validation failure on one attribute.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors collects every rule violation found on a record.
// Validation never short-circuits, so callers can report all errors at once.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Field+" "+fe.Message)
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether the collection contains an error with the given code on
// the given field.
func (v ValidationErrors) Has(field, code string) bool {
	for _, fe := range v {
		if fe.Field == field && fe.Code == code {
			return true
		}
	}
	return false
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error  string       `json:"error"`
	Code   string       `json:"code"`
	Fields []FieldError `json:"fields,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     []FieldError
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:  e.Message,
		Code:   e.Code,
		Fields: e.Fields,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		he := NewHTTPError(http.StatusUnprocessableEntity, "validation failed", "VALIDATION_FAILED")
		he.Fields = verrs
		return he
	}

	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrConfirmationMismatch):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "CONFIRMATION_MISMATCH")
	case errors.Is(err, ErrSelfFollow):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "SELF_FOLLOW")
	case errors.Is(err, ErrNotFoundOrForbidden):
		return NewHTTPError(http.StatusNotFound, err.Error(), "MICROPOST_NOT_FOUND")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrInvalidActivation):
		return NewHTTPError(http.StatusUnprocessableEntity, err.Error(), "INVALID_ACTIVATION")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
