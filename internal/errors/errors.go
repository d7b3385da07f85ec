package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	// The message never says which, so the login path cannot be used to probe
	// for registered emails.
	ErrInvalidCredentials = errors.New("incorrect email or password")
	// ErrAccountInactive is returned when the user account is deactivated.
	ErrAccountInactive = errors.New("inactive user")
	// ErrTooManyAttempts is returned when a client is locked out after repeated
	// failed logins.
	ErrTooManyAttempts = errors.New("too many login attempts")
	// ErrInvalidToken covers malformed, tampered, expired and wrong-kind tokens.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrForbidden is returned when an authenticated user lacks the required
	// role, permission or ownership.
	ErrForbidden = errors.New("not enough permissions")
	// ErrResetTokenInvalid is returned for unknown, consumed or expired
	// password reset tokens.
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
	// ErrUserNotFound is returned on admin surfaces; auth paths collapse it
	// into ErrInvalidCredentials or ErrInvalidToken instead.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleNotFound is returned when a named role does not exist.
	ErrRoleNotFound = errors.New("role not found")
	// ErrEmployeeNotFound is returned when a linked employee does not exist.
	ErrEmployeeNotFound = errors.New("employee not found")
	// ErrUserAlreadyExists is returned when registering a duplicate email.
	ErrUserAlreadyExists = errors.New("a user with this email already exists")
	// ErrRoleAlreadyExists is returned when creating a duplicate role name.
	ErrRoleAlreadyExists = errors.New("a role with this name already exists")
	// ErrPermissionAlreadyExists is returned when a permission name is already
	// defined for the same role.
	ErrPermissionAlreadyExists = errors.New("a permission with this name already exists for this role")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
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
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrAccountInactive):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ACCOUNT_INACTIVE")
	case errors.Is(err, ErrTooManyAttempts):
		return NewHTTPError(http.StatusTooManyRequests, err.Error(), "TOO_MANY_ATTEMPTS")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_TOKEN")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrResetTokenInvalid):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "RESET_TOKEN_INVALID")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrRoleNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "ROLE_NOT_FOUND")
	case errors.Is(err, ErrEmployeeNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "EMPLOYEE_NOT_FOUND")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrRoleAlreadyExists):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ROLE_ALREADY_EXISTS")
	case errors.Is(err, ErrPermissionAlreadyExists):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "PERMISSION_ALREADY_EXISTS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
