package errors

import (
	"net/http"

	"storefront/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-facing message
	Details() string   // Optional detail, never rendered for 401/403/5xx
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// Is matches on the business code so a copy carrying details still matches the sentinel.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}

	return e.errorCode == t.errorCode
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails returns a copy of e carrying details.
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Validation
var (
	ErrValidationFailed = NewBaseError(http.StatusBadRequest, "VALIDATION_FAILED", "input validation failed", "")
	ErrInvalidProduct   = NewBaseError(http.StatusBadRequest, "INVALID_PRODUCT", "product data is invalid", "")
	ErrInvalidMedia     = NewBaseError(http.StatusBadRequest, "INVALID_MEDIA", "uploaded file is not accepted", "")
	ErrMediaTooLarge    = NewBaseError(http.StatusRequestEntityTooLarge, "MEDIA_TOO_LARGE", "uploaded file exceeds the size limit", "")
)

// Not found
var (
	ErrNotFound          = NewBaseError(http.StatusNotFound, "NOT_FOUND", "resource not found", "")
	ErrUserNotFound      = NewBaseError(http.StatusNotFound, "USER_NOT_FOUND", "user not found", "")
	ErrProductNotFound   = NewBaseError(http.StatusNotFound, "PRODUCT_NOT_FOUND", "product not found", "")
	ErrOrderNotFound     = NewBaseError(http.StatusNotFound, "ORDER_NOT_FOUND", "order not found", "")
	ErrOrderItemNotFound = NewBaseError(http.StatusNotFound, "ORDER_ITEM_NOT_FOUND", "order item not found", "")
	ErrContactNotFound   = NewBaseError(http.StatusNotFound, "CONTACT_NOT_FOUND", "contact request not found", "")
	ErrHeroImageNotFound = NewBaseError(http.StatusNotFound, "HERO_IMAGE_NOT_FOUND", "hero image not found", "")
	ErrSessionNotFound   = NewBaseError(http.StatusNotFound, "SESSION_NOT_FOUND", "session not found", "")
)

// Conflict
var (
	ErrConflict                = NewBaseError(http.StatusConflict, "CONFLICT", "resource was modified concurrently", "")
	ErrUserAlreadyExists       = NewBaseError(http.StatusConflict, "USER_ALREADY_EXISTS", "email is already registered", "")
	ErrOutOfStock              = NewBaseError(http.StatusConflict, "OUT_OF_STOCK", "product is out of stock", "")
	ErrAlreadyRated            = NewBaseError(http.StatusConflict, "ALREADY_RATED", "item has already been rated", "")
	ErrOrderNotDelivered       = NewBaseError(http.StatusConflict, "ORDER_NOT_DELIVERED", "only delivered orders can be rated", "")
	ErrInvalidStatusTransition = NewBaseError(http.StatusConflict, "INVALID_STATUS_TRANSITION", "status change is not allowed", "")
	ErrGoogleAlreadyLinked     = NewBaseError(http.StatusConflict, "GOOGLE_ALREADY_LINKED", "google account is linked to another user", "")
)

// Security
var (
	ErrInvalidPaymentSignature = NewBaseError(http.StatusBadRequest, "INVALID_PAYMENT_SIGNATURE", "payment verification failed", "")
	ErrInvalidCredentials      = NewBaseError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password", "")
	ErrEmailNotVerified        = NewBaseError(http.StatusForbidden, "EMAIL_NOT_VERIFIED", "email address has not been verified", "")
	ErrAccountLocked           = NewBaseError(http.StatusLocked, "ACCOUNT_LOCKED", "account is temporarily locked", "")
	ErrInvalidVerificationCode = NewBaseError(http.StatusBadRequest, "INVALID_VERIFICATION_CODE", "verification code is invalid or expired", "")
	ErrTooManyAttempts         = NewBaseError(http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", "too many verification attempts", "")
	ErrPasswordStrength        = NewBaseError(http.StatusBadRequest, "PASSWORD_STRENGTH", "password is too weak", "")
	ErrUnauthorized            = NewBaseError(http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", "")
	ErrForbidden               = NewBaseError(http.StatusForbidden, "FORBIDDEN", "access denied", "")
	ErrRefreshTokenInvalid     = NewBaseError(http.StatusUnauthorized, "REFRESH_TOKEN_INVALID", "refresh token is invalid or expired", "")
	ErrOAuthTokenInvalid       = NewBaseError(http.StatusUnauthorized, "OAUTH_TOKEN_INVALID", "google sign-in failed", "")
	ErrSessionLimitExceeded    = NewBaseError(http.StatusTooManyRequests, "SESSION_LIMIT_EXCEEDED", "too many active sessions", "")
)

// Upstream
var (
	ErrPaymentGatewayFailed = NewBaseError(http.StatusBadGateway, "PAYMENT_GATEWAY_FAILED", "payment provider is unavailable", "")
	ErrMediaUploadFailed    = NewBaseError(http.StatusBadGateway, "MEDIA_UPLOAD_FAILED", "media storage is unavailable", "")
	ErrNotificationFailed   = NewBaseError(http.StatusBadGateway, "NOTIFICATION_FAILED", "notification could not be sent", "")
)

// Internal
var (
	ErrInternalError     = NewBaseError(http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", "")
	ErrTransactionFailed = NewBaseError(http.StatusInternalServerError, "TRANSACTION_FAILED", "database transaction failed", "")
)

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed").Error()
}

// Unwrap exposes the driver error.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "database operation failed"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
