// Package response renders the JSON envelope shared by every API route.
package response

import (
	"net/http"

	deliverycontext "storefront/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// SuccessResponse is {"data": ..., "meta": {...}}.
type SuccessResponse struct {
	Data any       `json:"data"`
	Meta *MetaInfo `json:"meta"`
}

// ErrorResponse is {"error": {...}, "meta": {...}}.
type ErrorResponse struct {
	Error *ErrorInfo `json:"error"`
	Meta  *MetaInfo  `json:"meta"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// MetaInfo lets clients quote the request ID when reporting a problem.
type MetaInfo struct {
	RequestID string `json:"request_id,omitempty"`
}

func Success(c echo.Context, statusCode int, data any) error {
	return c.JSON(statusCode, SuccessResponse{Data: data, Meta: meta(c)})
}

// Message answers with {"data": {"message": message}}.
func Message(c echo.Context, statusCode int, message string) error {
	return Success(c, statusCode, map[string]string{"message": message})
}

// Error writes the error envelope. Details never leave the service on 401, 403
// or 5xx, since they may reveal account state or internals.
func Error(c echo.Context, statusCode int, errorCode, message, details string) error {
	if !exposesDetails(statusCode) {
		details = ""
	}

	return c.JSON(statusCode, ErrorResponse{
		Error: &ErrorInfo{Code: errorCode, Message: message, Details: details},
		Meta:  meta(c),
	})
}

// InternalServerError hides the cause behind a generic 500.
func InternalServerError(c echo.Context, errorCode, message string) error {
	return Error(c, http.StatusInternalServerError, errorCode, message, "")
}

func exposesDetails(statusCode int) bool {
	return statusCode < http.StatusInternalServerError &&
		statusCode != http.StatusUnauthorized &&
		statusCode != http.StatusForbidden
}

func meta(c echo.Context) *MetaInfo {
	return &MetaInfo{RequestID: deliverycontext.GetRequestID(c)}
}
