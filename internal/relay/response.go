package relay

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/heapdog/heapdog/internal/backend"
	"github.com/heapdog/heapdog/internal/domain"
)

// HTTPErrorHandler is the global error handler for echo. Backend error
// envelopes pass through with their upstream status; everything else is
// mapped onto the same envelope shape so clients see one error format.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, apiErr := mapError(err, c.Request().URL.Path)
	if jsonErr := c.JSON(status, apiErr); jsonErr != nil {
		slog.Error("failed to send error response", "error", jsonErr)
	}
}

func mapError(err error, path string) (int, *backend.APIError) {
	var upstream *backend.APIError
	if errors.As(err, &upstream) {
		return upstream.Status, upstream
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		msg, _ := echoErr.Message.(string)
		if msg == "" {
			msg = http.StatusText(echoErr.Code)
		}
		return echoErr.Code, newAPIError(echoErr.Code, "HTTP_ERROR", msg, path, nil)
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, newAPIError(http.StatusNotFound,
			"NOT_FOUND", "The requested resource was not found", path, nil)
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrNoSession):
		return http.StatusUnauthorized, newAPIError(http.StatusUnauthorized,
			"UNAUTHORIZED", "Authentication is required", path, nil)
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, newAPIError(http.StatusForbidden,
			"FORBIDDEN", "You do not have permission to perform this action", path, nil)
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, newAPIError(http.StatusBadRequest,
			"INVALID_INPUT", "The request body is invalid", path, nil)
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, newAPIError(http.StatusConflict,
			"CONFLICT", "The resource already exists or conflicts with current state", path, nil)
	default:
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return http.StatusBadRequest, newAPIError(http.StatusBadRequest,
				"VALIDATION_ERROR", "Validation failed", path,
				[]backend.FieldDetail{{Field: validationErr.Field, Message: validationErr.Message}})
		}

		slog.Error("unhandled error", "error", err, "path", path)
		return http.StatusInternalServerError, newAPIError(http.StatusInternalServerError,
			"INTERNAL_ERROR", "An unexpected error occurred", path, nil)
	}
}

func newAPIError(status int, code, message, path string, details []backend.FieldDetail) *backend.APIError {
	return &backend.APIError{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Status:    status,
		ErrorText: http.StatusText(status),
		Code:      code,
		Message:   message,
		Details:   details,
		Path:      path,
	}
}
