package relay

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/heapdog/heapdog/internal/domain"
)

const contextKeySession = "session_token"

// RequestLogger logs each HTTP request with structured fields.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			slog.Info("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)

			return err
		}
	}
}

// SessionAuth extracts the bearer token from the HttpOnly session cookie and
// injects it into the echo context. Requests without the cookie are rejected;
// the token itself is opaque here, the backend verifies it on every call.
func SessionAuth(cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				return domain.ErrUnauthorized
			}

			c.Set(contextKeySession, cookie.Value)
			return next(c)
		}
	}
}

// SessionToken extracts the session bearer token from the echo context.
func SessionToken(c echo.Context) (string, bool) {
	token, ok := c.Get(contextKeySession).(string)
	return token, ok && token != ""
}
