package relay

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/heapdog/heapdog/internal/backend"
	"github.com/heapdog/heapdog/internal/domain"
)

const defaultSessionAge = 7 * 24 * time.Hour

// CookieConfig controls the HttpOnly session cookie issued on sign-in.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler relays authentication endpoints to the backend and owns the
// session cookie lifecycle.
type AuthHandler struct {
	backend *backend.Client
	cookie  CookieConfig
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(client *backend.Client, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{backend: client, cookie: cookie}
}

// Signin relays credentials to the backend and, on success, stores the issued
// bearer token in an HttpOnly cookie. The cookie lifetime is bounded by the
// token's exp claim when one is present.
func (h *AuthHandler) Signin(c echo.Context) error {
	var body domain.SigninRequest
	if err := c.Bind(&body); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&body); err != nil {
		return err
	}

	raw, err := h.backend.Post(c.Request().Context(), "/auth/signin", "", body)
	if err != nil {
		return err
	}

	var signin domain.SigninResponse
	if err := backend.DecodeData(raw, &signin); err != nil {
		return fmt.Errorf("decode signin response: %w", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    signin.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(sessionAge(signin.Token).Seconds()),
	})

	return c.JSONBlob(http.StatusOK, raw)
}

// Signout clears the session cookie. The backend keeps no session state, so
// discarding the token is the whole operation.
func (h *AuthHandler) Signout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})

	return c.JSON(http.StatusOK, map[string]string{"message": "signed out"})
}

// Signup relays account registration to the backend.
func (h *AuthHandler) Signup(c echo.Context) error {
	var body domain.SignupRequest
	if err := c.Bind(&body); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&body); err != nil {
		return err
	}

	raw, err := h.backend.Post(c.Request().Context(), "/users/signup", "", body)
	if err != nil {
		return err
	}

	return c.JSONBlob(http.StatusOK, raw)
}

// VerifyEmail relays the one-time verification code to the backend.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var body domain.VerifyEmailRequest
	if err := c.Bind(&body); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&body); err != nil {
		return err
	}

	raw, err := h.backend.Post(c.Request().Context(), "/users/verify-email", "", body)
	if err != nil {
		return err
	}

	return c.JSONBlob(http.StatusOK, raw)
}

// Me returns the current user as reported by the backend.
func (h *AuthHandler) Me(c echo.Context) error {
	token, ok := SessionToken(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	raw, err := h.backend.Get(c.Request().Context(), "/auth/whoami", token)
	if err != nil {
		return err
	}

	return c.JSONBlob(http.StatusOK, raw)
}

// sessionAge derives the cookie lifetime from the token's exp claim. The
// signature is not checked here; the backend verifies the token on every call
// and this value only bounds how long the browser keeps the cookie.
func sessionAge(token string) time.Duration {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return defaultSessionAge
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return defaultSessionAge
	}

	age := time.Until(exp.Time)
	if age <= 0 || age > defaultSessionAge {
		slog.Debug("token exp outside cookie bounds", "exp", exp.Time)
		return defaultSessionAge
	}
	return age
}
