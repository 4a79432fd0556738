package relay

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/heapdog/heapdog/internal/backend"
	"github.com/heapdog/heapdog/internal/domain"
)

// NotificationHandler relays the notification endpoints. Unlike the
// organization routes these strip the backend envelope and return the inner
// data directly, which is the shape the notification client consumes.
type NotificationHandler struct {
	backend *backend.Client
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(client *backend.Client) *NotificationHandler {
	return &NotificationHandler{backend: client}
}

// StreamToken obtains a short-lived push-stream credential for the session.
func (h *NotificationHandler) StreamToken(c echo.Context) error {
	token, ok := SessionToken(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	raw, err := h.backend.Get(c.Request().Context(), "/sse-token/obtain", token)
	if err != nil {
		return err
	}

	return h.respondData(c, raw)
}

// List returns one page of notification history.
func (h *NotificationHandler) List(c echo.Context) error {
	token, ok := SessionToken(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	page := c.QueryParam("page")
	if page == "" {
		page = "1"
	}
	size := c.QueryParam("size")
	if size == "" {
		size = "10"
	}

	path := fmt.Sprintf("/notifications?page=%s&size=%s",
		url.QueryEscape(page), url.QueryEscape(size))
	raw, err := h.backend.Get(c.Request().Context(), path, token)
	if err != nil {
		return err
	}

	return h.respondData(c, raw)
}

// UnreadCount returns the authoritative unread/total counters.
func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	token, ok := SessionToken(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	raw, err := h.backend.Get(c.Request().Context(), "/notifications/unread-count", token)
	if err != nil {
		return err
	}

	return h.respondData(c, raw)
}

type markReadRequest struct {
	NotificationIDs []int64 `json:"notificationIds" validate:"required,min=1"`
}

// MarkRead relays a batched mark-as-read request. The id set must be
// non-empty; the backend answers with the updated counters.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	token, ok := SessionToken(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var body markReadRequest
	if err := c.Bind(&body); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&body); err != nil {
		return err
	}

	raw, err := h.backend.Patch(c.Request().Context(), "/notifications/read", token, body)
	if err != nil {
		return err
	}

	return h.respondData(c, raw)
}

func (h *NotificationHandler) respondData(c echo.Context, raw []byte) error {
	data, err := backend.Data(raw)
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, data)
}
