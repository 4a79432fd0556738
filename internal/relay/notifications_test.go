package relay

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heapdog/heapdog/internal/backend"
)

const testCookie = "auth_token"

// newRelay builds an echo instance with the notification routes mounted the
// way cmd/relay does.
func newRelay(t *testing.T, backendURL string) *echo.Echo {
	t.Helper()

	client := backend.New(backendURL, 5*time.Second)
	h := NewNotificationHandler(client)

	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = NewAppValidator()

	session := e.Group("/api", SessionAuth(testCookie))
	session.GET("/sse-token", h.StreamToken)
	session.GET("/notifications", h.List)
	session.GET("/notifications/unread-count", h.UnreadCount)
	session.PATCH("/notifications/read", h.MarkRead)

	return e
}

func withSession(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "session-token"})
	return req
}

func TestNotifications_RequireSession(t *testing.T) {
	e := newRelay(t, "http://backend.invalid")

	paths := []string{
		"/api/sse-token",
		"/api/notifications",
		"/api/notifications/unread-count",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
		})
	}
}

func TestStreamToken_StripsEnvelope(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sse-token/obtain", r.URL.Path)
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"timestamp":"t","data":{"token":"stream-42"},"path":"/sse-token/obtain"}`)) //nolint:errcheck
	}))
	defer upstream.Close()

	e := newRelay(t, upstream.URL)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/sse-token", nil))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"token":"stream-42"}`, rec.Body.String())
}

func TestNotificationList_DefaultsPageAndSize(t *testing.T) {
	var query string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"timestamp":"t","data":{"contents":[],"meta":{"page":1,"size":10,"totalPages":0,"totalElements":0,"numberOfElements":0,"first":true,"last":true}},"path":"/notifications"}`)) //nolint:errcheck
	}))
	defer upstream.Close()

	e := newRelay(t, upstream.URL)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/notifications", nil))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "page=1&size=10", query)
	assert.Contains(t, rec.Body.String(), `"contents"`)
}

func TestMarkRead_RejectsEmptyIDSet(t *testing.T) {
	e := newRelay(t, "http://backend.invalid")

	tests := []struct {
		name string
		body string
	}{
		{"empty_array", `{"notificationIds":[]}`},
		{"missing_field", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withSession(httptest.NewRequest(http.MethodPatch,
				"/api/notifications/read", strings.NewReader(tt.body)))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestMarkRead_ForwardsIDsAndReturnsCounters(t *testing.T) {
	var forwarded string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/notifications/read", r.URL.Path)
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf) //nolint:errcheck
		forwarded = string(buf)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"timestamp":"t","data":{"unread":0,"total":10},"path":"/notifications/read"}`)) //nolint:errcheck
	}))
	defer upstream.Close()

	e := newRelay(t, upstream.URL)

	req := withSession(httptest.NewRequest(http.MethodPatch,
		"/api/notifications/read", strings.NewReader(`{"notificationIds":[1,2,3]}`)))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"notificationIds":[1,2,3]}`, forwarded)
	assert.JSONEq(t, `{"unread":0,"total":10}`, rec.Body.String())
}

func TestNotifications_BackendErrorPassesThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"timestamp":"t","status":403,"error":"Forbidden","code":"TOKEN_EXPIRED","message":"Session expired","details":null,"path":"/notifications"}`)) //nolint:errcheck
	}))
	defer upstream.Close()

	e := newRelay(t, upstream.URL)

	req := withSession(httptest.NewRequest(http.MethodGet, "/api/notifications", nil))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "TOKEN_EXPIRED")
}
