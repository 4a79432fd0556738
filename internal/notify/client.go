package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/heapdog/heapdog/internal/domain"
)

// Client talks to the authenticated relay. The relay owns the session cookie
// and attaches the bearer token on the way to the backend; this client only
// presents the cookie.
type Client struct {
	baseURL    string
	cookieName string
	http       *http.Client
}

// NewClient creates a relay client for the given base URL.
func NewClient(baseURL, cookieName string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		cookieName: cookieName,
		http:       &http.Client{Timeout: timeout},
	}
}

// Signin authenticates against the relay and returns the session extracted
// from the HttpOnly cookie it sets.
func (c *Client) Signin(ctx context.Context, username, password string) (Session, error) {
	body, err := json.Marshal(domain.SigninRequest{Username: username, Password: password})
	if err != nil {
		return Session{}, fmt.Errorf("encode signin request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/auth/signin", bytes.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("signin: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return Session{}, fmt.Errorf("signin returned status %d", resp.StatusCode)
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == c.cookieName && cookie.Value != "" {
			return Session{Token: cookie.Value}, nil
		}
	}

	return Session{}, fmt.Errorf("signin response carried no %s cookie", c.cookieName)
}

// Me returns the current user as reported by the relay. An ErrUnauthorized
// result means the session token is stale or revoked.
func (c *Client) Me(ctx context.Context, sess Session) (*domain.User, error) {
	var envelope struct {
		Data domain.User `json:"data"`
	}
	if err := c.get(ctx, sess, "/api/auth/me", &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// StreamToken obtains a short-lived push-stream credential.
func (c *Client) StreamToken(ctx context.Context, sess Session) (string, error) {
	var token domain.StreamToken
	if err := c.get(ctx, sess, "/api/sse-token", &token); err != nil {
		return "", err
	}
	return token.Token, nil
}

// Notifications fetches one page of notification history.
func (c *Client) Notifications(ctx context.Context, sess Session, page, size int) (*domain.NotificationPage, error) {
	var result domain.NotificationPage
	path := fmt.Sprintf("/api/notifications?page=%d&size=%d", page, size)
	if err := c.get(ctx, sess, path, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UnreadCount fetches the authoritative unread/total counters.
func (c *Client) UnreadCount(ctx context.Context, sess Session) (domain.UnreadCount, error) {
	var count domain.UnreadCount
	if err := c.get(ctx, sess, "/api/notifications/unread-count", &count); err != nil {
		return domain.UnreadCount{}, err
	}
	return count, nil
}

// MarkRead submits one batched mark-as-read request and returns the updated
// authoritative counters. The id set must be non-empty.
func (c *Client) MarkRead(ctx context.Context, sess Session, ids []int64) (domain.UnreadCount, error) {
	if len(ids) == 0 {
		return domain.UnreadCount{}, fmt.Errorf("%w: empty notification id set", domain.ErrInvalidInput)
	}

	body := struct {
		NotificationIDs []int64 `json:"notificationIds"`
	}{NotificationIDs: ids}

	var count domain.UnreadCount
	if err := c.do(ctx, sess, http.MethodPatch, "/api/notifications/read", body, &count); err != nil {
		return domain.UnreadCount{}, err
	}
	return count, nil
}

func (c *Client) get(ctx context.Context, sess Session, path string, out any) error {
	return c.do(ctx, sess, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, sess Session, method, path string, body, out any) error {
	if !sess.Valid() {
		return domain.ErrNoSession
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: c.cookieName, Value: sess.Token})

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
