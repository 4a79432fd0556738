// Package backend implements the typed HTTP client for the external HeapDog
// backend. The backend owns all business logic, persistence and validation;
// this client only shapes requests and decodes the response envelopes.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Envelope is the standard backend success response wrapper.
type Envelope struct {
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
	Path      string          `json:"path"`
}

// FieldDetail is one field-level entry of a backend error response.
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is the backend error envelope. It carries the upstream HTTP status
// so the relay can pass failures through unchanged.
type APIError struct {
	Timestamp string        `json:"timestamp"`
	Status    int           `json:"status"`
	ErrorText string        `json:"error"`
	Code      string        `json:"code"`
	Message   string        `json:"message"`
	Details   []FieldDetail `json:"details,omitempty"`
	Path      string        `json:"path"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend %d %s: %s", e.Status, e.Code, e.Message)
}

// Client is an HTTP client for the external backend.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a backend client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Do executes one backend call and returns the raw response envelope. The
// bearer token is attached when non-empty. Non-2xx responses are returned as
// *APIError; an error envelope is synthesized when the backend sent none.
func (c *Client) Do(ctx context.Context, method, path, bearer string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Status:    http.StatusInternalServerError,
			ErrorText: "Internal Server Error",
			Code:      "INTERNAL_ERROR",
			Message:   fmt.Sprintf("network error: unable to reach the backend server: %v", err),
			Path:      path,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr APIError
		if len(raw) > 0 && json.Unmarshal(raw, &apiErr) == nil && apiErr.Code != "" {
			if apiErr.Status == 0 {
				apiErr.Status = resp.StatusCode
			}
			return nil, &apiErr
		}
		return nil, &APIError{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Status:    resp.StatusCode,
			ErrorText: resp.Status,
			Code:      "HTTP_ERROR",
			Message:   messageOrStatus(raw, resp.Status),
			Path:      path,
		}
	}

	return raw, nil
}

// Get issues a GET call.
func (c *Client) Get(ctx context.Context, path, bearer string) ([]byte, error) {
	return c.Do(ctx, http.MethodGet, path, bearer, nil)
}

// Post issues a POST call with a JSON body.
func (c *Client) Post(ctx context.Context, path, bearer string, body any) ([]byte, error) {
	return c.Do(ctx, http.MethodPost, path, bearer, body)
}

// Patch issues a PATCH call with a JSON body.
func (c *Client) Patch(ctx context.Context, path, bearer string, body any) ([]byte, error) {
	return c.Do(ctx, http.MethodPatch, path, bearer, body)
}

// Data extracts the inner data field from a raw response envelope.
func Data(raw []byte) (json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response envelope: %w", err)
	}
	return env.Data, nil
}

// DecodeData unmarshals the envelope's data field into out.
func DecodeData(raw []byte, out any) error {
	data, err := Data(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func messageOrStatus(raw []byte, status string) string {
	if len(raw) > 0 {
		return string(raw)
	}
	return status
}
