package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/r3labs/sse/v2"
	backoff "gopkg.in/cenkalti/backoff.v1"

	"github.com/heapdog/heapdog/internal/domain"
)

// eventNotification is the named event some backends emit instead of the
// default message event. Both are handled.
const eventNotification = "notification"

// Subscriber maintains the one-way push connection to the notification
// stream. The stream token travels as a query parameter because the
// EventSource-style transport carries no custom headers.
//
// A dropped connection is reopened with a freshly provisioned token under
// capped backoff rather than with the transport's own retry, which would
// replay a possibly expired token.
type Subscriber struct {
	streamURL      string
	provisioner    *TokenProvisioner
	handler        func(domain.Notification)
	backoffInitial time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSubscriber creates a subscriber delivering notifications to handler.
func NewSubscriber(streamURL string, provisioner *TokenProvisioner, handler func(domain.Notification)) *Subscriber {
	return &Subscriber{
		streamURL:      streamURL,
		provisioner:    provisioner,
		handler:        handler,
		backoffInitial: time.Second,
	}
}

// Start opens the stream in the background. If no token can be provisioned
// the stream simply never opens.
func (s *Subscriber) Start(ctx context.Context, sess Session) {
	if s.streamURL == "" || !sess.Valid() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	done := make(chan struct{})
	s.done = done

	go func() {
		defer close(done)
		s.run(ctx, sess)
	}()
}

// Close tears the connection down and waits for the receive loop to exit.
// Mandatory on unmount so connections do not leak across navigations.
func (s *Subscriber) Close() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (s *Subscriber) run(ctx context.Context, sess Session) {
	wait := backoff.NewExponentialBackOff()
	wait.InitialInterval = s.backoffInitial
	wait.MaxInterval = 30 * time.Second
	wait.MaxElapsedTime = 0

	for attempt := 0; ; attempt++ {
		token := s.provisioner.Get(ctx, sess)
		if token == "" {
			if attempt == 0 {
				// No token on first provisioning: the stream never opens.
				return
			}
		} else {
			wait.Reset()
			err := s.consume(ctx, token)
			if ctx.Err() != nil {
				return
			}
			slog.Warn("notification stream disconnected", "error", err)
		}

		// The held token may have expired with the connection; request a
		// fresh one before reopening.
		s.provisioner.Reset()

		select {
		case <-time.After(wait.NextBackOff()):
		case <-ctx.Done():
			return
		}
	}
}

func (s *Subscriber) consume(ctx context.Context, token string) error {
	client := sse.NewClient(s.streamURL + "?token=" + url.QueryEscape(token))
	// Reconnection is handled here with a fresh token, not by the transport.
	client.ReconnectStrategy = &backoff.StopBackOff{}

	return client.SubscribeRawWithContext(ctx, func(msg *sse.Event) {
		if len(msg.Data) == 0 {
			return
		}

		// Both the default message event and the named notification event
		// carry payloads.
		switch name := string(msg.Event); name {
		case "", "message", eventNotification:
		default:
			return
		}

		n, err := decodePushPayload(msg.Data)
		if err != nil {
			// Drop the event, keep the connection.
			slog.Warn("drop malformed push payload", "error", err)
			return
		}

		s.handler(n)
	})
}

// decodePushPayload normalizes a push payload into a Notification. The
// envelope shape with a data field is tried first, then the bare shape.
func decodePushPayload(data []byte) (domain.Notification, error) {
	var envelope struct {
		Data *domain.Notification `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Data != nil && envelope.Data.ID != 0 {
		return *envelope.Data, nil
	}

	var n domain.Notification
	if err := json.Unmarshal(data, &n); err != nil {
		return domain.Notification{}, fmt.Errorf("decode push payload: %w", err)
	}
	if n.ID == 0 {
		return domain.Notification{}, fmt.Errorf("push payload carries no notification id")
	}
	return n, nil
}
