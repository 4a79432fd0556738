package notify

import (
	"context"
	"log/slog"
	"sync"
)

// TokenAPI is the slice of the relay client the provisioner needs.
type TokenAPI interface {
	StreamToken(ctx context.Context, sess Session) (string, error)
}

// TokenProvisioner obtains the short-lived push-stream credential. The token
// is requested at most once until Reset is called, held in memory only, and
// never refreshed proactively. Failures are silent: the stream simply never
// opens.
type TokenProvisioner struct {
	api TokenAPI

	mu        sync.Mutex
	token     string
	requested bool
}

// NewTokenProvisioner creates a provisioner backed by the given API.
func NewTokenProvisioner(api TokenAPI) *TokenProvisioner {
	return &TokenProvisioner{api: api}
}

// Get returns the stream token, requesting it on first use. It returns the
// empty string when no session exists or the request failed; subsequent calls
// do not retry until Reset.
func (p *TokenProvisioner) Get(ctx context.Context, sess Session) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.requested {
		return p.token
	}
	p.requested = true

	if !sess.Valid() {
		return ""
	}

	token, err := p.api.StreamToken(ctx, sess)
	if err != nil {
		slog.Warn("stream token request failed", "error", err)
		return ""
	}

	p.token = token
	return token
}

// Reset discards the held token so the next Get requests a fresh one. Called
// on sign-out/sign-in cycles and before reopening a dropped stream.
func (p *TokenProvisioner) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
	p.requested = false
}
