package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeTokenAPI struct {
	calls int
	token string
	err   error
}

func (f *fakeTokenAPI) StreamToken(ctx context.Context, sess Session) (string, error) {
	f.calls++
	return f.token, f.err
}

func TestTokenProvisioner_RequestsOnce(t *testing.T) {
	api := &fakeTokenAPI{token: "stream-1"}
	p := NewTokenProvisioner(api)
	sess := Session{Token: "sess"}

	assert.Equal(t, "stream-1", p.Get(context.Background(), sess))
	assert.Equal(t, "stream-1", p.Get(context.Background(), sess))
	assert.Equal(t, 1, api.calls)
}

func TestTokenProvisioner_NoSessionDeclinesSilently(t *testing.T) {
	api := &fakeTokenAPI{token: "stream-1"}
	p := NewTokenProvisioner(api)

	assert.Empty(t, p.Get(context.Background(), Session{}))
	assert.Zero(t, api.calls, "no request without a session")
}

func TestTokenProvisioner_FailureIsSilentAndNotRetried(t *testing.T) {
	api := &fakeTokenAPI{err: errors.New("boom")}
	p := NewTokenProvisioner(api)
	sess := Session{Token: "sess"}

	assert.Empty(t, p.Get(context.Background(), sess))
	assert.Empty(t, p.Get(context.Background(), sess))
	assert.Equal(t, 1, api.calls, "no retry loop until reset")
}

func TestTokenProvisioner_ResetAllowsFreshRequest(t *testing.T) {
	api := &fakeTokenAPI{token: "stream-1"}
	p := NewTokenProvisioner(api)
	sess := Session{Token: "sess"}

	assert.Equal(t, "stream-1", p.Get(context.Background(), sess))

	api.token = "stream-2"
	p.Reset()

	assert.Equal(t, "stream-2", p.Get(context.Background(), sess))
	assert.Equal(t, 2, api.calls)
}
