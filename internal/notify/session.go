// Package notify implements the client side of the HeapDog notification
// pipeline: stream token provisioning, the push-stream subscription, paginated
// history fetching, the in-memory notification store and read-state
// synchronization with the backend.
package notify

// Session identifies an authenticated relay session. It is passed explicitly
// to every operation; there is no ambient current-session state.
type Session struct {
	Token string
}

// Valid reports whether the session carries a token. Operations decline
// silently when it does not; absence of a session is a steady state, not a
// fault.
func (s Session) Valid() bool {
	return s.Token != ""
}
