package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/heapdog/heapdog/internal/domain"
)

// SyncState is the read-state synchronizer's machine state.
type SyncState int

const (
	// SyncIdle means no mark-read batch is in flight.
	SyncIdle SyncState = iota
	// SyncPending means a batch has been submitted and awaits the backend.
	SyncPending
	// SyncReconciled means the last batch succeeded and the counters hold
	// the server-confirmed value.
	SyncReconciled
)

// MarkReadAPI is the slice of the relay client the synchronizer needs.
type MarkReadAPI interface {
	MarkRead(ctx context.Context, sess Session, ids []int64) (domain.UnreadCount, error)
}

// Synchronizer batches mark-as-read requests when the notification list
// becomes visible and reconciles the store's optimistic counters with the
// server-confirmed value.
type Synchronizer struct {
	api   MarkReadAPI
	store *Store

	mu     sync.Mutex
	state  SyncState
	closed bool
}

// NewSynchronizer creates a synchronizer over the given store.
func NewSynchronizer(api MarkReadAPI, store *Store) *Synchronizer {
	return &Synchronizer{api: api, store: store}
}

// State returns the current machine state.
func (s *Synchronizer) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnVisible is invoked when the notification list becomes visible. It
// collects the unread-and-unmarked ids and submits one batched mark-read
// request. An empty candidate set is a no-op, not an error; reopening while a
// batch is pending is a no-op so the same ids are never double-submitted.
func (s *Synchronizer) OnVisible(ctx context.Context, sess Session) {
	s.mu.Lock()
	if s.closed || s.state == SyncPending {
		s.mu.Unlock()
		return
	}

	ids := s.store.ReadCandidates()
	if len(ids) == 0 {
		s.mu.Unlock()
		return
	}

	s.state = SyncPending
	s.mu.Unlock()

	go s.submit(ctx, sess, ids)
}

func (s *Synchronizer) submit(ctx context.Context, sess Session, ids []int64) {
	count, err := s.api.MarkRead(ctx, sess, ids)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		// Torn down while in flight; a late response must not touch state.
		return
	}

	if err != nil {
		// Counters stay untouched and the ids stay eligible for the next
		// visibility toggle.
		slog.Warn("mark notifications read failed", "error", err, "count", len(ids))
		s.state = SyncIdle
		return
	}

	s.store.SetUnread(count)
	s.store.MarkLocal(ids)
	s.state = SyncReconciled
}

// Close detaches the synchronizer. In-flight responses arriving afterwards
// are ignored.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
