package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heapdog/heapdog/internal/domain"
)

type fakeMarkReadAPI struct {
	mu      sync.Mutex
	calls   [][]int64
	result  domain.UnreadCount
	err     error
	release chan struct{}
}

func (f *fakeMarkReadAPI) MarkRead(ctx context.Context, sess Session, ids []int64) (domain.UnreadCount, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ids)
	release := f.release
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	return f.result, f.err
}

func (f *fakeMarkReadAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore()
	require.True(t, s.ApplyPage(page(1, true,
		notification(1, "a"), notification(2, "b"), notification(3, "c"))))
	s.SeedUnread(domain.UnreadCount{Unread: 3, Total: 3})
	return s
}

func waitForState(t *testing.T, s *Synchronizer, want SyncState) {
	t.Helper()
	require.Eventually(t, func() bool { return s.State() == want },
		time.Second, time.Millisecond, "expected state %v", want)
}

func TestSynchronizer_BatchesAllCandidatesOnce(t *testing.T) {
	api := &fakeMarkReadAPI{result: domain.UnreadCount{Unread: 0, Total: 3}}
	store := seededStore(t)
	syncer := NewSynchronizer(api, store)

	syncer.OnVisible(context.Background(), Session{Token: "tok"})
	waitForState(t, syncer, SyncReconciled)

	require.Equal(t, 1, api.callCount())
	assert.Equal(t, []int64{1, 2, 3}, api.calls[0])
	assert.Equal(t, domain.UnreadCount{Unread: 0, Total: 3}, store.Unread(),
		"counters replaced with the server-confirmed value")
}

func TestSynchronizer_SecondOpenWithNothingNewIsNoOp(t *testing.T) {
	api := &fakeMarkReadAPI{result: domain.UnreadCount{Unread: 0, Total: 3}}
	store := seededStore(t)
	syncer := NewSynchronizer(api, store)

	syncer.OnVisible(context.Background(), Session{Token: "tok"})
	waitForState(t, syncer, SyncReconciled)

	// All ids are now locally marked: the candidate set is empty and no
	// request fires.
	syncer.OnVisible(context.Background(), Session{Token: "tok"})
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, 1, api.callCount())
}

func TestSynchronizer_ReentrantOpenWhilePendingIsNoOp(t *testing.T) {
	api := &fakeMarkReadAPI{
		result:  domain.UnreadCount{Unread: 0, Total: 3},
		release: make(chan struct{}),
	}
	store := seededStore(t)
	syncer := NewSynchronizer(api, store)

	syncer.OnVisible(context.Background(), Session{Token: "tok"})
	waitForState(t, syncer, SyncPending)

	syncer.OnVisible(context.Background(), Session{Token: "tok"})
	syncer.OnVisible(context.Background(), Session{Token: "tok"})

	close(api.release)
	waitForState(t, syncer, SyncReconciled)

	assert.Equal(t, 1, api.callCount(), "no double submit while pending")
}

func TestSynchronizer_FailureLeavesIDsEligible(t *testing.T) {
	api := &fakeMarkReadAPI{err: errors.New("backend unreachable")}
	store := seededStore(t)
	syncer := NewSynchronizer(api, store)

	syncer.OnVisible(context.Background(), Session{Token: "tok"})
	waitForState(t, syncer, SyncIdle)

	assert.Equal(t, domain.UnreadCount{Unread: 3, Total: 3}, store.Unread(),
		"no optimistic decrement before confirmation")
	assert.Equal(t, []int64{1, 2, 3}, store.ReadCandidates(),
		"failed ids stay eligible")

	// Next visibility toggle resubmits the same set.
	api.mu.Lock()
	api.err = nil
	api.result = domain.UnreadCount{Unread: 0, Total: 3}
	api.mu.Unlock()

	syncer.OnVisible(context.Background(), Session{Token: "tok"})
	waitForState(t, syncer, SyncReconciled)

	require.Equal(t, 2, api.callCount())
	assert.Equal(t, []int64{1, 2, 3}, api.calls[1])
}

func TestSynchronizer_EmptyCandidateSetNeverCalls(t *testing.T) {
	api := &fakeMarkReadAPI{}
	store := NewStore()
	syncer := NewSynchronizer(api, store)

	syncer.OnVisible(context.Background(), Session{Token: "tok"})
	time.Sleep(10 * time.Millisecond)

	assert.Zero(t, api.callCount())
	assert.Equal(t, SyncIdle, syncer.State())
}

func TestSynchronizer_LateResponseAfterCloseIsIgnored(t *testing.T) {
	api := &fakeMarkReadAPI{
		result:  domain.UnreadCount{Unread: 0, Total: 3},
		release: make(chan struct{}),
	}
	store := seededStore(t)
	syncer := NewSynchronizer(api, store)

	syncer.OnVisible(context.Background(), Session{Token: "tok"})
	waitForState(t, syncer, SyncPending)

	syncer.Close()
	close(api.release)
	time.Sleep(10 * time.Millisecond)

	assert.Equal(t, domain.UnreadCount{Unread: 3, Total: 3}, store.Unread(),
		"a response landing after teardown must not touch state")
	assert.Equal(t, []int64{1, 2, 3}, store.ReadCandidates())
}
