package notify

import (
	"sync"

	"github.com/heapdog/heapdog/internal/domain"
)

// Store is the in-memory aggregate merging history pages and live-pushed
// events. It is the single mutable owner of the merged list, the unread
// counters and the locally-marked-read set; the subscriber and fetcher only
// produce values the store consumes.
//
// Ordering is trusted from the server: pages are concatenated in fetch order
// and never re-sorted. Duplicate ids resolve last-write-wins, keeping the
// existing list position.
type Store struct {
	mu       sync.Mutex
	items    []domain.Notification
	index    map[int64]int
	unread   domain.UnreadCount
	lastPage int
	hasMore  bool
	marked   map[int64]struct{}
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		index:  make(map[int64]int),
		marked: make(map[int64]struct{}),
	}
}

// SeedUnread installs the initial authoritative counters.
func (s *Store) SeedUnread(count domain.UnreadCount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unread = count
}

// ApplyPage appends one fetched page to the merged list. Pages must arrive in
// increasing order; a page that is not the next expected one is ignored so a
// late out-of-order response cannot corrupt the list. Returns whether the
// page was applied.
func (s *Store) ApplyPage(page *domain.NotificationPage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if page.Meta.Page != s.lastPage+1 {
		return false
	}

	for _, n := range page.Contents {
		s.upsertLocked(n, false)
	}
	s.lastPage = page.Meta.Page
	s.hasMore = !page.Meta.Last
	return true
}

// ApplyPush merges one live-pushed notification, prepending it when new, and
// optimistically bumps both counters. A duplicate id replaces the stored copy
// in place and leaves the counters and list length unchanged.
func (s *Store) ApplyPush(n domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[n.ID]; ok {
		s.upsertLocked(n, true)
		return
	}
	s.upsertLocked(n, true)
	s.unread.Unread++
	s.unread.Total++
}

// ReplaceAll rebuilds the merged list from a refetched sequence of pages,
// applied in order. Counters and the locally-marked set are preserved.
func (s *Store) ReplaceAll(pages []*domain.NotificationPage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.index = make(map[int64]int)
	s.lastPage = 0
	s.hasMore = false

	for _, page := range pages {
		if page.Meta.Page != s.lastPage+1 {
			break
		}
		for _, n := range page.Contents {
			s.upsertLocked(n, false)
		}
		s.lastPage = page.Meta.Page
		s.hasMore = !page.Meta.Last
	}
}

// SetUnread overwrites the counters with an authoritative backend value.
// Overwrite, never merge: optimistic deltas must not accumulate drift.
func (s *Store) SetUnread(count domain.UnreadCount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unread = count
}

// Unread returns the current counters.
func (s *Store) Unread() domain.UnreadCount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Notifications returns a copy of the merged list.
func (s *Store) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Notification, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the merged list length.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// HasMore reports whether another history page exists, per the last applied
// page's last flag.
func (s *Store) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// NextPage returns the next page number to request.
func (s *Store) NextPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPage + 1
}

// LastPage returns the highest applied page number.
func (s *Store) LastPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPage
}

// MarkLocal records ids as locally marked read so a reopened dropdown does
// not resubmit them before the next full refetch.
func (s *Store) MarkLocal(ids []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.marked[id] = struct{}{}
	}
}

// ReadCandidates returns the ids of loaded notifications that are unread and
// not already locally marked.
func (s *Store) ReadCandidates() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []int64
	for _, n := range s.items {
		if n.Read {
			continue
		}
		if _, ok := s.marked[n.ID]; ok {
			continue
		}
		ids = append(ids, n.ID)
	}
	return ids
}

// upsertLocked inserts n, or replaces the stored copy when the id is already
// present (last write wins, position kept). prepend controls where a new
// item lands.
func (s *Store) upsertLocked(n domain.Notification, prepend bool) {
	if i, ok := s.index[n.ID]; ok {
		s.items[i] = n
		return
	}

	if prepend {
		s.items = append([]domain.Notification{n}, s.items...)
		s.index = make(map[int64]int, len(s.items))
		for i := range s.items {
			s.index[s.items[i].ID] = i
		}
		return
	}

	s.items = append(s.items, n)
	s.index[n.ID] = len(s.items) - 1
}
