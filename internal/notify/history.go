package notify

import (
	"context"

	"github.com/heapdog/heapdog/internal/domain"
)

// HistoryAPI is the slice of the relay client the fetcher needs.
type HistoryAPI interface {
	Notifications(ctx context.Context, sess Session, page, size int) (*domain.NotificationPage, error)
	UnreadCount(ctx context.Context, sess Session) (domain.UnreadCount, error)
}

// HistoryFetcher fetches paginated notification history. Failures surface to
// the caller; there is no automatic retry.
type HistoryFetcher struct {
	api      HistoryAPI
	pageSize int
}

// NewHistoryFetcher creates a fetcher with the given page size.
func NewHistoryFetcher(api HistoryAPI, pageSize int) *HistoryFetcher {
	return &HistoryFetcher{api: api, pageSize: pageSize}
}

// Page fetches one 1-indexed history page.
func (f *HistoryFetcher) Page(ctx context.Context, sess Session, page int) (*domain.NotificationPage, error) {
	return f.api.Notifications(ctx, sess, page, f.pageSize)
}

// Unread fetches the authoritative counters.
func (f *HistoryFetcher) Unread(ctx context.Context, sess Session) (domain.UnreadCount, error) {
	return f.api.UnreadCount(ctx, sess)
}
