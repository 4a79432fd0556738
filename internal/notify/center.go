package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/heapdog/heapdog/internal/domain"
)

// Center wires the notification components together for one mount: it seeds
// the store from the authoritative history, keeps the push stream open, and
// relays visibility toggles to the read-state synchronizer. One Center lives
// per session; tear it down with Close on unmount or sign-out.
type Center struct {
	fetcher *HistoryFetcher
	store   *Store
	syncer  *Synchronizer
	sub     *Subscriber
	events  chan domain.Notification

	mu      sync.Mutex
	sess    Session
	ctx     context.Context
	cancel  context.CancelFunc
	loading bool
}

// NewCenter creates a notification center over the given relay client.
func NewCenter(client *Client, streamURL string, pageSize int) *Center {
	c := &Center{
		fetcher: NewHistoryFetcher(client, pageSize),
		store:   NewStore(),
		events:  make(chan domain.Notification, 16),
	}
	c.syncer = NewSynchronizer(client, c.store)
	c.sub = NewSubscriber(streamURL, NewTokenProvisioner(client), c.onPush)
	return c
}

// Store exposes the underlying notification store.
func (c *Center) Store() *Store {
	return c.store
}

// Events delivers live-pushed notifications for toast display.
func (c *Center) Events() <-chan domain.Notification {
	return c.events
}

// Start seeds the store and opens the push stream. Seeding failures degrade
// to empty state; notifications are supplementary, never critical path.
func (c *Center) Start(ctx context.Context, sess Session) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.sess = sess
	c.ctx = ctx
	c.cancel = cancel
	c.mu.Unlock()

	if !sess.Valid() {
		return
	}

	if count, err := c.fetcher.Unread(ctx, sess); err != nil {
		slog.Warn("seed unread count failed", "error", err)
	} else {
		c.store.SeedUnread(count)
	}

	if page, err := c.fetcher.Page(ctx, sess, 1); err != nil {
		slog.Warn("seed notification history failed", "error", err)
	} else {
		c.store.ApplyPage(page)
	}

	c.sub.Start(ctx, sess)
}

// LoadMore fetches and applies the next history page. Pages are requested
// strictly one at a time so a slow response can never interleave out of
// order.
func (c *Center) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	sess := c.sess
	if c.loading || !c.store.HasMore() {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	page, err := c.fetcher.Page(ctx, sess, c.store.NextPage())
	if err != nil {
		return err
	}
	c.store.ApplyPage(page)
	return nil
}

// Opened is invoked when the notification list becomes visible.
func (c *Center) Opened(ctx context.Context) {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	c.syncer.OnVisible(ctx, sess)
}

// Close cancels the mount context, tears down the stream and detaches the
// synchronizer.
func (c *Center) Close() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.sub.Close()
	c.syncer.Close()
}

// onPush runs on the stream goroutine for each live notification: merge into
// the store, surface for toast display, then refetch the authoritative
// history so the merged list stays consistent.
func (c *Center) onPush(n domain.Notification) {
	c.store.ApplyPush(n)

	select {
	case c.events <- n:
	default:
		// Toasts are best effort; never block the stream on a slow consumer.
	}

	c.refresh()
}

// refresh refetches every loaded page in order and rebuilds the list. It runs
// under the mount context so Close interrupts it.
func (c *Center) refresh() {
	c.mu.Lock()
	sess, ctx := c.sess, c.ctx
	c.mu.Unlock()

	if ctx == nil || ctx.Err() != nil {
		return
	}

	last := c.store.LastPage()
	if last == 0 {
		last = 1
	}

	pages := make([]*domain.NotificationPage, 0, last)
	for p := 1; p <= last; p++ {
		page, err := c.fetcher.Page(ctx, sess, p)
		if err != nil {
			slog.Warn("refresh notification history failed", "error", err, "page", p)
			return
		}
		pages = append(pages, page)
		if page.Meta.Last {
			break
		}
	}

	c.store.ReplaceAll(pages)
}
