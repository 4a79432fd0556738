package ui

import (
	"strings"
	"time"

	"github.com/heapdog/heapdog/internal/domain"
	"github.com/heapdog/heapdog/internal/notify"
)

// notificationItem wraps a domain.Notification so it can be used in a
// bubbles/list.
type notificationItem struct {
	n domain.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i notificationItem) FilterValue() string {
	return i.n.Message
}

// Title returns the notification message, marked while unopened.
func (i notificationItem) Title() string {
	title := typeIcon(i.n.Type) + " " + i.n.Message
	if !i.n.Clicked {
		return unreadStyle.Render("● " + title)
	}
	return mutedStyle.Render(title)
}

// Description returns the relative timestamp and the click-through link.
func (i notificationItem) Description() string {
	parts := []string{notify.RelativeTime(i.n.CreatedAt, time.Now())}
	if i.n.Link != "" {
		parts = append(parts, i.n.Link)
	}
	return strings.Join(parts, " | ")
}

// typeIcon maps a notification type to its display symbol. Display only; no
// behavior depends on it.
func typeIcon(t domain.NotificationType) string {
	switch t {
	case domain.NotificationInvitationReceived,
		domain.NotificationInvitationSent,
		domain.NotificationInvitationAccepted:
		return "✉"
	case domain.NotificationRoleUpdated:
		return "★"
	case domain.NotificationWarning:
		return "⚠"
	case domain.NotificationError:
		return "✖"
	default:
		return "ℹ"
	}
}
