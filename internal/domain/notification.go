package domain

import "time"

// NotificationType represents the kind of notification. It governs icon and
// styling only; there is no behavioral branching on it.
type NotificationType string

const (
	NotificationInvitationReceived NotificationType = "INVITATION"
	NotificationInvitationSent     NotificationType = "INVITATION_SENT"
	NotificationInvitationAccepted NotificationType = "INVITATION_ACCEPTED"
	NotificationRoleUpdated        NotificationType = "ROLE_UPDATED"
	NotificationInfo               NotificationType = "INFO"
	NotificationWarning            NotificationType = "WARNING"
	NotificationError              NotificationType = "ERROR"
)

// Notification represents one event targeted at a user. The id is stable
// across history fetches and live pushes and is the deduplication key.
type Notification struct {
	ID        int64            `json:"id"`
	Message   string           `json:"message"`
	Link      string           `json:"link"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	Clicked   bool             `json:"clicked"`
	CreatedAt time.Time        `json:"createdAt"`
}

// UnreadCount holds the aggregate notification counters. The authoritative
// value always comes from the backend; local adjustments are provisional.
type UnreadCount struct {
	Unread int `json:"unread"`
	Total  int `json:"total"`
}

// PaginationMeta describes one page of a paginated backend response.
type PaginationMeta struct {
	Page             int  `json:"page"`
	Size             int  `json:"size"`
	TotalPages       int  `json:"totalPages"`
	TotalElements    int  `json:"totalElements"`
	NumberOfElements int  `json:"numberOfElements"`
	First            bool `json:"first"`
	Last             bool `json:"last"`
}

// NotificationPage is one fetched page of notification history, ordered by
// createdAt descending as returned by the backend.
type NotificationPage struct {
	Contents []Notification `json:"contents"`
	Meta     PaginationMeta `json:"meta"`
}

// StreamToken is the short-lived credential authorizing one push-stream
// connection. It is held in memory only and never persisted.
type StreamToken struct {
	Token string `json:"token"`
}
