package notification

import (
	"errors"
	"time"
)

// Status of a notification from the recipient's point of view.
type Status string

const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

// Notification is a durable record for a user who was offline when an event
// addressed them. The persisted record is the source of truth; the realtime
// push, when it happens, is best-effort.
type Notification struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Message   string    `db:"message"`
	Status    Status    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

var (
	ErrNotFound     = errors.New("notification: not found")
	ErrMissingField = errors.New("notification: user_id and message are required")
)
