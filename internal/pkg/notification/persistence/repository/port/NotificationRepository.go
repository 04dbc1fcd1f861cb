package repository

import (
	"context"

	notification "github.com/JPress-IEEE/Backend/internal/pkg/notification/application/domain"
)

// NotificationRepository persists notification records. Adapters translate
// "no rows" into notification.ErrNotFound.
type NotificationRepository interface {
	// CreateNotification persists n and returns it with DB-generated id and
	// timestamps.
	CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error)

	// ListByUser returns the user's notifications, newest first.
	ListByUser(ctx context.Context, userID string) ([]notification.Notification, error)

	// MarkRead flips the status to read and returns the updated row.
	MarkRead(ctx context.Context, notificationID string) (notification.Notification, error)

	// Delete removes the row.
	Delete(ctx context.Context, notificationID string) error
}
