package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	notification "github.com/JPress-IEEE/Backend/internal/pkg/notification/application/domain"
	repository "github.com/JPress-IEEE/Backend/internal/pkg/notification/persistence/repository/port"
)

// Pusher delivers a payload on a user's per-user realtime channel. Satisfied by
// realtime.Hub.
type Pusher interface {
	NotifyUser(userID string, payload []byte) bool
}

// NotifyInput carries the recipient and the notification text.
type NotifyInput struct {
	RecipientID string
	Text        string
}

// NotifyUseCase always persists a notification record, then pushes
// receive_notification to the recipient's channel when they are online. The
// push is best-effort: the durable record is what the user sees on next fetch
// whether or not live delivery happened.
type NotifyUseCase struct {
	Repo   repository.NotificationRepository
	Pusher Pusher // optional
}

func NewNotifyUseCase(repo repository.NotificationRepository, pusher Pusher) *NotifyUseCase {
	return &NotifyUseCase{Repo: repo, Pusher: pusher}
}

// receiveNotificationEvent is the payload for the per-user broadcast.
type receiveNotificationEvent struct {
	Type         string    `json:"type"`
	Notification eventBody `json:"notification"`
}

type eventBody struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (uc *NotifyUseCase) Execute(ctx context.Context, in NotifyInput) (*notification.Notification, error) {
	if in.RecipientID == "" || in.Text == "" {
		return nil, notification.ErrMissingField
	}

	created, err := uc.Repo.CreateNotification(ctx, notification.Notification{
		UserID:  in.RecipientID,
		Message: in.Text,
		Status:  notification.StatusUnread,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if uc.Pusher != nil {
		payload, err := json.Marshal(receiveNotificationEvent{
			Type: "receive_notification",
			Notification: eventBody{
				ID:        created.ID,
				UserID:    created.UserID,
				Message:   created.Message,
				Status:    string(created.Status),
				CreatedAt: created.CreatedAt,
			},
		})
		if err == nil && !uc.Pusher.NotifyUser(created.UserID, payload) {
			slog.Debug("recipient offline, notification persisted only", "user", created.UserID)
		}
	}

	return &created, nil
}
