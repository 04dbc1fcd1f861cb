package usecase

import (
	"context"
	"errors"
	"fmt"

	notification "github.com/JPress-IEEE/Backend/internal/pkg/notification/application/domain"
	repository "github.com/JPress-IEEE/Backend/internal/pkg/notification/persistence/repository/port"
)

// MarkNotificationReadInput identifies the notification to mark.
type MarkNotificationReadInput struct {
	NotificationID string
}

// MarkNotificationReadUseCase flips a notification's status to read.
type MarkNotificationReadUseCase struct {
	Repo repository.NotificationRepository
}

func NewMarkNotificationReadUseCase(repo repository.NotificationRepository) *MarkNotificationReadUseCase {
	return &MarkNotificationReadUseCase{Repo: repo}
}

func (uc *MarkNotificationReadUseCase) Execute(ctx context.Context, in MarkNotificationReadInput) (*notification.Notification, error) {
	if in.NotificationID == "" {
		return nil, fmt.Errorf("notification_id is required")
	}
	n, err := uc.Repo.MarkRead(ctx, in.NotificationID)
	if err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &n, nil
}
