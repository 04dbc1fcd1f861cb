package usecase

import (
	"context"
	"errors"
	"fmt"

	notification "github.com/JPress-IEEE/Backend/internal/pkg/notification/application/domain"
	repository "github.com/JPress-IEEE/Backend/internal/pkg/notification/persistence/repository/port"
)

// DeleteNotificationInput identifies the notification to remove.
type DeleteNotificationInput struct {
	NotificationID string
}

// DeleteNotificationUseCase removes a notification on explicit request.
type DeleteNotificationUseCase struct {
	Repo repository.NotificationRepository
}

func NewDeleteNotificationUseCase(repo repository.NotificationRepository) *DeleteNotificationUseCase {
	return &DeleteNotificationUseCase{Repo: repo}
}

func (uc *DeleteNotificationUseCase) Execute(ctx context.Context, in DeleteNotificationInput) error {
	if in.NotificationID == "" {
		return fmt.Errorf("notification_id is required")
	}
	if err := uc.Repo.Delete(ctx, in.NotificationID); err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
