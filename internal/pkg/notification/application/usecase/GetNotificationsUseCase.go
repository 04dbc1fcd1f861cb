package usecase

import (
	"context"
	"fmt"

	notification "github.com/JPress-IEEE/Backend/internal/pkg/notification/application/domain"
	repository "github.com/JPress-IEEE/Backend/internal/pkg/notification/persistence/repository/port"
)

// GetNotificationsInput wraps the recipient whose notifications to fetch.
type GetNotificationsInput struct {
	UserID string
}

// GetNotificationsUseCase returns a user's notifications, newest first.
type GetNotificationsUseCase struct {
	Repo repository.NotificationRepository
}

func NewGetNotificationsUseCase(repo repository.NotificationRepository) *GetNotificationsUseCase {
	return &GetNotificationsUseCase{Repo: repo}
}

func (uc *GetNotificationsUseCase) Execute(ctx context.Context, in GetNotificationsInput) ([]notification.Notification, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	items, err := uc.Repo.ListByUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return items, nil
}
