package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/JPress-IEEE/Backend/internal/pkg/chat/application/domain"
	repository "github.com/JPress-IEEE/Backend/internal/pkg/chat/persistence/repository/port"
)

// DeleteMessageInput identifies the message and the acting user.
type DeleteMessageInput struct {
	MessageID   string
	RequesterID string
}

// DeleteMessageUseCase removes a message. Only the original sender may delete.
// It returns the removed message so the broadcast can name the conversation.
type DeleteMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewDeleteMessageUseCase(repo repository.ChatRepository) *DeleteMessageUseCase {
	return &DeleteMessageUseCase{Repo: repo}
}

func (uc *DeleteMessageUseCase) Execute(ctx context.Context, in DeleteMessageInput) (*chat.Message, error) {
	if in.MessageID == "" || in.RequesterID == "" {
		return nil, fmt.Errorf("message_id and user_id are required")
	}

	existing, err := uc.Repo.GetMessageByID(ctx, in.MessageID)
	if err != nil {
		if errors.Is(err, chat.ErrMessageNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if existing.SenderID != in.RequesterID {
		return nil, chat.ErrNotSender
	}

	if err := uc.Repo.DeleteMessage(ctx, in.MessageID); err != nil {
		if errors.Is(err, chat.ErrMessageNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &existing, nil
}
