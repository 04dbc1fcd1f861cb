package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	chat "github.com/JPress-IEEE/Backend/internal/pkg/chat/application/domain"
	repository "github.com/JPress-IEEE/Backend/internal/pkg/chat/persistence/repository/port"
)

// EditMessageInput identifies the message, the acting user and the replacement content.
type EditMessageInput struct {
	MessageID   string
	RequesterID string
	NewContent  string
}

// EditMessageUseCase mutates message content. Only the original sender may edit.
type EditMessageUseCase struct {
	Repo repository.ChatRepository
}

func NewEditMessageUseCase(repo repository.ChatRepository) *EditMessageUseCase {
	return &EditMessageUseCase{Repo: repo}
}

func (uc *EditMessageUseCase) Execute(ctx context.Context, in EditMessageInput) (*chat.Message, error) {
	if in.MessageID == "" || in.RequesterID == "" {
		return nil, fmt.Errorf("message_id and user_id are required")
	}
	content := strings.TrimSpace(in.NewContent)
	if content == "" {
		return nil, chat.ErrEmptyContent
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

	updated, err := uc.Repo.UpdateMessageContent(ctx, in.MessageID, content)
	if err != nil {
		if errors.Is(err, chat.ErrMessageNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &updated, nil
}
