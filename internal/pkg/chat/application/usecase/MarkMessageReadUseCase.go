package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/JPress-IEEE/Backend/internal/pkg/chat/application/domain"
	repository "github.com/JPress-IEEE/Backend/internal/pkg/chat/persistence/repository/port"
)

// MarkMessageReadInput identifies the message to flag as read.
type MarkMessageReadInput struct {
	MessageID string
}

// MarkMessageReadUseCase flips the read flag. Marking an already-read message
// is a no-op success, not an error.
type MarkMessageReadUseCase struct {
	Repo repository.ChatRepository
}

func NewMarkMessageReadUseCase(repo repository.ChatRepository) *MarkMessageReadUseCase {
	return &MarkMessageReadUseCase{Repo: repo}
}

func (uc *MarkMessageReadUseCase) Execute(ctx context.Context, in MarkMessageReadInput) (*chat.Message, error) {
	if in.MessageID == "" {
		return nil, fmt.Errorf("message_id is required")
	}

	msg, err := uc.Repo.MarkMessageRead(ctx, in.MessageID)
	if err != nil {
		if errors.Is(err, chat.ErrMessageNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &msg, nil
}
