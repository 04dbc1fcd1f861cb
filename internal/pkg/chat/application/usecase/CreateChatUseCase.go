package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/JPress-IEEE/Backend/internal/pkg/chat/application/domain"
	repository "github.com/JPress-IEEE/Backend/internal/pkg/chat/persistence/repository/port"
)

// CreateChatInput carries the two participants of the conversation to open.
type CreateChatInput struct {
	Participant1ID string
	Participant2ID string
}

// CreateChatUseCase opens a conversation between two users. The pair is
// unordered and unique: a repeated request for the same two users returns the
// existing thread instead of creating a duplicate.
type CreateChatUseCase struct {
	Repo repository.ChatRepository
}

func NewCreateChatUseCase(repo repository.ChatRepository) *CreateChatUseCase {
	return &CreateChatUseCase{Repo: repo}
}

func (uc *CreateChatUseCase) Execute(ctx context.Context, in CreateChatInput) (*chat.Conversation, error) {
	if in.Participant1ID == "" || in.Participant2ID == "" {
		return nil, fmt.Errorf("participant1_id and participant2_id are required")
	}
	if in.Participant1ID == in.Participant2ID {
		return nil, fmt.Errorf("a conversation requires two distinct participants")
	}

	existing, err := uc.Repo.FindConversationByParticipants(ctx, in.Participant1ID, in.Participant2ID)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, chat.ErrConversationNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	conv, err := uc.Repo.CreateConversation(ctx, in.Participant1ID, in.Participant2ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &conv, nil
}
