package usecase

import (
	"context"
	"errors"
	"fmt"

	call "github.com/JPress-IEEE/Backend/internal/pkg/call/application/domain"
	repository "github.com/JPress-IEEE/Backend/internal/pkg/call/persistence/repository/port"
)

// DeclineCallInput identifies the pending session by its conversation and peers.
type DeclineCallInput struct {
	ConversationID string
	SenderID       string
	ReceiverID     string
}

// DeclineCallUseCase transitions pending -> missed via one conditional update.
type DeclineCallUseCase struct {
	Repo repository.CallRepository
}

func NewDeclineCallUseCase(repo repository.CallRepository) *DeclineCallUseCase {
	return &DeclineCallUseCase{Repo: repo}
}

func (uc *DeclineCallUseCase) Execute(ctx context.Context, in DeclineCallInput) (*call.Session, error) {
	if in.ConversationID == "" || in.SenderID == "" || in.ReceiverID == "" {
		return nil, call.ErrMissingField
	}

	sess, err := uc.Repo.DeclineCall(ctx, in.ConversationID, in.SenderID, in.ReceiverID)
	if err != nil {
		if errors.Is(err, call.ErrNoMatchingCall) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &sess, nil
}
