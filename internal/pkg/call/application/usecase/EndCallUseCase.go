package usecase

import (
	"context"
	"errors"
	"fmt"

	call "github.com/JPress-IEEE/Backend/internal/pkg/call/application/domain"
	repository "github.com/JPress-IEEE/Backend/internal/pkg/call/persistence/repository/port"
)

// EndCallInput identifies the active session by its conversation and peers.
type EndCallInput struct {
	ConversationID string
	SenderID       string
	ReceiverID     string
}

// EndCallUseCase transitions active -> ended via one conditional update and
// stamps the end time. A session in any other state (including missed) yields
// call.ErrNoMatchingCall.
type EndCallUseCase struct {
	Repo repository.CallRepository
}

func NewEndCallUseCase(repo repository.CallRepository) *EndCallUseCase {
	return &EndCallUseCase{Repo: repo}
}

func (uc *EndCallUseCase) Execute(ctx context.Context, in EndCallInput) (*call.Session, error) {
	if in.ConversationID == "" || in.SenderID == "" || in.ReceiverID == "" {
		return nil, call.ErrMissingField
	}

	sess, err := uc.Repo.EndCall(ctx, in.ConversationID, in.SenderID, in.ReceiverID)
	if err != nil {
		if errors.Is(err, call.ErrNoMatchingCall) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &sess, nil
}
