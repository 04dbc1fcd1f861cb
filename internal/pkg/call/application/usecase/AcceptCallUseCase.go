package usecase

import (
	"context"
	"errors"
	"fmt"

	call "github.com/JPress-IEEE/Backend/internal/pkg/call/application/domain"
	repository "github.com/JPress-IEEE/Backend/internal/pkg/call/persistence/repository/port"
)

// AcceptCallInput identifies the pending session by its conversation and peers.
type AcceptCallInput struct {
	ConversationID string
	SenderID       string
	ReceiverID     string
}

// AcceptCallUseCase transitions pending -> active via one conditional update.
// When two peers resolve the same session near-simultaneously only one update
// matches; the loser receives call.ErrNoMatchingCall and learns the real
// outcome from the winner's broadcast.
type AcceptCallUseCase struct {
	Repo repository.CallRepository
}

func NewAcceptCallUseCase(repo repository.CallRepository) *AcceptCallUseCase {
	return &AcceptCallUseCase{Repo: repo}
}

func (uc *AcceptCallUseCase) Execute(ctx context.Context, in AcceptCallInput) (*call.Session, error) {
	if in.ConversationID == "" || in.SenderID == "" || in.ReceiverID == "" {
		return nil, call.ErrMissingField
	}

	sess, err := uc.Repo.AcceptCall(ctx, in.ConversationID, in.SenderID, in.ReceiverID)
	if err != nil {
		if errors.Is(err, call.ErrNoMatchingCall) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &sess, nil
}
