package usecase

import (
	"context"
	"errors"
	"fmt"

	call "github.com/JPress-IEEE/Backend/internal/pkg/call/application/domain"
	repository "github.com/JPress-IEEE/Backend/internal/pkg/call/persistence/repository/port"
)

// RequestCallInput identifies the conversation and the two peers; SenderID is
// the initiator.
type RequestCallInput struct {
	ConversationID string
	SenderID       string
	ReceiverID     string
}

// RequestCallUseCase opens a pending call session. The insert itself carries
// the "no open session for this conversation" guard; a conversation can hold
// at most one pending or active session at a time.
type RequestCallUseCase struct {
	Repo repository.CallRepository
}

func NewRequestCallUseCase(repo repository.CallRepository) *RequestCallUseCase {
	return &RequestCallUseCase{Repo: repo}
}

func (uc *RequestCallUseCase) Execute(ctx context.Context, in RequestCallInput) (*call.Session, error) {
	if in.ConversationID == "" || in.SenderID == "" || in.ReceiverID == "" {
		return nil, call.ErrMissingField
	}

	sess, err := uc.Repo.CreateCallSession(ctx, in.ConversationID, in.SenderID, in.ReceiverID)
	if err != nil {
		if errors.Is(err, call.ErrCallInProgress) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &sess, nil
}
