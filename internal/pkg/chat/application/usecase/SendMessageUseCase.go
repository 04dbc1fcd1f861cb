package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	chat "github.com/JPress-IEEE/Backend/internal/pkg/chat/application/domain"
	repository "github.com/JPress-IEEE/Backend/internal/pkg/chat/persistence/repository/port"
)

// PresenceChecker reports whether a user currently holds a live realtime
// connection. Satisfied by realtime.Hub.
type PresenceChecker interface {
	IsOnline(userID string) bool
}

// OfflineNotifier hands a message text over to the notification fan-out for a
// recipient who is not connected at send time.
type OfflineNotifier interface {
	Notify(ctx context.Context, recipientID string, text string) error
}

// SendMessageInput carries the data needed to send a new message.
type SendMessageInput struct {
	ConversationID string
	SenderID       string
	Content        string
}

// SendMessageUseCase persists a message for a conversation after validating
// that the sender is a participant. When the other participant is offline the
// content is handed to the offline notifier; that hand-off is best-effort and
// never fails the send.
type SendMessageUseCase struct {
	Repo     repository.ChatRepository
	Presence PresenceChecker // optional
	Notifier OfflineNotifier // optional
}

func NewSendMessageUseCase(repo repository.ChatRepository, presence PresenceChecker, notifier OfflineNotifier) *SendMessageUseCase {
	return &SendMessageUseCase{Repo: repo, Presence: presence, Notifier: notifier}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	msg, err := chat.NewMessage(in.ConversationID, in.SenderID, in.Content)
	if err != nil {
		return nil, err
	}

	conv, err := uc.Repo.GetConversationByID(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParticipant(in.SenderID) {
		return nil, chat.ErrNotParticipant
	}

	id, err := uc.Repo.SaveMessage(ctx, *msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	msg.ID = id

	if recipient := conv.OtherParticipant(in.SenderID); recipient != "" {
		uc.notifyIfOffline(ctx, recipient, msg.Content)
	}

	return msg, nil
}

func (uc *SendMessageUseCase) notifyIfOffline(ctx context.Context, recipientID string, text string) {
	if uc.Presence == nil || uc.Notifier == nil {
		return
	}
	if uc.Presence.IsOnline(recipientID) {
		return
	}
	if err := uc.Notifier.Notify(ctx, recipientID, text); err != nil {
		slog.Warn("offline notification hand-off failed", "recipient", recipientID, "err", err)
	}
}
