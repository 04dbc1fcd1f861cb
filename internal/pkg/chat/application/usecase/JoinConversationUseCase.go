package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	cacheport "github.com/JPress-IEEE/Backend/internal/infrastructure/cache/port"
	chat "github.com/JPress-IEEE/Backend/internal/pkg/chat/application/domain"
	repository "github.com/JPress-IEEE/Backend/internal/pkg/chat/persistence/repository/port"
)

const conversationCacheTTL = 10 * time.Minute

// JoinConversationInput validates a request to attach a user session to a conversation.
type JoinConversationInput struct {
	ConversationID string
	UserID         string
}

// JoinConversationResult carries what a freshly joined client needs to render
// history without a separate fetch.
type JoinConversationResult struct {
	Conversation chat.Conversation
	Backlog      []chat.Message
}

// JoinConversationUseCase is the membership guard for the whole realtime
// surface: it admits a user into a conversation channel only when they are one
// of the two declared participants, and returns the full message backlog in
// creation order. Conversation lookups go through the cache first since
// participants never change after creation.
type JoinConversationUseCase struct {
	Repo  repository.ChatRepository
	Cache cacheport.Cache // optional; nil disables caching
}

func NewJoinConversationUseCase(repo repository.ChatRepository, cache cacheport.Cache) *JoinConversationUseCase {
	return &JoinConversationUseCase{Repo: repo, Cache: cache}
}

func (uc *JoinConversationUseCase) Execute(ctx context.Context, in JoinConversationInput) (*JoinConversationResult, error) {
	if in.ConversationID == "" || in.UserID == "" {
		return nil, fmt.Errorf("conversation_id and user_id are required")
	}

	conv, err := uc.lookupConversation(ctx, in.ConversationID)
	if err != nil {
		if errors.Is(err, chat.ErrConversationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !conv.HasParticipant(in.UserID) {
		return nil, chat.ErrNotParticipant
	}

	backlog, err := uc.Repo.GetMessagesByConversation(ctx, in.ConversationID, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return &JoinConversationResult{Conversation: conv, Backlog: backlog}, nil
}

func (uc *JoinConversationUseCase) lookupConversation(ctx context.Context, conversationID string) (chat.Conversation, error) {
	key := conversationCacheKey(conversationID)

	if uc.Cache != nil {
		if raw, err := uc.Cache.Get(ctx, key); err == nil {
			var conv chat.Conversation
			if json.Unmarshal([]byte(raw), &conv) == nil {
				return conv, nil
			}
		}
	}

	conv, err := uc.Repo.GetConversationByID(ctx, conversationID)
	if err != nil {
		return chat.Conversation{}, err
	}

	if uc.Cache != nil {
		if raw, err := json.Marshal(conv); err == nil {
			// best-effort; a cache failure must not fail the join
			_ = uc.Cache.Set(ctx, key, string(raw), conversationCacheTTL)
		}
	}
	return conv, nil
}

func conversationCacheKey(conversationID string) string {
	return "chat:conversation:" + conversationID
}
