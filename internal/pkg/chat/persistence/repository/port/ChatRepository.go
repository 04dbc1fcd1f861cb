package repository

import (
	"context"

	chat "github.com/JPress-IEEE/Backend/internal/pkg/chat/application/domain"
)

// ChatRepository defines persistence operations for the chat domain.
// Adapters translate "no rows" into the chat domain's not-found errors so use
// cases never inspect driver errors.
type ChatRepository interface {
	// CreateConversation persists a new two-party thread and returns it with
	// DB-generated id and timestamps.
	CreateConversation(ctx context.Context, participant1ID, participant2ID string) (chat.Conversation, error)

	// FindConversationByParticipants looks the pair up in either order.
	// Returns chat.ErrConversationNotFound when no thread exists for the pair.
	FindConversationByParticipants(ctx context.Context, participant1ID, participant2ID string) (chat.Conversation, error)

	// GetConversationByID returns chat.ErrConversationNotFound when absent.
	GetConversationByID(ctx context.Context, conversationID string) (chat.Conversation, error)

	// SaveMessage persists m and returns the DB-generated id.
	SaveMessage(ctx context.Context, m chat.Message) (string, error)

	// GetMessagesByConversation returns messages ordered by creation time
	// ascending. limit <= 0 means no limit (full backlog).
	GetMessagesByConversation(ctx context.Context, conversationID string, limit int, offset int) ([]chat.Message, error)

	// GetMessageByID returns chat.ErrMessageNotFound when absent.
	GetMessageByID(ctx context.Context, messageID string) (chat.Message, error)

	// UpdateMessageContent replaces the content and returns the updated row.
	// Returns chat.ErrMessageNotFound when absent.
	UpdateMessageContent(ctx context.Context, messageID string, content string) (chat.Message, error)

	// DeleteMessage removes the row. Returns chat.ErrMessageNotFound when absent.
	DeleteMessage(ctx context.Context, messageID string) error

	// MarkMessageRead sets is_read=true and returns the updated row. The update
	// is idempotent; marking an already-read message succeeds unchanged.
	// Returns chat.ErrMessageNotFound when absent.
	MarkMessageRead(ctx context.Context, messageID string) (chat.Message, error)
}
