package chat

import "errors"

// Domain-level errors for chat behaviors
var (
	ErrConversationNotFound = errors.New("chat: conversation not found")
	ErrMessageNotFound      = errors.New("chat: message not found")
	ErrNotParticipant       = errors.New("chat: user is not a participant in the conversation")
	ErrNotSender            = errors.New("chat: user is not the sender of the message")
	ErrMissingField         = errors.New("chat: conversation_id and sender_id are required")
	ErrEmptyContent         = errors.New("chat: message content must not be empty")
)
