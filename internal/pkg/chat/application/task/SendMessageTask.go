package task

import (
	"context"
	"encoding/json"
	"time"

	qport "github.com/JPress-IEEE/Backend/internal/infrastructure/queue/port"
	chat "github.com/JPress-IEEE/Backend/internal/pkg/chat/application/domain"
	"github.com/JPress-IEEE/Backend/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/JPress-IEEE/Backend/internal/pkg/chat/persistence/repository/adapter"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SendMessageTaskType is the queue task name for sending a message within the chat domain.
const SendMessageTaskType = "chat:send_message"

// SendMessageTaskPayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid tight coupling with JSON tags.
type SendMessageTaskPayload struct {
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	Content        string `json:"content"`
}

// Broadcaster fans a payload out to a conversation channel. Satisfied by
// realtime.Hub.
type Broadcaster interface {
	Broadcast(conversationID string, payload []byte, excludeUserID string) int
}

// RegisterSendMessageTask binds the task handler to the provided server. Queued
// sends run the same use case as the websocket path, including the offline
// notification hand-off, and broadcast to whoever is joined right now.
func RegisterSendMessageTask(srv qport.Server, pool *pgxpool.Pool, presence usecase.PresenceChecker, notifier usecase.OfflineNotifier, bcast Broadcaster) {
	srv.Register(SendMessageTaskType, func(ctx context.Context, t qport.Task) error {
		var p SendMessageTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}

		repo := repoAdapter.NewPgChatRepository(pool)
		uc := usecase.NewSendMessageUseCase(repo, presence, notifier)

		// give DB a reasonable time budget per task execution
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		msg, err := uc.Execute(ctx, usecase.SendMessageInput{
			ConversationID: p.ConversationID,
			SenderID:       p.SenderID,
			Content:        p.Content,
		})
		if err != nil {
			// Retry/backoff policy is controlled by the adapter/server.
			return err
		}

		if bcast != nil {
			broadcastMessageReceived(bcast, *msg)
		}
		return nil
	})
}

func broadcastMessageReceived(bcast Broadcaster, msg chat.Message) {
	type messageBody struct {
		ID             string    `json:"id"`
		ConversationID string    `json:"conversation_id"`
		SenderID       string    `json:"sender_id"`
		Content        string    `json:"content"`
		IsRead         bool      `json:"is_read"`
		CreatedAt      time.Time `json:"created_at"`
		UpdatedAt      time.Time `json:"updated_at"`
	}
	event := struct {
		Type           string      `json:"type"`
		ConversationID string      `json:"conversation_id"`
		Message        messageBody `json:"message"`
	}{"message_received", msg.ConversationID, messageBody{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Content:        msg.Content,
		IsRead:         msg.IsRead,
		CreatedAt:      msg.CreatedAt,
		UpdatedAt:      msg.UpdatedAt,
	}}
	if payload, err := json.Marshal(event); err == nil {
		bcast.Broadcast(msg.ConversationID, payload, "")
	}
}
