package task

import (
	"context"
	"encoding/json"
	"time"

	qport "github.com/JPress-IEEE/Backend/internal/infrastructure/queue/port"
	"github.com/JPress-IEEE/Backend/internal/pkg/notification/application/usecase"
	repoAdapter "github.com/JPress-IEEE/Backend/internal/pkg/notification/persistence/repository/adapter"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NotifyTaskType is the queue task name for offline-notification fan-out.
const NotifyTaskType = "notification:offline_message"

// NotifyTaskPayload is the JSON payload transported via the queue.
type NotifyTaskPayload struct {
	RecipientID string `json:"recipientId"`
	Text        string `json:"text"`
}

// QueueNotifier enqueues offline notifications instead of writing them inline,
// keeping the message send path off the notification table. It satisfies the
// chat use case's OfflineNotifier port.
type QueueNotifier struct {
	Q qport.Client
}

func NewQueueNotifier(client qport.Client) *QueueNotifier {
	return &QueueNotifier{Q: client}
}

func (n *QueueNotifier) Notify(ctx context.Context, recipientID string, text string) error {
	payload, err := json.Marshal(NotifyTaskPayload{RecipientID: recipientID, Text: text})
	if err != nil {
		return err
	}
	_, err = n.Q.Enqueue(ctx, qport.Task{Type: NotifyTaskType, Payload: payload}, qport.EnqueueOption{
		Queue:    "chat",
		MaxRetry: 10,
	})
	return err
}

// RegisterNotifyTask binds the fan-out handler to the worker server. The
// handler persists the notification and pushes it live when the recipient came
// back online in the meantime.
func RegisterNotifyTask(srv qport.Server, pool *pgxpool.Pool, pusher usecase.Pusher) {
	srv.Register(NotifyTaskType, func(ctx context.Context, t qport.Task) error {
		var p NotifyTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}

		uc := usecase.NewNotifyUseCase(repoAdapter.NewPgNotificationRepository(pool), pusher)

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		_, err := uc.Execute(ctx, usecase.NotifyInput{RecipientID: p.RecipientID, Text: p.Text})
		return err
	})
}
