package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	notification "github.com/JPress-IEEE/Backend/internal/pkg/notification/application/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationRepo struct {
	mu     sync.Mutex
	items  map[string]notification.Notification
	nextID int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{items: make(map[string]notification.Notification)}
}

func (f *fakeNotificationRepo) CreateNotification(_ context.Context, n notification.Notification) (notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n.ID = fmt.Sprintf("ntf-%d", f.nextID)
	n.CreatedAt = time.Now().UTC()
	n.UpdatedAt = n.CreatedAt
	f.items[n.ID] = n
	return n, nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID string) ([]notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notification.Notification
	for _, n := range f.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id string) (notification.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.items[id]
	if !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	n.Status = notification.StatusRead
	n.UpdatedAt = time.Now().UTC()
	f.items[id] = n
	return n, nil
}

func (f *fakeNotificationRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return notification.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

// fakePusher records per-user pushes; deliverTo simulates who is online.
type fakePusher struct {
	deliverTo map[string]bool
	payloads  [][]byte
}

func (f *fakePusher) NotifyUser(userID string, payload []byte) bool {
	if !f.deliverTo[userID] {
		return false
	}
	f.payloads = append(f.payloads, payload)
	return true
}

func TestNotify_PersistsForOfflineRecipientWithoutPush(t *testing.T) {
	// Scenario: "hello" sent to an offline user ends up as a durable unread
	// notification and no live event fires.
	repo := newFakeNotificationRepo()
	pusher := &fakePusher{deliverTo: map[string]bool{}}
	uc := NewNotifyUseCase(repo, pusher)

	created, err := uc.Execute(context.Background(), NotifyInput{RecipientID: "bob", Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", created.Message)
	assert.Equal(t, notification.StatusUnread, created.Status)

	stored, err := repo.ListByUser(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "hello", stored[0].Message)
	assert.Empty(t, pusher.payloads)
}

func TestNotify_PushesToOnlineRecipient(t *testing.T) {
	repo := newFakeNotificationRepo()
	pusher := &fakePusher{deliverTo: map[string]bool{"bob": true}}
	uc := NewNotifyUseCase(repo, pusher)

	created, err := uc.Execute(context.Background(), NotifyInput{RecipientID: "bob", Text: "ping"})
	require.NoError(t, err)

	require.Len(t, pusher.payloads, 1)
	var event struct {
		Type         string `json:"type"`
		Notification struct {
			ID      string `json:"id"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"notification"`
	}
	require.NoError(t, json.Unmarshal(pusher.payloads[0], &event))
	assert.Equal(t, "receive_notification", event.Type)
	assert.Equal(t, created.ID, event.Notification.ID)
	assert.Equal(t, "ping", event.Notification.Message)
	assert.Equal(t, "unread", event.Notification.Status)
}

func TestNotify_Validation(t *testing.T) {
	uc := NewNotifyUseCase(newFakeNotificationRepo(), nil)

	_, err := uc.Execute(context.Background(), NotifyInput{RecipientID: "", Text: "x"})
	assert.ErrorIs(t, err, notification.ErrMissingField)

	_, err = uc.Execute(context.Background(), NotifyInput{RecipientID: "bob", Text: ""})
	assert.ErrorIs(t, err, notification.ErrMissingField)
}

func TestMarkNotificationRead(t *testing.T) {
	repo := newFakeNotificationRepo()
	created, err := repo.CreateNotification(context.Background(), notification.Notification{UserID: "bob", Message: "hi", Status: notification.StatusUnread})
	require.NoError(t, err)

	uc := NewMarkNotificationReadUseCase(repo)
	updated, err := uc.Execute(context.Background(), MarkNotificationReadInput{NotificationID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, notification.StatusRead, updated.Status)

	_, err = uc.Execute(context.Background(), MarkNotificationReadInput{NotificationID: "missing"})
	assert.ErrorIs(t, err, notification.ErrNotFound)
}

func TestDeleteNotification(t *testing.T) {
	repo := newFakeNotificationRepo()
	created, err := repo.CreateNotification(context.Background(), notification.Notification{UserID: "bob", Message: "hi", Status: notification.StatusUnread})
	require.NoError(t, err)

	uc := NewDeleteNotificationUseCase(repo)
	require.NoError(t, uc.Execute(context.Background(), DeleteNotificationInput{NotificationID: created.ID}))
	assert.ErrorIs(t, uc.Execute(context.Background(), DeleteNotificationInput{NotificationID: created.ID}), notification.ErrNotFound)
}
