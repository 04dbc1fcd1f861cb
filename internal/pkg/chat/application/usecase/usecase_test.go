package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	cacheport "github.com/JPress-IEEE/Backend/internal/infrastructure/cache/port"
	chat "github.com/JPress-IEEE/Backend/internal/pkg/chat/application/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatRepo is an in-memory ChatRepository for use case tests.
type fakeChatRepo struct {
	mu            sync.Mutex
	conversations map[string]chat.Conversation
	messages      map[string]chat.Message
	nextID        int
	convLookups   int
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		conversations: make(map[string]chat.Conversation),
		messages:      make(map[string]chat.Message),
	}
}

func (f *fakeChatRepo) addConversation(p1, p2 string) chat.Conversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	conv := chat.Conversation{
		ID:             fmt.Sprintf("conv-%d", f.nextID),
		Participant1ID: p1,
		Participant2ID: p2,
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	f.conversations[conv.ID] = conv
	return conv
}

func (f *fakeChatRepo) CreateConversation(_ context.Context, p1, p2 string) (chat.Conversation, error) {
	return f.addConversation(p1, p2), nil
}

func (f *fakeChatRepo) FindConversationByParticipants(_ context.Context, p1, p2 string) (chat.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.conversations {
		if (c.Participant1ID == p1 && c.Participant2ID == p2) || (c.Participant1ID == p2 && c.Participant2ID == p1) {
			return c, nil
		}
	}
	return chat.Conversation{}, chat.ErrConversationNotFound
}

func (f *fakeChatRepo) GetConversationByID(_ context.Context, id string) (chat.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.convLookups++
	c, ok := f.conversations[id]
	if !ok {
		return chat.Conversation{}, chat.ErrConversationNotFound
	}
	return c, nil
}

func (f *fakeChatRepo) SaveMessage(_ context.Context, m chat.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	m.ID = fmt.Sprintf("msg-%d", f.nextID)
	f.messages[m.ID] = m
	return m.ID, nil
}

func (f *fakeChatRepo) GetMessagesByConversation(_ context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var msgs []chat.Message
	for _, m := range f.messages {
		if m.ConversationID == conversationID {
			msgs = append(msgs, m)
		}
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	if offset > 0 {
		if offset >= len(msgs) {
			return nil, nil
		}
		msgs = msgs[offset:]
	}
	if limit > 0 && limit < len(msgs) {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (f *fakeChatRepo) GetMessageByID(_ context.Context, id string) (chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return chat.Message{}, chat.ErrMessageNotFound
	}
	return m, nil
}

func (f *fakeChatRepo) UpdateMessageContent(_ context.Context, id, content string) (chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return chat.Message{}, chat.ErrMessageNotFound
	}
	m.Content = content
	m.UpdatedAt = time.Now().UTC()
	f.messages[id] = m
	return m, nil
}

func (f *fakeChatRepo) DeleteMessage(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.messages[id]; !ok {
		return chat.ErrMessageNotFound
	}
	delete(f.messages, id)
	return nil
}

func (f *fakeChatRepo) MarkMessageRead(_ context.Context, id string) (chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[id]
	if !ok {
		return chat.Message{}, chat.ErrMessageNotFound
	}
	if !m.IsRead {
		m.IsRead = true
		m.UpdatedAt = time.Now().UTC()
		f.messages[id] = m
	}
	return m, nil
}

type fakePresence struct{ online map[string]bool }

func (f fakePresence) IsOnline(userID string) bool { return f.online[userID] }

type recordingNotifier struct {
	calls []struct{ recipient, text string }
}

func (r *recordingNotifier) Notify(_ context.Context, recipientID, text string) error {
	r.calls = append(r.calls, struct{ recipient, text string }{recipientID, text})
	return nil
}

type fakeCache struct {
	store map[string]string
	gets  int
}

func newFakeCache() *fakeCache { return &fakeCache{store: make(map[string]string)} }

func (f *fakeCache) Get(_ context.Context, key string) (string, error) {
	f.gets++
	if v, ok := f.store[key]; ok {
		return v, nil
	}
	return "", cacheport.ErrMiss
}

func (f *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	f.store[key] = value
	return nil
}

func (f *fakeCache) Del(_ context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, ok := f.store[k]; ok {
			delete(f.store, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeCache) Ping(context.Context) error { return nil }
func (f *fakeCache) Close() error               { return nil }

func TestCreateChat_ReturnsExistingPairEitherOrder(t *testing.T) {
	repo := newFakeChatRepo()
	uc := NewCreateChatUseCase(repo)

	first, err := uc.Execute(context.Background(), CreateChatInput{Participant1ID: "alice", Participant2ID: "bob"})
	require.NoError(t, err)

	again, err := uc.Execute(context.Background(), CreateChatInput{Participant1ID: "bob", Participant2ID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
}

func TestCreateChat_RejectsDuplicateParticipant(t *testing.T) {
	uc := NewCreateChatUseCase(newFakeChatRepo())

	_, err := uc.Execute(context.Background(), CreateChatInput{Participant1ID: "alice", Participant2ID: "alice"})
	assert.Error(t, err)
}

func TestJoinConversation_GuardSoundness(t *testing.T) {
	repo := newFakeChatRepo()
	conv := repo.addConversation("alice", "bob")
	uc := NewJoinConversationUseCase(repo, nil)

	_, err := uc.Execute(context.Background(), JoinConversationInput{ConversationID: conv.ID, UserID: "mallory"})
	assert.ErrorIs(t, err, chat.ErrNotParticipant)

	_, err = uc.Execute(context.Background(), JoinConversationInput{ConversationID: "missing", UserID: "alice"})
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
}

func TestJoinConversation_ReturnsBacklogInCreationOrder(t *testing.T) {
	repo := newFakeChatRepo()
	conv := repo.addConversation("alice", "bob")

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		_, err := repo.SaveMessage(context.Background(), chat.Message{
			ConversationID: conv.ID,
			SenderID:       "alice",
			Content:        fmt.Sprintf("msg %d", i),
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	uc := NewJoinConversationUseCase(repo, nil)
	res, err := uc.Execute(context.Background(), JoinConversationInput{ConversationID: conv.ID, UserID: "bob"})
	require.NoError(t, err)
	require.Len(t, res.Backlog, 3)
	for i, m := range res.Backlog {
		assert.Equal(t, fmt.Sprintf("msg %d", i), m.Content)
	}
}

func TestJoinConversation_UsesCachedConversation(t *testing.T) {
	repo := newFakeChatRepo()
	conv := repo.addConversation("alice", "bob")
	cache := newFakeCache()

	raw, err := json.Marshal(conv)
	require.NoError(t, err)
	require.NoError(t, cache.Set(context.Background(), conversationCacheKey(conv.ID), string(raw), 0))

	uc := NewJoinConversationUseCase(repo, cache)
	_, err = uc.Execute(context.Background(), JoinConversationInput{ConversationID: conv.ID, UserID: "alice"})
	require.NoError(t, err)
	assert.Zero(t, repo.convLookups, "cached conversation should skip the repository lookup")
}

func TestSendMessage_Validation(t *testing.T) {
	repo := newFakeChatRepo()
	conv := repo.addConversation("alice", "bob")
	uc := NewSendMessageUseCase(repo, nil, nil)

	_, err := uc.Execute(context.Background(), SendMessageInput{ConversationID: conv.ID, SenderID: "alice", Content: "   "})
	assert.ErrorIs(t, err, chat.ErrEmptyContent)

	_, err = uc.Execute(context.Background(), SendMessageInput{SenderID: "alice", Content: "hi"})
	assert.ErrorIs(t, err, chat.ErrMissingField)

	_, err = uc.Execute(context.Background(), SendMessageInput{ConversationID: conv.ID, SenderID: "mallory", Content: "hi"})
	assert.ErrorIs(t, err, chat.ErrNotParticipant)
}

func TestSendMessage_PersistedContentRoundTrips(t *testing.T) {
	repo := newFakeChatRepo()
	conv := repo.addConversation("alice", "bob")
	uc := NewSendMessageUseCase(repo, nil, nil)

	msg, err := uc.Execute(context.Background(), SendMessageInput{ConversationID: conv.ID, SenderID: "alice", Content: "hello"})
	require.NoError(t, err)
	require.NotEmpty(t, msg.ID)
	assert.False(t, msg.IsRead)

	backlog, err := repo.GetMessagesByConversation(context.Background(), conv.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, backlog, 1)
	assert.Equal(t, "hello", backlog[0].Content)
	assert.Equal(t, msg.ID, backlog[0].ID)
}

func TestSendMessage_OfflineRecipientHandsOffToNotifier(t *testing.T) {
	repo := newFakeChatRepo()
	conv := repo.addConversation("alice", "bob")
	notifier := &recordingNotifier{}
	uc := NewSendMessageUseCase(repo, fakePresence{online: map[string]bool{"alice": true}}, notifier)

	_, err := uc.Execute(context.Background(), SendMessageInput{ConversationID: conv.ID, SenderID: "alice", Content: "hello"})
	require.NoError(t, err)

	require.Len(t, notifier.calls, 1)
	assert.Equal(t, "bob", notifier.calls[0].recipient)
	assert.Equal(t, "hello", notifier.calls[0].text)
}

func TestSendMessage_OnlineRecipientSkipsNotifier(t *testing.T) {
	repo := newFakeChatRepo()
	conv := repo.addConversation("alice", "bob")
	notifier := &recordingNotifier{}
	uc := NewSendMessageUseCase(repo, fakePresence{online: map[string]bool{"alice": true, "bob": true}}, notifier)

	_, err := uc.Execute(context.Background(), SendMessageInput{ConversationID: conv.ID, SenderID: "alice", Content: "hello"})
	require.NoError(t, err)
	assert.Empty(t, notifier.calls)
}

func TestEditMessage_OnlySenderMayEdit(t *testing.T) {
	repo := newFakeChatRepo()
	conv := repo.addConversation("alice", "bob")
	id, err := repo.SaveMessage(context.Background(), chat.Message{ConversationID: conv.ID, SenderID: "zed", Content: "original", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	uc := NewEditMessageUseCase(repo)
	_, err = uc.Execute(context.Background(), EditMessageInput{MessageID: id, RequesterID: "alice", NewContent: "hijacked"})
	assert.ErrorIs(t, err, chat.ErrNotSender)

	// content untouched after the rejected edit
	m, err := repo.GetMessageByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "original", m.Content)

	updated, err := uc.Execute(context.Background(), EditMessageInput{MessageID: id, RequesterID: "zed", NewContent: "fixed"})
	require.NoError(t, err)
	assert.Equal(t, "fixed", updated.Content)
}

func TestEditMessage_NotFound(t *testing.T) {
	uc := NewEditMessageUseCase(newFakeChatRepo())
	_, err := uc.Execute(context.Background(), EditMessageInput{MessageID: "missing", RequesterID: "alice", NewContent: "x"})
	assert.ErrorIs(t, err, chat.ErrMessageNotFound)
}

func TestDeleteMessage_OnlySenderMayDelete(t *testing.T) {
	repo := newFakeChatRepo()
	conv := repo.addConversation("alice", "bob")
	id, err := repo.SaveMessage(context.Background(), chat.Message{ConversationID: conv.ID, SenderID: "alice", Content: "bye", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	uc := NewDeleteMessageUseCase(repo)
	_, err = uc.Execute(context.Background(), DeleteMessageInput{MessageID: id, RequesterID: "bob"})
	assert.ErrorIs(t, err, chat.ErrNotSender)

	removed, err := uc.Execute(context.Background(), DeleteMessageInput{MessageID: id, RequesterID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, conv.ID, removed.ConversationID)

	_, err = repo.GetMessageByID(context.Background(), id)
	assert.ErrorIs(t, err, chat.ErrMessageNotFound)
}

func TestMarkMessageRead_Idempotent(t *testing.T) {
	repo := newFakeChatRepo()
	conv := repo.addConversation("alice", "bob")
	id, err := repo.SaveMessage(context.Background(), chat.Message{ConversationID: conv.ID, SenderID: "alice", Content: "hi", CreatedAt: time.Now().UTC()})
	require.NoError(t, err)

	uc := NewMarkMessageReadUseCase(repo)

	first, err := uc.Execute(context.Background(), MarkMessageReadInput{MessageID: id})
	require.NoError(t, err)
	assert.True(t, first.IsRead)

	second, err := uc.Execute(context.Background(), MarkMessageReadInput{MessageID: id})
	require.NoError(t, err)
	assert.True(t, second.IsRead)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)

	_, err = uc.Execute(context.Background(), MarkMessageReadInput{MessageID: "missing"})
	assert.ErrorIs(t, err, chat.ErrMessageNotFound)
}
