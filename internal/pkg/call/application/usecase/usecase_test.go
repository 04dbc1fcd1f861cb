package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	call "github.com/JPress-IEEE/Backend/internal/pkg/call/application/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCallRepo mirrors the store's conditional-update semantics: every
// transition matches and mutates under one lock acquisition, so concurrent
// callers observe the same winner-takes-all behavior as the SQL adapter.
type fakeCallRepo struct {
	mu       sync.Mutex
	sessions []*call.Session
	nextID   int
}

func (f *fakeCallRepo) CreateCallSession(_ context.Context, conversationID, senderID, receiverID string) (call.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ConversationID == conversationID && (s.Status == call.StatusPending || s.Status == call.StatusActive) {
			return call.Session{}, call.ErrCallInProgress
		}
	}
	f.nextID++
	sess := &call.Session{
		ID:             fmt.Sprintf("call-%d", f.nextID),
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Status:         call.StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	f.sessions = append(f.sessions, sess)
	return *sess, nil
}

func (f *fakeCallRepo) AcceptCall(_ context.Context, conversationID, senderID, receiverID string) (call.Session, error) {
	return f.casUpdate(conversationID, senderID, receiverID, call.StatusPending, func(s *call.Session) {
		s.Status = call.StatusActive
		now := time.Now().UTC()
		s.StartTime = &now
	})
}

func (f *fakeCallRepo) DeclineCall(_ context.Context, conversationID, senderID, receiverID string) (call.Session, error) {
	return f.casUpdate(conversationID, senderID, receiverID, call.StatusPending, func(s *call.Session) {
		s.Status = call.StatusMissed
	})
}

func (f *fakeCallRepo) EndCall(_ context.Context, conversationID, senderID, receiverID string) (call.Session, error) {
	return f.casUpdate(conversationID, senderID, receiverID, call.StatusActive, func(s *call.Session) {
		s.Status = call.StatusEnded
		now := time.Now().UTC()
		s.EndTime = &now
	})
}

func (f *fakeCallRepo) casUpdate(conversationID, senderID, receiverID string, expected call.Status, apply func(*call.Session)) (call.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ConversationID == conversationID && s.SenderID == senderID && s.ReceiverID == receiverID && s.Status == expected {
			apply(s)
			return *s, nil
		}
	}
	return call.Session{}, call.ErrNoMatchingCall
}

func TestRequestCall_Validation(t *testing.T) {
	uc := NewRequestCallUseCase(&fakeCallRepo{})

	_, err := uc.Execute(context.Background(), RequestCallInput{ConversationID: "c1", SenderID: "x"})
	assert.ErrorIs(t, err, call.ErrMissingField)
}

func TestRequestCall_PersistsPendingSession(t *testing.T) {
	// Scenario: the receiver being offline does not block the request; the
	// session persists in pending state regardless of live delivery.
	repo := &fakeCallRepo{}
	uc := NewRequestCallUseCase(repo)

	sess, err := uc.Execute(context.Background(), RequestCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
	require.NoError(t, err)
	assert.Equal(t, call.StatusPending, sess.Status)
	assert.Nil(t, sess.StartTime)
	assert.Nil(t, sess.EndTime)
}

func TestRequestCall_RejectsSecondOpenSession(t *testing.T) {
	repo := &fakeCallRepo{}
	uc := NewRequestCallUseCase(repo)

	_, err := uc.Execute(context.Background(), RequestCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), RequestCallInput{ConversationID: "c1", SenderID: "y", ReceiverID: "x"})
	assert.ErrorIs(t, err, call.ErrCallInProgress)

	// an open session in another conversation does not interfere
	_, err = uc.Execute(context.Background(), RequestCallInput{ConversationID: "c2", SenderID: "x", ReceiverID: "z"})
	assert.NoError(t, err)
}

func TestAcceptCall_TransitionsPendingToActive(t *testing.T) {
	repo := &fakeCallRepo{}
	_, err := NewRequestCallUseCase(repo).Execute(context.Background(), RequestCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
	require.NoError(t, err)

	sess, err := NewAcceptCallUseCase(repo).Execute(context.Background(), AcceptCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
	require.NoError(t, err)
	assert.Equal(t, call.StatusActive, sess.Status)
	require.NotNil(t, sess.StartTime)
}

func TestDeclineCall_TransitionsPendingToMissed(t *testing.T) {
	repo := &fakeCallRepo{}
	_, err := NewRequestCallUseCase(repo).Execute(context.Background(), RequestCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
	require.NoError(t, err)

	sess, err := NewDeclineCallUseCase(repo).Execute(context.Background(), DeclineCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
	require.NoError(t, err)
	assert.Equal(t, call.StatusMissed, sess.Status)
	assert.Nil(t, sess.StartTime)
}

func TestAcceptAndDecline_OnlyOneWinsConcurrently(t *testing.T) {
	// Scenario: both peers resolve the same pending session within the same
	// tick. Exactly one conditional update matches; the other gets the
	// expected race outcome, not a server error.
	repo := &fakeCallRepo{}
	_, err := NewRequestCallUseCase(repo).Execute(context.Background(), RequestCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
	require.NoError(t, err)

	accept := NewAcceptCallUseCase(repo)
	decline := NewDeclineCallUseCase(repo)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := accept.Execute(context.Background(), AcceptCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
		results <- err
	}()
	go func() {
		defer wg.Done()
		_, err := decline.Execute(context.Background(), DeclineCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
		results <- err
	}()
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, call.ErrNoMatchingCall)
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
}

func TestAcceptCall_ConcurrentDoubleAcceptHasOneWinner(t *testing.T) {
	repo := &fakeCallRepo{}
	_, err := NewRequestCallUseCase(repo).Execute(context.Background(), RequestCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
	require.NoError(t, err)

	accept := NewAcceptCallUseCase(repo)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := accept.Execute(context.Background(), AcceptCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, call.ErrNoMatchingCall)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestEndCall_RequiresActiveSession(t *testing.T) {
	// Scenario: ending a session that was declined to missed must fail with
	// the race-loss outcome since the guard requires active.
	repo := &fakeCallRepo{}
	_, err := NewRequestCallUseCase(repo).Execute(context.Background(), RequestCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
	require.NoError(t, err)
	_, err = NewDeclineCallUseCase(repo).Execute(context.Background(), DeclineCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
	require.NoError(t, err)

	_, err = NewEndCallUseCase(repo).Execute(context.Background(), EndCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
	assert.ErrorIs(t, err, call.ErrNoMatchingCall)
}

func TestEndCall_TransitionsActiveToEnded(t *testing.T) {
	repo := &fakeCallRepo{}
	_, err := NewRequestCallUseCase(repo).Execute(context.Background(), RequestCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
	require.NoError(t, err)
	_, err = NewAcceptCallUseCase(repo).Execute(context.Background(), AcceptCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
	require.NoError(t, err)

	sess, err := NewEndCallUseCase(repo).Execute(context.Background(), EndCallInput{ConversationID: "c1", SenderID: "x", ReceiverID: "y"})
	require.NoError(t, err)
	assert.Equal(t, call.StatusEnded, sess.Status)
	require.NotNil(t, sess.EndTime)

	// the archived session frees the conversation for a new request
	_, err = NewRequestCallUseCase(repo).Execute(context.Background(), RequestCallInput{ConversationID: "c1", SenderID: "y", ReceiverID: "x"})
	assert.NoError(t, err)
}
