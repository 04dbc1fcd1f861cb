package repository

import (
	"context"

	call "github.com/JPress-IEEE/Backend/internal/pkg/call/application/domain"
)

// CallRepository persists call sessions. Every transition method is a single
// conditional update matching on the expected prior status, never a separate
// read followed by a write, so concurrent peers racing on the same session
// resolve in the store: exactly one matcher wins, the rest get
// call.ErrNoMatchingCall.
type CallRepository interface {
	// CreateCallSession inserts a pending session, guarded by the invariant
	// that no pending or active session exists for the conversation. Returns
	// call.ErrCallInProgress when the guard rejects the insert.
	CreateCallSession(ctx context.Context, conversationID, senderID, receiverID string) (call.Session, error)

	// AcceptCall transitions pending -> active and stamps start_time.
	AcceptCall(ctx context.Context, conversationID, senderID, receiverID string) (call.Session, error)

	// DeclineCall transitions pending -> missed.
	DeclineCall(ctx context.Context, conversationID, senderID, receiverID string) (call.Session, error)

	// EndCall transitions active -> ended and stamps end_time.
	EndCall(ctx context.Context, conversationID, senderID, receiverID string) (call.Session, error)
}
