package call

import (
	"errors"
	"time"
)

// Status is the lifecycle state of a call session.
// pending -> active -> ended, or pending -> missed. Ended and missed are
// terminal; sessions are archived, never deleted.
type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusEnded   Status = "ended"
	StatusMissed  Status = "missed"
)

// Session is one signaling session between the two participants of a
// conversation. SenderID is the initiator. StartTime is set on the transition
// to active, EndTime on the transition to ended.
type Session struct {
	ID             string     `db:"id"`
	ConversationID string     `db:"conversation_id"`
	SenderID       string     `db:"sender_id"`
	ReceiverID     string     `db:"receiver_id"`
	Status         Status     `db:"status"`
	StartTime      *time.Time `db:"start_time"`
	EndTime        *time.Time `db:"end_time"`
	CreatedAt      time.Time  `db:"created_at"`
}

var (
	// ErrCallInProgress rejects a request while a pending or active session
	// already exists for the conversation.
	ErrCallInProgress = errors.New("call: a pending or active call already exists for this conversation")

	// ErrNoMatchingCall is the expected outcome for the loser of a concurrent
	// transition race, or for a transition against a session that does not
	// exist or is no longer in the guarding state. It is not a server fault.
	ErrNoMatchingCall = errors.New("call: no call session in the expected state")

	// ErrMissingField rejects a signaling event with absent identifiers.
	ErrMissingField = errors.New("call: conversation_id, sender_id and receiver_id are required")
)
