package chat

import "time"

// Conversation is a persistent two-party messaging thread. The participant pair
// is unordered and unique; creation dedupes against the existing pair in either
// order. Timestamps are the only fields that ever change.
type Conversation struct {
	ID             string    `db:"id"`
	Participant1ID string    `db:"participant1_id"`
	Participant2ID string    `db:"participant2_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// HasParticipant tells whether userID is one of the two declared participants.
func (c Conversation) HasParticipant(userID string) bool {
	return userID != "" && (userID == c.Participant1ID || userID == c.Participant2ID)
}

// OtherParticipant returns the participant on the other side of userID, or ""
// when userID is not part of the conversation.
func (c Conversation) OtherParticipant(userID string) string {
	switch userID {
	case c.Participant1ID:
		return c.Participant2ID
	case c.Participant2ID:
		return c.Participant1ID
	default:
		return ""
	}
}
