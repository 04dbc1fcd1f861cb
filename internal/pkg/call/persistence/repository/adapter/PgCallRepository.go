package adapter

import (
	"context"
	"errors"

	call "github.com/JPress-IEEE/Backend/internal/pkg/call/application/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgCallRepository struct {
	pool *pgxpool.Pool
}

func NewPgCallRepository(pool *pgxpool.Pool) *PgCallRepository {
	return &PgCallRepository{pool: pool}
}

const sessionColumns = "id::text, conversation_id::text, sender_id::text, receiver_id::text, status, start_time, end_time, created_at"

// CreateCallSession inserts a pending session only when the conversation has no
// open one. The NOT EXISTS guard is backed by the partial unique index on
// (conversation_id) WHERE status IN ('pending','active') in db/schema.sql, so
// two racing requests cannot both insert.
func (r *PgCallRepository) CreateCallSession(ctx context.Context, conversationID, senderID, receiverID string) (call.Session, error) {
	if r == nil || r.pool == nil {
		return call.Session{}, errors.New("PgCallRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO chat.call_session (conversation_id, sender_id, receiver_id, status)
		SELECT $1::uuid, $2::uuid, $3::uuid, 'pending'
		WHERE NOT EXISTS (
			SELECT 1 FROM chat.call_session
			WHERE conversation_id = $1::uuid AND status IN ('pending', 'active')
		)
		RETURNING `+sessionColumns,
		conversationID, senderID, receiverID)
	sess, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return call.Session{}, call.ErrCallInProgress
	}
	// Two concurrent requests can both pass NOT EXISTS before either commits;
	// the loser then trips the partial unique index instead. Same outcome,
	// same error.
	if isUniqueViolation(err) {
		return call.Session{}, call.ErrCallInProgress
	}
	return sess, err
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PgCallRepository) AcceptCall(ctx context.Context, conversationID, senderID, receiverID string) (call.Session, error) {
	return r.transition(ctx, conversationID, senderID, receiverID, `
		UPDATE chat.call_session
		SET status = 'active', start_time = now()
		WHERE conversation_id = $1::uuid AND sender_id = $2::uuid AND receiver_id = $3::uuid AND status = 'pending'
		RETURNING `+sessionColumns)
}

func (r *PgCallRepository) DeclineCall(ctx context.Context, conversationID, senderID, receiverID string) (call.Session, error) {
	return r.transition(ctx, conversationID, senderID, receiverID, `
		UPDATE chat.call_session
		SET status = 'missed'
		WHERE conversation_id = $1::uuid AND sender_id = $2::uuid AND receiver_id = $3::uuid AND status = 'pending'
		RETURNING `+sessionColumns)
}

func (r *PgCallRepository) EndCall(ctx context.Context, conversationID, senderID, receiverID string) (call.Session, error) {
	return r.transition(ctx, conversationID, senderID, receiverID, `
		UPDATE chat.call_session
		SET status = 'ended', end_time = now()
		WHERE conversation_id = $1::uuid AND sender_id = $2::uuid AND receiver_id = $3::uuid AND status = 'active'
		RETURNING `+sessionColumns)
}

// transition runs one conditional update. A zero-row result means the session
// was already resolved by a concurrent peer (or never existed) and surfaces as
// call.ErrNoMatchingCall.
func (r *PgCallRepository) transition(ctx context.Context, conversationID, senderID, receiverID, query string) (call.Session, error) {
	if r == nil || r.pool == nil {
		return call.Session{}, errors.New("PgCallRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, query, conversationID, senderID, receiverID)
	sess, err := scanSession(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return call.Session{}, call.ErrNoMatchingCall
	}
	return sess, err
}

func scanSession(row pgx.Row) (call.Session, error) {
	var s call.Session
	err := row.Scan(&s.ID, &s.ConversationID, &s.SenderID, &s.ReceiverID, &s.Status, &s.StartTime, &s.EndTime, &s.CreatedAt)
	return s, err
}
