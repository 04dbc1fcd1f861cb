package adapter

import (
	"context"
	"errors"

	chat "github.com/JPress-IEEE/Backend/internal/pkg/chat/application/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

const conversationColumns = "id::text, participant1_id::text, participant2_id::text, created_at, updated_at"

const messageColumns = "id::text, conversation_id::text, sender_id::text, content, is_read, created_at, updated_at"

func (r *PgChatRepository) CreateConversation(ctx context.Context, participant1ID, participant2ID string) (chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, errors.New("PgChatRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO chat.conversation (participant1_id, participant2_id)
		VALUES ($1::uuid, $2::uuid)
		RETURNING `+conversationColumns,
		participant1ID, participant2ID)
	return scanConversation(row)
}

func (r *PgChatRepository) FindConversationByParticipants(ctx context.Context, participant1ID, participant2ID string) (chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, errors.New("PgChatRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM chat.conversation
		WHERE (participant1_id = $1::uuid AND participant2_id = $2::uuid)
		   OR (participant1_id = $2::uuid AND participant2_id = $1::uuid)
	`, participant1ID, participant2ID)
	conv, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Conversation{}, chat.ErrConversationNotFound
	}
	return conv, err
}

func (r *PgChatRepository) GetConversationByID(ctx context.Context, conversationID string) (chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, errors.New("PgChatRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM chat.conversation
		WHERE id = $1::uuid
	`, conversationID)
	conv, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Conversation{}, chat.ErrConversationNotFound
	}
	return conv, err
}

func (r *PgChatRepository) SaveMessage(ctx context.Context, m chat.Message) (string, error) {
	if r == nil || r.pool == nil {
		return "", errors.New("PgChatRepository: nil pool")
	}
	var id string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat.message (conversation_id, sender_id, content, is_read, created_at, updated_at)
		VALUES ($1::uuid, $2::uuid, $3, $4, $5, $5)
		RETURNING id::text
	`, m.ConversationID, m.SenderID, m.Content, m.IsRead, m.CreatedAt).Scan(&id)
	return id, err
}

func (r *PgChatRepository) GetMessagesByConversation(ctx context.Context, conversationID string, limit int, offset int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	if offset < 0 {
		offset = 0
	}
	query := `
		SELECT ` + messageColumns + `
		FROM chat.message
		WHERE conversation_id = $1::uuid
		ORDER BY created_at ASC
		OFFSET $2`
	args := []any{conversationID, offset}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var msg chat.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.IsRead, &msg.CreatedAt, &msg.UpdatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

func (r *PgChatRepository) GetMessageByID(ctx context.Context, messageID string) (chat.Message, error) {
	if r == nil || r.pool == nil {
		return chat.Message{}, errors.New("PgChatRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		SELECT `+messageColumns+`
		FROM chat.message
		WHERE id = $1::uuid
	`, messageID)
	msg, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Message{}, chat.ErrMessageNotFound
	}
	return msg, err
}

func (r *PgChatRepository) UpdateMessageContent(ctx context.Context, messageID string, content string) (chat.Message, error) {
	if r == nil || r.pool == nil {
		return chat.Message{}, errors.New("PgChatRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE chat.message
		SET content = $2, updated_at = now()
		WHERE id = $1::uuid
		RETURNING `+messageColumns,
		messageID, content)
	msg, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Message{}, chat.ErrMessageNotFound
	}
	return msg, err
}

func (r *PgChatRepository) DeleteMessage(ctx context.Context, messageID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `DELETE FROM chat.message WHERE id = $1::uuid`, messageID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return chat.ErrMessageNotFound
	}
	return nil
}

func (r *PgChatRepository) MarkMessageRead(ctx context.Context, messageID string) (chat.Message, error) {
	if r == nil || r.pool == nil {
		return chat.Message{}, errors.New("PgChatRepository: nil pool")
	}
	// updated_at only advances on the first flip so a repeated mark is a true no-op
	row := r.pool.QueryRow(ctx, `
		UPDATE chat.message
		SET is_read = true,
		    updated_at = CASE WHEN is_read THEN updated_at ELSE now() END
		WHERE id = $1::uuid
		RETURNING `+messageColumns,
		messageID)
	msg, err := scanMessage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return chat.Message{}, chat.ErrMessageNotFound
	}
	return msg, err
}

func scanConversation(row pgx.Row) (chat.Conversation, error) {
	var c chat.Conversation
	err := row.Scan(&c.ID, &c.Participant1ID, &c.Participant2ID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanMessage(row pgx.Row) (chat.Message, error) {
	var m chat.Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
