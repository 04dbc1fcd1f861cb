package adapter

import (
	"context"
	"errors"

	notification "github.com/JPress-IEEE/Backend/internal/pkg/notification/application/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgNotificationRepository struct {
	pool *pgxpool.Pool
}

func NewPgNotificationRepository(pool *pgxpool.Pool) *PgNotificationRepository {
	return &PgNotificationRepository{pool: pool}
}

const notificationColumns = "id::text, user_id::text, message, status, created_at, updated_at"

func (r *PgNotificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if r == nil || r.pool == nil {
		return notification.Notification{}, errors.New("PgNotificationRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO chat.notification (user_id, message, status)
		VALUES ($1::uuid, $2, $3)
		RETURNING `+notificationColumns,
		n.UserID, n.Message, n.Status)
	return scanNotification(row)
}

func (r *PgNotificationRepository) ListByUser(ctx context.Context, userID string) ([]notification.Notification, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgNotificationRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+`
		FROM chat.notification
		WHERE user_id = $1::uuid
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []notification.Notification
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Status, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

func (r *PgNotificationRepository) MarkRead(ctx context.Context, notificationID string) (notification.Notification, error) {
	if r == nil || r.pool == nil {
		return notification.Notification{}, errors.New("PgNotificationRepository: nil pool")
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE chat.notification
		SET status = 'read', updated_at = now()
		WHERE id = $1::uuid
		RETURNING `+notificationColumns,
		notificationID)
	n, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return notification.Notification{}, notification.ErrNotFound
	}
	return n, err
}

func (r *PgNotificationRepository) Delete(ctx context.Context, notificationID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgNotificationRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `DELETE FROM chat.notification WHERE id = $1::uuid`, notificationID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func scanNotification(row pgx.Row) (notification.Notification, error) {
	var n notification.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Message, &n.Status, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}
