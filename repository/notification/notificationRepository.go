package notificationrepo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"libraryrental/model"
	"libraryrental/repository"
	"libraryrental/util/database"
)

type Repo struct{ db *database.DB }

func New(db *database.DB) *Repo { return &Repo{db} }

func (r *Repo) Insert(ctx context.Context, n *model.Notification) error {
	const q = `
INSERT INTO notifications (user_id, title, message, type, data)
VALUES ($1,$2,$3,$4,$5)
RETURNING id, created_at`
	data := n.Data
	if len(data) == 0 {
		data = []byte(`{}`)
	}
	err := r.db.Pool.QueryRow(ctx, q, n.UserID, n.Title, n.Message, string(n.Type), data).
		Scan(&n.ID, &n.CreatedAt)
	return repository.MapPgError(err)
}

func (r *Repo) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, offset, limit int) ([]model.Notification, int64, int64, error) {
	const q = `
SELECT id, user_id, title, message, type, data, read_at, created_at
FROM notifications
WHERE user_id = $1
AND ($2 = FALSE OR read_at IS NULL)
ORDER BY created_at DESC, id DESC
OFFSET $3 LIMIT $4`
	rows, err := r.db.Pool.Query(ctx, q, userID, unreadOnly, offset, limit)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	items := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		var typ string
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &n.Data, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, 0, 0, err
		}
		n.Type = model.NotificationType(typ)
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}

	const qCount = `
SELECT COUNT(*) FILTER (WHERE $2 = FALSE OR read_at IS NULL),
       COUNT(*) FILTER (WHERE read_at IS NULL)
FROM notifications
WHERE user_id = $1`
	var total, unread int64
	if err := r.db.Pool.QueryRow(ctx, qCount, userID, unreadOnly).Scan(&total, &unread); err != nil {
		return nil, 0, 0, err
	}
	return items, total, unread, nil
}

// MarkRead is idempotent; ErrNotFound when the notification is not the user's.
func (r *Repo) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) (*model.Notification, error) {
	const q = `
UPDATE notifications
SET read_at = COALESCE(read_at, $3)
WHERE id = $1
AND user_id = $2
RETURNING id, user_id, title, message, type, data, read_at, created_at`
	var n model.Notification
	var typ string
	err := r.db.Pool.QueryRow(ctx, q, id, userID, at).
		Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &typ, &n.Data, &n.ReadAt, &n.CreatedAt)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	n.Type = model.NotificationType(typ)
	return &n, nil
}

func (r *Repo) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	const q = `
UPDATE notifications
SET read_at = $2
WHERE user_id = $1
AND read_at IS NULL`
	tag, err := r.db.Pool.Exec(ctx, q, userID, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
