package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/davicafu/tasksense/internal/notification/domain"
	sharedQuery "github.com/davicafu/tasksense/internal/shared/infra/platform/query"
)

const notificationColumns = "id, message, created_at, user_id"

type NotificationRepo struct {
	db *sqlx.DB
}

var _ domain.NotificationRepository = (*NotificationRepo)(nil)

func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Save(ctx context.Context, n *domain.Notification) error {
	query := r.db.Rebind(`INSERT INTO notifications (message, created_at, user_id) VALUES (?, ?, ?) RETURNING id`)
	if err := r.db.QueryRowxContext(ctx, query, n.Message, n.CreatedAt, n.UserID).Scan(&n.ID); err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

func (r *NotificationRepo) GetByID(ctx context.Context, id int64) (*domain.Notification, error) {
	var n domain.Notification
	query := r.db.Rebind(`SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`)
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("fetching notification %d: %w", id, err)
	}
	return &n, nil
}

func (r *NotificationRepo) ListByOwner(ctx context.Context, userID int64, page sharedQuery.OffsetPagination) ([]*domain.Notification, error) {
	out := []*domain.Notification{}
	query := r.db.Rebind(`SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &out, query, userID, page.Limit, page.Offset); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return out, nil
}

func (r *NotificationRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM notifications WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting notification %d: %w", id, err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}
