package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/zenitha-app/zenitha-backend/internal/models"
)

// NotificationRepository отвечает за работу с таблицей scheduled_notifications.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository создаёт экземпляр репозитория.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create сохраняет отложенное уведомление.
func (r *NotificationRepository) Create(ctx context.Context, n *models.ScheduledNotification) error {
	query := `
		INSERT INTO scheduled_notifications (due_at, payload)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		n.DueAt, []byte(n.Payload),
	).Scan(&n.ID, &n.CreatedAt); err != nil {
		return fmt.Errorf("notification repository: create %w", err)
	}

	return nil
}

// ClaimDue атомарно забирает все уведомления, срок которых наступил.
// Claim — это DELETE ... RETURNING: строка либо достаётся ровно одному
// вызову, либо остаётся в таблице. Два конкурентных поллера не получат
// одну и ту же строку.
func (r *NotificationRepository) ClaimDue(ctx context.Context, now time.Time) ([]models.ScheduledNotification, error) {
	query := `
		DELETE FROM scheduled_notifications
		WHERE due_at <= $1
		RETURNING id, due_at, payload, created_at
	`

	var claimed []models.ScheduledNotification
	if err := r.db.SelectContext(ctx, &claimed, query, now); err != nil {
		return nil, fmt.Errorf("notification repository: claim due %w", err)
	}

	return claimed, nil
}
