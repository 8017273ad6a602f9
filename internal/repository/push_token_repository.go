package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/zenitha-app/zenitha-backend/internal/models"
)

// ErrPushTokenNotFound возвращается, когда у пользователя нет push токена.
var ErrPushTokenNotFound = errors.New("push token not found")

// PushTokenRepository отвечает за работу с таблицей user_push_tokens.
type PushTokenRepository struct {
	db *sqlx.DB
}

// NewPushTokenRepository создаёт экземпляр репозитория.
func NewPushTokenRepository(db *sqlx.DB) *PushTokenRepository {
	return &PushTokenRepository{db: db}
}

// Upsert сохраняет push токен пользователя, заменяя предыдущий.
func (r *PushTokenRepository) Upsert(ctx context.Context, token *models.UserPushToken) error {
	query := `
		INSERT INTO user_push_tokens (user_id, push_token)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET push_token = EXCLUDED.push_token
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		token.UserID, token.PushToken,
	).Scan(&token.ID, &token.CreatedAt); err != nil {
		return fmt.Errorf("push token repository: upsert %w", err)
	}

	return nil
}

// Get возвращает push токен пользователя.
func (r *PushTokenRepository) Get(ctx context.Context, userID string) (*models.UserPushToken, error) {
	var token models.UserPushToken
	query := `
		SELECT id, user_id, push_token, created_at
		FROM user_push_tokens
		WHERE user_id = $1
	`
	if err := r.db.GetContext(ctx, &token, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPushTokenNotFound
		}
		return nil, fmt.Errorf("push token repository: get %w", err)
	}

	return &token, nil
}
