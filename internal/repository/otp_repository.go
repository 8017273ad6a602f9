package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/zenitha-app/zenitha-backend/internal/models"
)

// ErrOtpNotFound возвращается, когда действующий код не найден.
// Истёкший и несуществующий код неразличимы: оба дают эту ошибку.
var ErrOtpNotFound = errors.New("otp not found")

// OtpRepository отвечает за работу с таблицей otps.
type OtpRepository struct {
	db *sqlx.DB
}

// NewOtpRepository создаёт экземпляр репозитория.
func NewOtpRepository(db *sqlx.DB) *OtpRepository {
	return &OtpRepository{db: db}
}

// Create сохраняет новый одноразовый код.
func (r *OtpRepository) Create(ctx context.Context, otp *models.Otp) error {
	query := `
		INSERT INTO otps (user_id, code, purpose, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		otp.UserID, otp.Code, otp.Purpose, otp.ExpiresAt,
	).Scan(&otp.ID, &otp.CreatedAt); err != nil {
		return fmt.Errorf("otp repository: create %w", err)
	}

	return nil
}

// Get возвращает первый действующий код по фильтру.
// Строки с expires_at <= NOW() никогда не возвращаются.
func (r *OtpRepository) Get(ctx context.Context, filter models.OtpFilter) (*models.Otp, error) {
	query := `
		SELECT id, user_id, code, purpose, expires_at, created_at
		FROM otps
		WHERE expires_at > NOW()
	`
	args := []interface{}{}
	argNum := 1

	if filter.Code != "" {
		query += fmt.Sprintf(" AND code = $%d", argNum)
		args = append(args, filter.Code)
		argNum++
	}
	if filter.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argNum)
		args = append(args, filter.UserID)
		argNum++
	}
	if filter.Purpose != "" {
		query += fmt.Sprintf(" AND purpose = $%d", argNum)
		args = append(args, filter.Purpose)
		argNum++
	}

	query += " ORDER BY created_at DESC LIMIT 1"

	var otp models.Otp
	if err := r.db.GetContext(ctx, &otp, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOtpNotFound
		}
		return nil, fmt.Errorf("otp repository: get %w", err)
	}

	return &otp, nil
}

// Delete удаляет код по идентификатору. Повторное удаление — no-op.
func (r *OtpRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM otps WHERE id = $1`, id); err != nil {
		return fmt.Errorf("otp repository: delete %w", err)
	}

	return nil
}
