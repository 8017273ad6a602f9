package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/zenitha-app/zenitha-backend/internal/models"
)

// ErrUserNotFound возвращается, когда запись пользователя не найдена.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken возвращается при нарушении уникальности email.
var ErrEmailTaken = errors.New("email already taken")

// uniqueViolation — код ошибки PostgreSQL для нарушения unique constraint.
const uniqueViolation = "23505"

// UserRepository отвечает за работу с таблицами users и otps
// (в части атомарной регистрации).
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository создаёт экземпляр репозитория.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create создаёт нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, first_name, last_name, email, password, sign_in_provider, google_user_id, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		user.ID, user.FirstName, user.LastName, strings.ToLower(user.Email),
		user.Password, user.SignInProvider, user.GoogleUserID, user.Verified,
	).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("user repository: create %w", err)
	}

	return nil
}

// CreateWithOtp создаёт пользователя и одноразовый код в одной транзакции.
// Либо обе строки фиксируются, либо обе откатываются: пользователь без
// кода подтверждения не имел бы пути к верификации.
func (r *UserRepository) CreateWithOtp(ctx context.Context, user *models.User, otp *models.Otp) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("user repository: begin create with otp %w", err)
	}
	defer tx.Rollback()

	userQuery := `
		INSERT INTO users (id, first_name, last_name, email, password, sign_in_provider, google_user_id, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	if err := tx.QueryRowxContext(
		ctx, userQuery,
		user.ID, user.FirstName, user.LastName, strings.ToLower(user.Email),
		user.Password, user.SignInProvider, user.GoogleUserID, user.Verified,
	).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("user repository: create with otp (user) %w", err)
	}

	otpQuery := `
		INSERT INTO otps (user_id, code, purpose, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	otp.UserID = user.ID
	if err := tx.QueryRowxContext(
		ctx, otpQuery,
		otp.UserID, otp.Code, otp.Purpose, otp.ExpiresAt,
	).Scan(&otp.ID, &otp.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create with otp (otp) %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("user repository: commit create with otp %w", err)
	}

	return nil
}

// Get возвращает пользователя по фильтру вместе с его push токеном.
// Email сравнивается без учёта регистра.
func (r *UserRepository) Get(ctx context.Context, filter models.UserFilter) (*models.User, error) {
	query := `
		SELECT u.id, u.first_name, u.last_name, u.email, u.password, u.sign_in_provider,
			u.google_user_id, u.verified, upt.push_token, u.created_at, u.updated_at
		FROM users u
		LEFT JOIN user_push_tokens upt ON upt.user_id = u.id
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.ID != "" {
		query += fmt.Sprintf(" AND u.id = $%d", argNum)
		args = append(args, filter.ID)
		argNum++
	}
	if filter.Email != "" {
		query += fmt.Sprintf(" AND lower(u.email) = $%d", argNum)
		args = append(args, strings.ToLower(filter.Email))
		argNum++
	}
	if filter.SignInProvider != "" {
		query += fmt.Sprintf(" AND u.sign_in_provider = $%d", argNum)
		args = append(args, filter.SignInProvider)
		argNum++
	}

	query += " ORDER BY u.created_at DESC LIMIT 1"

	var user models.User
	if err := r.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get %w", err)
	}

	return &user, nil
}

// Update применяет частичное обновление и возвращает свежую запись.
// Пустое обновление сводится к повторному чтению.
func (r *UserRepository) Update(ctx context.Context, filter models.UserFilter, update models.UserUpdate) (*models.User, error) {
	if !update.IsEmpty() {
		set := []string{"updated_at = NOW()"}
		args := []interface{}{}
		argNum := 1

		if update.FirstName != nil {
			set = append(set, fmt.Sprintf("first_name = $%d", argNum))
			args = append(args, *update.FirstName)
			argNum++
		}
		if update.LastName != nil {
			set = append(set, fmt.Sprintf("last_name = $%d", argNum))
			args = append(args, *update.LastName)
			argNum++
		}
		if update.Password != nil {
			set = append(set, fmt.Sprintf("password = $%d", argNum))
			args = append(args, *update.Password)
			argNum++
		}
		if update.Verified != nil {
			set = append(set, fmt.Sprintf("verified = $%d", argNum))
			args = append(args, *update.Verified)
			argNum++
		}

		query := "UPDATE users SET " + strings.Join(set, ", ") + " WHERE 1=1"

		if filter.ID != "" {
			query += fmt.Sprintf(" AND id = $%d", argNum)
			args = append(args, filter.ID)
			argNum++
		}
		if filter.Email != "" {
			query += fmt.Sprintf(" AND lower(email) = $%d", argNum)
			args = append(args, strings.ToLower(filter.Email))
			argNum++
		}

		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("user repository: update %w", err)
		}
	}

	return r.Get(ctx, filter)
}
