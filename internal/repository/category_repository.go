package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/zenitha-app/zenitha-backend/internal/models"
)

// ErrCategoryNotFound возвращается, когда категория не найдена.
var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepository отвечает за работу с таблицей categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository создаёт экземпляр репозитория.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create создаёт новую категорию.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, color)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		category.ID, category.UserID, category.Name, category.Color,
	).Scan(&category.CreatedAt, &category.UpdatedAt); err != nil {
		return fmt.Errorf("category repository: create %w", err)
	}

	return nil
}

// Get возвращает категорию по фильтру.
func (r *CategoryRepository) Get(ctx context.Context, filter models.CategoryFilter) (*models.Category, error) {
	query, args := categoryQuery(filter)
	query += " LIMIT 1"

	var category models.Category
	if err := r.db.GetContext(ctx, &category, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("category repository: get %w", err)
	}

	return &category, nil
}

// List возвращает список категорий по фильтру.
func (r *CategoryRepository) List(ctx context.Context, filter models.CategoryFilter) ([]models.Category, error) {
	query, args := categoryQuery(filter)

	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("category repository: list %w", err)
	}

	return categories, nil
}

// Update применяет частичное обновление и возвращает свежую запись.
func (r *CategoryRepository) Update(ctx context.Context, filter models.CategoryFilter, update models.CategoryUpdate) (*models.Category, error) {
	if update.Name != nil || update.Color != nil {
		set := []string{"updated_at = NOW()"}
		args := []interface{}{}
		argNum := 1

		if update.Name != nil {
			set = append(set, fmt.Sprintf("name = $%d", argNum))
			args = append(args, *update.Name)
			argNum++
		}
		if update.Color != nil {
			set = append(set, fmt.Sprintf("color = $%d", argNum))
			args = append(args, *update.Color)
			argNum++
		}

		query := "UPDATE categories SET " + strings.Join(set, ", ") + " WHERE 1=1"

		if filter.ID != "" {
			query += fmt.Sprintf(" AND id = $%d", argNum)
			args = append(args, filter.ID)
			argNum++
		}
		if filter.UserID != "" {
			query += fmt.Sprintf(" AND user_id = $%d", argNum)
			args = append(args, filter.UserID)
			argNum++
		}

		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("category repository: update %w", err)
		}
	}

	return r.Get(ctx, filter)
}

// Delete удаляет категорию по фильтру. Если ни одна строка не подошла,
// возвращает ErrCategoryNotFound.
func (r *CategoryRepository) Delete(ctx context.Context, filter models.CategoryFilter) error {
	query := "DELETE FROM categories WHERE 1=1"
	args := []interface{}{}
	argNum := 1

	if filter.ID != "" {
		query += fmt.Sprintf(" AND id = $%d", argNum)
		args = append(args, filter.ID)
		argNum++
	}
	if filter.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argNum)
		args = append(args, filter.UserID)
		argNum++
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("category repository: delete %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("category repository: delete rows affected %w", err)
	}
	if affected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// categoryQuery собирает SELECT по фильтру. UserOrNull подбирает личные
// категории пользователя вместе с общими (user_id IS NULL).
func categoryQuery(filter models.CategoryFilter) (string, []interface{}) {
	query := `
		SELECT id, user_id, name, color, created_at, updated_at
		FROM categories
		WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if filter.ID != "" {
		query += fmt.Sprintf(" AND id = $%d", argNum)
		args = append(args, filter.ID)
		argNum++
	}
	if filter.UserID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argNum)
		args = append(args, filter.UserID)
		argNum++
	}
	if filter.UserOrNull != "" {
		query += fmt.Sprintf(" AND (user_id = $%d OR user_id IS NULL)", argNum)
		args = append(args, filter.UserOrNull)
		argNum++
	}
	if filter.Name != "" {
		query += fmt.Sprintf(" AND lower(name) = $%d", argNum)
		args = append(args, strings.ToLower(filter.Name))
		argNum++
	}

	query += " ORDER BY created_at DESC"

	return query, args
}
