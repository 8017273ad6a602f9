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

// ErrTaskNotFound возвращается, когда задача не найдена.
var ErrTaskNotFound = errors.New("task not found")

// TaskRepository отвечает за работу с таблицей tasks.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository создаёт экземпляр репозитория.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create создаёт новую задачу.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (id, user_id, category_id, title, description, summary, completed, time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		task.ID, task.UserID, task.CategoryID, task.Title,
		task.Description, task.Summary, task.Completed, task.Time,
	).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
		return fmt.Errorf("task repository: create %w", err)
	}

	return nil
}

// Get возвращает задачу по фильтру.
func (r *TaskRepository) Get(ctx context.Context, filter models.TaskFilter) (*models.Task, error) {
	query, args := taskQuery(filter)
	query += " LIMIT 1"

	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("task repository: get %w", err)
	}

	return &task, nil
}

// List возвращает список задач по фильтру.
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	query, args := taskQuery(filter)

	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("task repository: list %w", err)
	}

	return tasks, nil
}

// Update применяет частичное обновление и возвращает свежую запись.
// Пустое обновление сводится к повторному чтению.
func (r *TaskRepository) Update(ctx context.Context, filter models.TaskFilter, update models.TaskUpdate) (*models.Task, error) {
	if !update.IsEmpty() {
		set := []string{"updated_at = NOW()"}
		args := []interface{}{}
		argNum := 1

		if update.CategoryID != nil {
			set = append(set, fmt.Sprintf("category_id = $%d", argNum))
			args = append(args, *update.CategoryID)
			argNum++
		}
		if update.Title != nil {
			set = append(set, fmt.Sprintf("title = $%d", argNum))
			args = append(args, *update.Title)
			argNum++
		}
		if update.Description != nil {
			set = append(set, fmt.Sprintf("description = $%d", argNum))
			args = append(args, *update.Description)
			argNum++
		}
		if update.Summary != nil {
			set = append(set, fmt.Sprintf("summary = $%d", argNum))
			args = append(args, *update.Summary)
			argNum++
		}
		if update.Completed != nil {
			set = append(set, fmt.Sprintf("completed = $%d", argNum))
			args = append(args, *update.Completed)
			argNum++
		}
		if update.Time != nil {
			set = append(set, fmt.Sprintf("time = $%d", argNum))
			args = append(args, *update.Time)
			argNum++
		}

		query := "UPDATE tasks SET " + strings.Join(set, ", ") + " WHERE 1=1"

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
			return nil, fmt.Errorf("task repository: update %w", err)
		}
	}

	return r.Get(ctx, filter)
}

// Delete удаляет задачу по фильтру. Если ни одна строка не подошла,
// возвращает ErrTaskNotFound: чужая и несуществующая задача неразличимы.
func (r *TaskRepository) Delete(ctx context.Context, filter models.TaskFilter) error {
	query := "DELETE FROM tasks WHERE 1=1"
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
		return fmt.Errorf("task repository: delete %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("task repository: delete rows affected %w", err)
	}
	if affected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// taskQuery собирает SELECT по фильтру.
func taskQuery(filter models.TaskFilter) (string, []interface{}) {
	query := `
		SELECT id, user_id, category_id, title, description, summary, completed, time, created_at, updated_at
		FROM tasks
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
	if filter.CategoryID != "" {
		query += fmt.Sprintf(" AND category_id = $%d", argNum)
		args = append(args, filter.CategoryID)
		argNum++
	}
	if filter.Title != "" {
		query += fmt.Sprintf(" AND lower(title) = $%d", argNum)
		args = append(args, strings.ToLower(filter.Title))
		argNum++
	}
	if filter.Completed != nil {
		query += fmt.Sprintf(" AND completed = $%d", argNum)
		args = append(args, *filter.Completed)
		argNum++
	}
	if filter.TimeFrom != nil {
		query += fmt.Sprintf(" AND time >= $%d", argNum)
		args = append(args, *filter.TimeFrom)
		argNum++
	}

	query += " ORDER BY created_at DESC"

	return query, args
}
