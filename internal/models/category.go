package models

import (
	"time"
)

// Category описывает категорию задач. Категории с user_id = NULL
// являются общими и видны всем пользователям.
type Category struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	Name      string    `db:"name" json:"name"`
	Color     *string   `db:"color" json:"color,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CategoryFilter задаёт критерии поиска категорий.
// UserOrNull подбирает и личные категории пользователя, и общие.
type CategoryFilter struct {
	ID         string
	UserID     string
	UserOrNull string
	Name       string
}

// CategoryUpdate содержит частичное обновление категории.
type CategoryUpdate struct {
	Name  *string
	Color *string
}
