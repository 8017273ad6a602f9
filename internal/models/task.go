package models

import (
	"time"
)

// Task описывает задачу пользователя. Summary — сгенерированный текст
// напоминания, который уходит в push уведомление, когда наступает Time.
type Task struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	CategoryID  *string    `db:"category_id" json:"category_id,omitempty"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	Summary     *string    `db:"summary" json:"summary,omitempty"`
	Completed   bool       `db:"completed" json:"completed"`
	Time        *time.Time `db:"time" json:"time,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// TaskFilter задаёт критерии поиска задач.
type TaskFilter struct {
	ID         string
	UserID     string
	CategoryID string
	Title      string
	Completed  *bool
	TimeFrom   *time.Time
}

// TaskUpdate содержит частичное обновление задачи.
type TaskUpdate struct {
	CategoryID  *string
	Title       *string
	Description *string
	Summary     *string
	Completed   *bool
	Time        *time.Time
}

// IsEmpty сообщает, есть ли в обновлении хотя бы одно поле.
func (u TaskUpdate) IsEmpty() bool {
	return u.CategoryID == nil && u.Title == nil && u.Description == nil &&
		u.Summary == nil && u.Completed == nil && u.Time == nil
}
