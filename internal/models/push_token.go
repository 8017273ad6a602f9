package models

import (
	"time"
)

// UserPushToken хранит push токен устройства пользователя.
// У пользователя не более одного актуального токена.
type UserPushToken struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	PushToken string    `db:"push_token" json:"push_token"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
