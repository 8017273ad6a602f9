package models

import (
	"time"
)

// User описывает сущность пользователя.
// Password заполнен только для sign_in_provider = CUSTOM,
// GoogleUserID — только для sign_in_provider = GOOGLE.
// Пароль никогда не сериализуется в JSON.
type User struct {
	ID             string    `db:"id" json:"id"`
	FirstName      *string   `db:"first_name" json:"first_name,omitempty"`
	LastName       *string   `db:"last_name" json:"last_name,omitempty"`
	Email          string    `db:"email" json:"email"`
	Password       *string   `db:"password" json:"-"`
	SignInProvider string    `db:"sign_in_provider" json:"sign_in_provider"`
	GoogleUserID   *string   `db:"google_user_id" json:"-"`
	Verified       bool      `db:"verified" json:"verified"`
	PushToken      *string   `db:"push_token" json:"push_token,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// UserFilter задаёт критерии поиска пользователя.
// Пустые поля не участвуют в запросе, email сравнивается без учёта регистра.
type UserFilter struct {
	ID             string
	Email          string
	SignInProvider string
}

// UserUpdate содержит частичное обновление пользователя.
// Nil поля не изменяются. Password хешируется перед записью.
type UserUpdate struct {
	FirstName *string
	LastName  *string
	Password  *string
	Verified  *bool
}

// IsEmpty сообщает, есть ли в обновлении хотя бы одно поле.
func (u UserUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Password == nil && u.Verified == nil
}
