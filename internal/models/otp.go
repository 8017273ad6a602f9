package models

import (
	"time"
)

// Otp описывает одноразовый код, привязанный к пользователю и назначению.
// Код живёт один час с момента выдачи; истёкшие строки остаются в таблице,
// но не возвращаются запросами.
type Otp struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Code      string    `db:"code" json:"-"`
	Purpose   string    `db:"purpose" json:"purpose"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// OtpFilter задаёт критерии поиска кода: либо по коду и назначению,
// либо по пользователю и назначению.
type OtpFilter struct {
	Code    string
	UserID  string
	Purpose string
}
