package models

import (
	"encoding/json"
	"time"
)

// ScheduledNotification — отложенное push уведомление. Строка живёт в таблице
// до момента, когда поллер заберёт её (claim = атомарный DELETE ... RETURNING),
// после чего повторная доставка с той же строки невозможна.
type ScheduledNotification struct {
	ID        int64           `db:"id" json:"id"`
	DueAt     time.Time       `db:"due_at" json:"due_at"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// NotificationPayload — содержимое отложенного уведомления.
type NotificationPayload struct {
	PushToken string `json:"push_token"`
	Body      string `json:"body"`
}
