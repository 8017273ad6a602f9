package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zenitha-app/zenitha-backend/internal/models"
)

// mockSchedulerRepository реализует SchedulerRepository для тестов.
type mockSchedulerRepository struct {
	notifications map[int64]*models.ScheduledNotification
	nextID        int64
}

func newMockSchedulerRepository() *mockSchedulerRepository {
	return &mockSchedulerRepository{notifications: make(map[int64]*models.ScheduledNotification)}
}

func (m *mockSchedulerRepository) Create(ctx context.Context, n *models.ScheduledNotification) error {
	m.nextID++
	n.ID = m.nextID
	n.CreatedAt = time.Now()
	stored := *n
	m.notifications[n.ID] = &stored
	return nil
}

// ClaimDue повторяет семантику боевого хранилища: созревшие записи
// удаляются и возвращаются одним действием.
func (m *mockSchedulerRepository) ClaimDue(ctx context.Context, now time.Time) ([]models.ScheduledNotification, error) {
	var due []models.ScheduledNotification
	for id, n := range m.notifications {
		if !n.DueAt.After(now) {
			due = append(due, *n)
			delete(m.notifications, id)
		}
	}
	return due, nil
}

// mockPushSender запоминает отправленные уведомления.
type mockPushSender struct {
	sent []string
	err  error
}

func (m *mockPushSender) Send(ctx context.Context, pushToken, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, body)
	return nil
}

func TestSchedulerService_DeliversDueExactlyOnce(t *testing.T) {
	repo := newMockSchedulerRepository()
	push := &mockPushSender{}
	service := NewSchedulerService(repo, push, 30*time.Second)
	ctx := context.Background()

	payload := models.NotificationPayload{PushToken: "ExponentPushToken[abc]", Body: "Встреча через час"}
	if err := service.ScheduleAt(ctx, time.Now().Add(-time.Second), payload); err != nil {
		t.Fatalf("schedule вернул ошибку: %v", err)
	}

	claimed, err := service.PollOnce(ctx)
	if err != nil {
		t.Fatalf("poll вернул ошибку: %v", err)
	}
	if claimed != 1 {
		t.Fatalf("ожидалось одно забранное уведомление, получили %d", claimed)
	}
	if len(push.sent) != 1 || push.sent[0] != "Встреча через час" {
		t.Fatalf("уведомление должно быть доставлено с телом из полезной нагрузки")
	}

	// Второй опрос забирать нечего: уведомление удалено при заборе.
	claimed, err = service.PollOnce(ctx)
	if err != nil {
		t.Fatalf("повторный poll вернул ошибку: %v", err)
	}
	if claimed != 0 || len(push.sent) != 1 {
		t.Fatalf("повторная доставка недопустима")
	}
}

func TestSchedulerService_FutureNotificationWaits(t *testing.T) {
	repo := newMockSchedulerRepository()
	push := &mockPushSender{}
	service := NewSchedulerService(repo, push, 30*time.Second)
	ctx := context.Background()

	if err := service.Schedule(ctx, "1h", models.NotificationPayload{PushToken: "t", Body: "b"}); err != nil {
		t.Fatalf("schedule вернул ошибку: %v", err)
	}

	claimed, err := service.PollOnce(ctx)
	if err != nil {
		t.Fatalf("poll вернул ошибку: %v", err)
	}
	if claimed != 0 || len(push.sent) != 0 {
		t.Fatalf("несозревшее уведомление не должно доставляться")
	}
	if len(repo.notifications) != 1 {
		t.Fatalf("уведомление должно остаться в очереди")
	}
}

func TestSchedulerService_SendFailureDoesNotRequeue(t *testing.T) {
	repo := newMockSchedulerRepository()
	push := &mockPushSender{err: errors.New("expo недоступен")}
	service := NewSchedulerService(repo, push, 30*time.Second)
	ctx := context.Background()

	if err := service.ScheduleAt(ctx, time.Now().Add(-time.Second), models.NotificationPayload{PushToken: "t", Body: "b"}); err != nil {
		t.Fatalf("schedule вернул ошибку: %v", err)
	}

	claimed, err := service.PollOnce(ctx)
	if err != nil {
		t.Fatalf("poll вернул ошибку: %v", err)
	}
	if claimed != 1 {
		t.Fatalf("уведомление должно быть забрано несмотря на сбой доставки")
	}
	if len(repo.notifications) != 0 {
		t.Fatalf("сбойное уведомление не возвращается в очередь")
	}
}

func TestParseWhen(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		when string
		want time.Time
	}{
		{"абсолютная метка", "2026-09-01 10:30:00", time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)},
		{"RFC3339", "2026-09-01T10:30:00Z", time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)},
		{"относительная длительность", "2h30m", now.Add(2*time.Hour + 30*time.Minute)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseWhen(tc.when, now)
			if err != nil {
				t.Fatalf("parseWhen вернул ошибку: %v", err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("ожидалось %s, получили %s", tc.want, got)
			}
		})
	}

	if _, err := parseWhen("когда-нибудь", now); err == nil {
		t.Fatalf("неразборчивый момент должен давать ошибку")
	}
}
