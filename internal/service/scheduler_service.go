package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zenitha-app/zenitha-backend/internal/logger"
	"github.com/zenitha-app/zenitha-backend/internal/models"
)

// taskTimeLayout — формат времени, в котором клиент и генератор задач
// передают абсолютные метки.
const taskTimeLayout = "2006-01-02 15:04:05"

// SchedulerRepository описывает хранилище отложенных уведомлений.
type SchedulerRepository interface {
	Create(ctx context.Context, n *models.ScheduledNotification) error
	ClaimDue(ctx context.Context, now time.Time) ([]models.ScheduledNotification, error)
}

// PushSender доставляет пуш-уведомление на устройство.
type PushSender interface {
	Send(ctx context.Context, pushToken, body string) error
}

// SchedulerService хранит отложенные уведомления и раз в интервал
// опроса забирает созревшие и отправляет их. Забор — атомарное
// удаление с возвратом строк, поэтому два опроса одно и то же
// уведомление не доставят. Уведомление, забранное перед падением
// процесса, теряется: гарантия — не более одной доставки на опрос,
// при штатной работе ровно одной.
type SchedulerService struct {
	repo     SchedulerRepository
	push     PushSender
	interval time.Duration
}

// NewSchedulerService создаёт планировщик уведомлений.
func NewSchedulerService(repo SchedulerRepository, push PushSender, interval time.Duration) *SchedulerService {
	return &SchedulerService{
		repo:     repo,
		push:     push,
		interval: interval,
	}
}

// Schedule откладывает уведомление на указанный момент. Момент задаётся
// либо абсолютной меткой ("2006-01-02 15:04:05" или RFC3339), либо
// относительной длительностью ("5m", "2h30m").
func (s *SchedulerService) Schedule(ctx context.Context, when string, payload models.NotificationPayload) error {
	at, err := parseWhen(when, time.Now())
	if err != nil {
		return err
	}
	return s.ScheduleAt(ctx, at, payload)
}

// ScheduleAt откладывает уведомление на уже разобранный момент времени.
func (s *SchedulerService) ScheduleAt(ctx context.Context, at time.Time, payload models.NotificationPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("scheduler service: marshal payload %w", err)
	}

	return s.repo.Create(ctx, &models.ScheduledNotification{
		DueAt:   at,
		Payload: raw,
	})
}

// Run крутит цикл опроса до отмены контекста.
func (s *SchedulerService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Log.Infof("планировщик уведомлений запущен, интервал опроса %s", s.interval)

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("планировщик уведомлений остановлен")
			return
		case <-ticker.C:
			if _, err := s.PollOnce(ctx); err != nil {
				logger.Log.Errorf("опрос отложенных уведомлений: %v", err)
			}
		}
	}
}

// PollOnce забирает все созревшие уведомления и отправляет их.
// Возвращает число забранных. Ошибка доставки отдельного уведомления
// логируется и не прерывает обработку остальных: повторов нет,
// битое уведомление уже удалено из очереди.
func (s *SchedulerService) PollOnce(ctx context.Context) (int, error) {
	due, err := s.repo.ClaimDue(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	for _, n := range due {
		var payload models.NotificationPayload
		if err := json.Unmarshal(n.Payload, &payload); err != nil {
			logger.Log.Errorf("уведомление %d: негодная полезная нагрузка: %v", n.ID, err)
			continue
		}

		if err := s.push.Send(ctx, payload.PushToken, payload.Body); err != nil {
			logger.Log.Errorf("уведомление %d: доставка не удалась: %v", n.ID, err)
		}
	}

	return len(due), nil
}

func parseWhen(when string, now time.Time) (time.Time, error) {
	if at, err := time.Parse(taskTimeLayout, when); err == nil {
		return at, nil
	}
	if at, err := time.Parse(time.RFC3339, when); err == nil {
		return at, nil
	}
	if d, err := time.ParseDuration(when); err == nil {
		return now.Add(d), nil
	}
	return time.Time{}, fmt.Errorf("scheduler service: неразборчивый момент времени %q", when)
}
