package service

import (
	"context"
	"errors"
	"time"

	"github.com/zenitha-app/zenitha-backend/internal/ai"
	"github.com/zenitha-app/zenitha-backend/internal/logger"
	"github.com/zenitha-app/zenitha-backend/internal/models"
	"github.com/zenitha-app/zenitha-backend/internal/pkg/apperror"
	"github.com/zenitha-app/zenitha-backend/internal/pkg/ident"
	"github.com/zenitha-app/zenitha-backend/internal/repository"
)

// TaskRepository описывает хранилище задач.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, filter models.TaskFilter) (*models.Task, error)
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	Update(ctx context.Context, filter models.TaskFilter, update models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, filter models.TaskFilter) error
}

// CategoryLookup — ровно та часть хранилища категорий, что нужна задачам:
// проверка, видна ли категория пользователю.
type CategoryLookup interface {
	Get(ctx context.Context, filter models.CategoryFilter) (*models.Category, error)
}

// PushTokenLookup отдаёт зарегистрированный пуш-токен пользователя.
type PushTokenLookup interface {
	Get(ctx context.Context, userID string) (*models.UserPushToken, error)
}

// TaskGenerator превращает свободный текст в структурированные задачи.
type TaskGenerator interface {
	GenerateTasks(ctx context.Context, input string) ([]ai.GeneratedTask, error)
}

// TaskService управляет задачами пользователя, включая генерацию из текста.
type TaskService struct {
	tasks      TaskRepository
	categories CategoryLookup
	pushTokens PushTokenLookup
	generator  TaskGenerator
	scheduler  *SchedulerService
}

// NewTaskService создаёт сервис задач.
func NewTaskService(
	tasks TaskRepository,
	categories CategoryLookup,
	pushTokens PushTokenLookup,
	generator TaskGenerator,
	scheduler *SchedulerService,
) *TaskService {
	return &TaskService{
		tasks:      tasks,
		categories: categories,
		pushTokens: pushTokens,
		generator:  generator,
		scheduler:  scheduler,
	}
}

// Create заводит задачу. Категория, если указана, должна быть видна
// пользователю: либо его собственная, либо глобальная.
func (s *TaskService) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	if err := s.checkCategory(ctx, task.UserID, task.CategoryID); err != nil {
		return nil, err
	}

	if task.ID == "" {
		task.ID = ident.NewID()
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// Get возвращает задачу пользователя по идентификатору.
func (s *TaskService) Get(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.tasks.Get(ctx, models.TaskFilter{ID: taskID, UserID: userID})
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, apperror.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// List возвращает задачи пользователя по фильтру.
func (s *TaskService) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	return s.tasks.List(ctx, filter)
}

// Update изменяет задачу пользователя.
func (s *TaskService) Update(ctx context.Context, userID, taskID string, update models.TaskUpdate) (*models.Task, error) {
	if update.CategoryID != nil {
		if err := s.checkCategory(ctx, userID, update.CategoryID); err != nil {
			return nil, err
		}
	}

	task, err := s.tasks.Update(ctx, models.TaskFilter{ID: taskID, UserID: userID}, update)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, apperror.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// Delete удаляет задачу пользователя.
func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	if err := s.tasks.Delete(ctx, models.TaskFilter{ID: taskID, UserID: userID}); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return apperror.ErrTaskNotFound
		}
		return err
	}
	return nil
}

// GenerateFromText раскладывает свободный текст на задачи, сохраняет их
// и, если у пользователя зарегистрирован пуш-токен, откладывает
// уведомление к сроку каждой задачи. Сбой планирования отдельной задачи
// не валит всю генерацию: задача уже сохранена, логируем и идём дальше.
func (s *TaskService) GenerateFromText(ctx context.Context, user *models.User, input string) ([]models.Task, error) {
	generated, err := s.generator.GenerateTasks(ctx, input)
	if err != nil {
		return nil, err
	}

	var pushToken *models.UserPushToken
	token, err := s.pushTokens.Get(ctx, user.ID)
	switch {
	case err == nil:
		pushToken = token
	case errors.Is(err, repository.ErrPushTokenNotFound):
		// Без токена задачи всё равно создаются, просто без напоминаний.
	default:
		return nil, err
	}

	tasks := make([]models.Task, 0, len(generated))
	for _, g := range generated {
		task := models.Task{
			ID:          ident.NewID(),
			UserID:      user.ID,
			Title:       g.Title,
			Description: optional(g.Description),
			Summary:     optional(g.Summary),
		}
		if at, err := time.ParseInLocation(taskTimeLayout, g.Time, time.Local); err == nil {
			task.Time = &at
		}

		if err := s.tasks.Create(ctx, &task); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)

		if pushToken == nil || task.Time == nil {
			continue
		}
		body := task.Title
		if task.Summary != nil {
			body = *task.Summary
		}
		payload := models.NotificationPayload{
			PushToken: pushToken.PushToken,
			Body:      body,
		}
		if err := s.scheduler.ScheduleAt(ctx, *task.Time, payload); err != nil {
			logger.Log.Errorf("задача %s: не удалось отложить напоминание: %v", task.ID, err)
		}
	}

	return tasks, nil
}

func (s *TaskService) checkCategory(ctx context.Context, userID string, categoryID *string) error {
	if categoryID == nil {
		return nil
	}

	_, err := s.categories.Get(ctx, models.CategoryFilter{
		ID:         *categoryID,
		UserOrNull: userID,
	})
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return apperror.ErrInvalidCategory
		}
		return err
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
