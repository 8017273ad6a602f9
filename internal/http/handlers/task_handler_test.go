package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenitha-app/zenitha-backend/internal/ai"
	"github.com/zenitha-app/zenitha-backend/internal/http/middleware"
	"github.com/zenitha-app/zenitha-backend/internal/models"
	"github.com/zenitha-app/zenitha-backend/internal/repository"
	"github.com/zenitha-app/zenitha-backend/internal/service"
)

type memTaskRepo struct {
	tasks map[string]*models.Task
}

func (m *memTaskRepo) Create(ctx context.Context, task *models.Task) error {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	stored := *task
	m.tasks[task.ID] = &stored
	return nil
}

func (m *memTaskRepo) Get(ctx context.Context, filter models.TaskFilter) (*models.Task, error) {
	for _, task := range m.tasks {
		if filter.ID != "" && task.ID != filter.ID {
			continue
		}
		if filter.UserID != "" && task.UserID != filter.UserID {
			continue
		}
		return task, nil
	}
	return nil, repository.ErrTaskNotFound
}

func (m *memTaskRepo) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	var out []models.Task
	for _, task := range m.tasks {
		if filter.UserID != "" && task.UserID != filter.UserID {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (m *memTaskRepo) Update(ctx context.Context, filter models.TaskFilter, update models.TaskUpdate) (*models.Task, error) {
	task, err := m.Get(ctx, filter)
	if err != nil {
		return nil, err
	}
	if update.Title != nil {
		task.Title = *update.Title
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}
	if update.Time != nil {
		task.Time = update.Time
	}
	return task, nil
}

// Delete возвращает ErrTaskNotFound, когда ни одна строка не подошла,
// как и боевой репозиторий.
func (m *memTaskRepo) Delete(ctx context.Context, filter models.TaskFilter) error {
	deleted := 0
	for id, task := range m.tasks {
		if filter.ID != "" && task.ID != filter.ID {
			continue
		}
		if filter.UserID != "" && task.UserID != filter.UserID {
			continue
		}
		delete(m.tasks, id)
		deleted++
	}
	if deleted == 0 {
		return repository.ErrTaskNotFound
	}
	return nil
}

type emptyCategoryLookup struct{}

func (emptyCategoryLookup) Get(ctx context.Context, filter models.CategoryFilter) (*models.Category, error) {
	return nil, repository.ErrCategoryNotFound
}

type emptyPushTokens struct{}

func (emptyPushTokens) Get(ctx context.Context, userID string) (*models.UserPushToken, error) {
	return nil, repository.ErrPushTokenNotFound
}

func (emptyPushTokens) Upsert(ctx context.Context, token *models.UserPushToken) error {
	return nil
}

type noopGenerator struct{}

func (noopGenerator) GenerateTasks(ctx context.Context, input string) ([]ai.GeneratedTask, error) {
	return nil, nil
}

func newTaskEngine(t *testing.T) (*gin.Engine, *memTaskRepo) {
	t.Helper()

	taskRepo := &memTaskRepo{tasks: make(map[string]*models.Task)}
	scheduler := service.NewSchedulerService(&noopSchedulerRepo{}, nil, 30*time.Second)
	tasks := service.NewTaskService(taskRepo, emptyCategoryLookup{}, emptyPushTokens{}, noopGenerator{}, scheduler)
	handler := NewTaskHandler(tasks)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.User{ID: "test-user-0000000000", Email: "t@example.com"})
		c.Next()
	})
	r.POST("/tasks", handler.Create)
	r.GET("/tasks", handler.List)
	r.GET("/tasks/:id", handler.Get)
	r.PUT("/tasks/:id", handler.Update)
	r.DELETE("/tasks/:id", handler.Delete)

	return r, taskRepo
}

type noopSchedulerRepo struct{}

func (noopSchedulerRepo) Create(ctx context.Context, n *models.ScheduledNotification) error {
	return nil
}

func (noopSchedulerRepo) ClaimDue(ctx context.Context, now time.Time) ([]models.ScheduledNotification, error) {
	return nil, nil
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, path, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTaskHandler_CreateAndGet(t *testing.T) {
	r, _ := newTaskEngine(t)

	w := doJSON(t, r, "POST", "/tasks", gin.H{"title": "Сходить в зал", "time": "2026-09-01 18:00:00"})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Task created", body["message"])

	id := body["data"].(map[string]interface{})["id"].(string)
	require.Len(t, id, 20)

	w = doJSON(t, r, "GET", "/tasks/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Task retrieved", decodeBody(t, w)["message"])
}

func TestTaskHandler_CreateInvalidTime(t *testing.T) {
	r, repo := newTaskEngine(t)

	w := doJSON(t, r, "POST", "/tasks", gin.H{"title": "t", "time": "завтра"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Time contains an invalid value. Format is: yyyy-MM-dd HH:mm:ss", decodeBody(t, w)["message"])
	assert.Empty(t, repo.tasks)
}

func TestTaskHandler_CreateInvalidCategory(t *testing.T) {
	r, _ := newTaskEngine(t)

	w := doJSON(t, r, "POST", "/tasks", gin.H{"title": "t", "category": "nope"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid category", decodeBody(t, w)["message"])
}

func TestTaskHandler_GetMissing(t *testing.T) {
	r, _ := newTaskEngine(t)

	w := doJSON(t, r, "GET", "/tasks/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", decodeBody(t, w)["message"])
}

func TestTaskHandler_UpdateAndDelete(t *testing.T) {
	r, _ := newTaskEngine(t)

	w := doJSON(t, r, "POST", "/tasks", gin.H{"title": "старое"})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody(t, w)["data"].(map[string]interface{})["id"].(string)

	w = doJSON(t, r, "PUT", "/tasks/"+id, gin.H{"title": "новое", "completed": true})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Task updated", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "новое", data["title"])
	assert.Equal(t, true, data["completed"])

	w = doJSON(t, r, "DELETE", "/tasks/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Task deleted", decodeBody(t, w)["message"])

	w = doJSON(t, r, "GET", "/tasks/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Повторное удаление уже отвечает 404.
	w = doJSON(t, r, "DELETE", "/tasks/"+id, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", decodeBody(t, w)["message"])
}

func TestTaskHandler_DeleteMissing(t *testing.T) {
	r, _ := newTaskEngine(t)

	w := doJSON(t, r, "DELETE", "/tasks/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task not found", decodeBody(t, w)["message"])
}

func TestPushTokenHandler_Validation(t *testing.T) {
	handler := NewPushTokenHandler(emptyPushTokens{})

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.User{ID: "test-user-0000000000"})
		c.Next()
	})
	r.POST("/user/push-token", handler.Save)

	// Токен не в формате Expo — отклоняется.
	w := doJSON(t, r, "POST", "/user/push-token", gin.H{"push_token": "garbage"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "push_token is required", decodeBody(t, w)["message"])

	w = doJSON(t, r, "POST", "/user/push-token", gin.H{"push_token": "ExponentPushToken[xxxxxx]"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User push token saved", decodeBody(t, w)["message"])
}
