package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/zenitha-app/zenitha-backend/internal/models"
	"github.com/zenitha-app/zenitha-backend/internal/service"
	"github.com/zenitha-app/zenitha-backend/internal/validation"
)

const taskTimeLayout = "2006-01-02 15:04:05"
const invalidTimeMessage = "Time contains an invalid value. Format is: yyyy-MM-dd HH:mm:ss"

// TaskHandler обслуживает CRUD задач и генерацию задач из текста.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler создаёт хэндлер.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create обрабатывает POST /tasks.
func (h *TaskHandler) Create(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondServerError(c, err)
		return
	}

	var req struct {
		Title       string  `json:"title" binding:"required"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Time        *string `json:"time"`
		Completed   bool    `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := validation.ValidateLength("title", req.Title, validation.MinTaskTitleLength, validation.MaxTaskTitleLength); err != nil {
		respondValidation(c, err)
		return
	}

	task := &models.Task{
		UserID:      user.ID,
		CategoryID:  req.Category,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	}
	if req.Time != nil {
		at, err := time.ParseInLocation(taskTimeLayout, *req.Time, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": invalidTimeMessage})
			return
		}
		task.Time = &at
	}

	created, err := h.tasks.Create(c.Request.Context(), task)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Task created", created)
}

// List обрабатывает GET /tasks с фильтрами по категории, статусу и сроку.
func (h *TaskHandler) List(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondServerError(c, err)
		return
	}

	filter := models.TaskFilter{
		UserID:     user.ID,
		CategoryID: c.Query("category"),
		Title:      c.Query("title"),
	}
	if raw := c.Query("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "completed must be a boolean"})
			return
		}
		filter.Completed = &completed
	}
	if raw := c.Query("time"); raw != "" {
		from, err := time.ParseInLocation(taskTimeLayout, raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": invalidTimeMessage})
			return
		}
		filter.TimeFrom = &from
	}

	tasks, err := h.tasks.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	respondSuccess(c, http.StatusOK, "Tasks retrieved", tasks)
}

// Get обрабатывает GET /tasks/:id.
func (h *TaskHandler) Get(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondServerError(c, err)
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Task retrieved", task)
}

// Update обрабатывает PUT /tasks/:id.
func (h *TaskHandler) Update(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondServerError(c, err)
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Time        *string `json:"time"`
		Completed   *bool   `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if req.Title != nil {
		if err := validation.ValidateLength("title", *req.Title, validation.MinTaskTitleLength, validation.MaxTaskTitleLength); err != nil {
			respondValidation(c, err)
			return
		}
	}

	update := models.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.Category,
		Completed:   req.Completed,
	}
	if req.Time != nil {
		at, err := time.ParseInLocation(taskTimeLayout, *req.Time, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": invalidTimeMessage})
			return
		}
		update.Time = &at
	}

	task, err := h.tasks.Update(c.Request.Context(), user.ID, c.Param("id"), update)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Task updated", task)
}

// Delete обрабатывает DELETE /tasks/:id.
func (h *TaskHandler) Delete(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondServerError(c, err)
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Task deleted", nil)
}

// Generate обрабатывает POST /tasks/generate: разбор свободного текста
// на задачи с отложенными напоминаниями.
func (h *TaskHandler) Generate(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondServerError(c, err)
		return
	}

	var req struct {
		Input string `json:"input" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if err := validation.ValidateLength("input", req.Input, 1, validation.MaxGenerateInputLength); err != nil {
		respondValidation(c, err)
		return
	}

	tasks, err := h.tasks.GenerateFromText(c.Request.Context(), user, req.Input)
	if err != nil {
		respondError(c, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	respondSuccess(c, http.StatusOK, "Tasks generated", tasks)
}
