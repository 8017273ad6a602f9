package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zenitha-app/zenitha-backend/internal/models"
	"github.com/zenitha-app/zenitha-backend/internal/service"
	"github.com/zenitha-app/zenitha-backend/internal/validation"
)

// CategoryHandler обслуживает CRUD категорий.
type CategoryHandler struct {
	categories *service.CategoryService
}

// NewCategoryHandler создаёт хэндлер.
func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// Create обрабатывает POST /categories.
func (h *CategoryHandler) Create(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondServerError(c, err)
		return
	}

	var req struct {
		Name  string  `json:"name" binding:"required"`
		Color *string `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if err := validation.ValidateLength("name", req.Name, validation.MinCategoryNameLength, validation.MaxCategoryNameLength); err != nil {
		respondValidation(c, err)
		return
	}

	category := &models.Category{
		UserID: &user.ID,
		Name:   req.Name,
		Color:  req.Color,
	}
	created, err := h.categories.Create(c.Request.Context(), category)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Category created", created)
}

// List обрабатывает GET /categories: личные категории плюс общие.
func (h *CategoryHandler) List(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondServerError(c, err)
		return
	}

	categories, err := h.categories.List(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}

	respondSuccess(c, http.StatusOK, "Categories retrieved", categories)
}

// Get обрабатывает GET /categories/:id.
func (h *CategoryHandler) Get(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondServerError(c, err)
		return
	}

	category, err := h.categories.Get(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Category retrieved", category)
}

// Update обрабатывает PUT /categories/:id.
func (h *CategoryHandler) Update(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondServerError(c, err)
		return
	}

	var req struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	if req.Name != nil {
		if err := validation.ValidateLength("name", *req.Name, validation.MinCategoryNameLength, validation.MaxCategoryNameLength); err != nil {
			respondValidation(c, err)
			return
		}
	}

	category, err := h.categories.Update(c.Request.Context(), user.ID, c.Param("id"), models.CategoryUpdate{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Category updated", category)
}

// Delete обрабатывает DELETE /categories/:id.
func (h *CategoryHandler) Delete(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondServerError(c, err)
		return
	}

	if err := h.categories.Delete(c.Request.Context(), user.ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Category deleted", nil)
}
