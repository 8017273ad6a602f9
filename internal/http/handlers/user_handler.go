package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zenitha-app/zenitha-backend/internal/models"
	"github.com/zenitha-app/zenitha-backend/internal/service"
	"github.com/zenitha-app/zenitha-backend/internal/validation"
)

// UserHandler обслуживает профиль текущего пользователя.
type UserHandler struct {
	auth *service.AuthService
}

// NewUserHandler создаёт хэндлер.
func NewUserHandler(auth *service.AuthService) *UserHandler {
	return &UserHandler{auth: auth}
}

// Get обрабатывает GET /user.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondServerError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "User retrieved", user)
}

// Update обрабатывает PUT /user.
func (h *UserHandler) Update(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondServerError(c, err)
		return
	}

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if req.FirstName != nil {
		if err := validation.ValidateLength("first_name", *req.FirstName, 1, validation.MaxNameLength); err != nil {
			respondValidation(c, err)
			return
		}
	}
	if req.LastName != nil {
		if err := validation.ValidateLength("last_name", *req.LastName, 1, validation.MaxNameLength); err != nil {
			respondValidation(c, err)
			return
		}
	}

	updated, err := h.auth.UpdateProfile(c.Request.Context(), user.ID, models.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "User updated", updated)
}

// ChangePassword обрабатывает POST /user/change_password.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondServerError(c, err)
		return
	}

	var req struct {
		Password    string `json:"password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), user, req.Password, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Password changed", user)
}

// ResendVerify обрабатывает POST /user/resend_verify.
func (h *UserHandler) ResendVerify(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondServerError(c, err)
		return
	}

	if err := h.auth.ResendVerification(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Otp sent", nil)
}
