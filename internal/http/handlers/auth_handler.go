package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zenitha-app/zenitha-backend/internal/googleauth"
	"github.com/zenitha-app/zenitha-backend/internal/service"
	"github.com/zenitha-app/zenitha-backend/internal/validation"
)

// AuthHandler предоставляет HTTP слой для регистрации и входа.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler создаёт хэндлер.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type sessionPayload struct {
	User   interface{} `json:"user"`
	Token  string      `json:"token"`
	Expiry int64       `json:"expiry"`
}

func sessionData(res *service.AuthResult) sessionPayload {
	return sessionPayload{
		User:   res.User,
		Token:  res.Token,
		Expiry: res.Expiry.Unix(),
	}
}

// Register обрабатывает POST /register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email     string  `json:"email" binding:"required"`
		Password  string  `json:"password" binding:"required"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		respondValidation(c, err)
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		respondValidation(c, err)
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Registration successful", sessionData(result))
}

// Login обрабатывает POST /login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Login successful", sessionData(result))
}

// GoogleAuth обрабатывает POST /google/auth.
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	result, err := h.auth.GoogleAuth(c.Request.Context(), req.Token)
	if err != nil {
		h.handleGoogleAuthError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "User identified", sessionData(result))
}

// handleGoogleAuthError раскладывает ошибки провайдера по фиксированной
// таблице кодов. Неопознанные ответы провайдера наружу не протекают.
func (h *AuthHandler) handleGoogleAuthError(c *gin.Context, err error) {
	if provErr, ok := googleauth.AsError(err); ok {
		switch provErr.Code {
		case googleauth.CodeExpired:
			c.JSON(http.StatusBadRequest, gin.H{"message": "Token expired, please login again."})
		case googleauth.CodeInvalid:
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid token"})
		default:
			respondServerError(c, err)
		}
		return
	}

	respondError(c, err)
}

// ForgotPassword обрабатывает POST /forgot_password.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.auth.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Reset password initiated", nil)
}

// ResetPassword обрабатывает POST /reset_password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Otp      string `json:"otp" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := validation.ValidatePassword(req.Password); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.auth.ResetPassword(c.Request.Context(), req.Otp, req.Password); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Password has been reset", nil)
}

// VerifyEmail обрабатывает POST /verify_email.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req struct {
		Otp string `json:"otp" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := h.auth.VerifyEmail(c.Request.Context(), req.Otp)
	if err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "User verified", user)
}
