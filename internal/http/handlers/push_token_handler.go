package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zenitha-app/zenitha-backend/internal/models"
	"github.com/zenitha-app/zenitha-backend/internal/push"
)

// PushTokenStore — хранилище пуш-токенов, нужное хэндлеру.
type PushTokenStore interface {
	Upsert(ctx context.Context, token *models.UserPushToken) error
	Get(ctx context.Context, userID string) (*models.UserPushToken, error)
}

// PushTokenHandler регистрирует Expo пуш-токен устройства пользователя.
type PushTokenHandler struct {
	store PushTokenStore
}

// NewPushTokenHandler создаёт хэндлер.
func NewPushTokenHandler(store PushTokenStore) *PushTokenHandler {
	return &PushTokenHandler{store: store}
}

// Save обрабатывает POST /user/push-token. Токен на пользователя один:
// повторная регистрация с нового устройства перетирает прежний.
func (h *PushTokenHandler) Save(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondServerError(c, err)
		return
	}

	var req struct {
		PushToken string `json:"push_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !push.IsExpoPushToken(req.PushToken) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "push_token is required"})
		return
	}

	token := &models.UserPushToken{
		UserID:    user.ID,
		PushToken: req.PushToken,
	}
	if err := h.store.Upsert(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "User push token saved", token)
}
