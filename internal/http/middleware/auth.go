package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zenitha-app/zenitha-backend/internal/models"
	"github.com/zenitha-app/zenitha-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextUserKey = "currentUser"
)

// UserLoader загружает пользователя по идентификатору из токена.
type UserLoader interface {
	Get(ctx context.Context, filter models.UserFilter) (*models.User, error)
}

// AuthMiddleware проверяет Bearer токен и кладёт пользователя в контекст.
// Отсутствие или кривой формат заголовка — это 401; невалидный или
// просроченный токен — 400. Асимметрия намеренная и закреплена контрактом
// API: клиенты различают «не передал токен» и «токен не годится».
func AuthMiddleware(tokens *service.TokenManager, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Please specify authorization header"})
			return
		}

		parts := strings.Split(auth, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Please specify correct authorization header"})
			return
		}

		userID, err := tokens.Parse(parts[1])
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Not authorized to access this route"})
			return
		}

		user, err := users.Get(c.Request.Context(), models.UserFilter{ID: userID})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Invalid token"})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}
