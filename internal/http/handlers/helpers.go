package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/zenitha-app/zenitha-backend/internal/http/middleware"
	"github.com/zenitha-app/zenitha-backend/internal/logger"
	"github.com/zenitha-app/zenitha-backend/internal/models"
	"github.com/zenitha-app/zenitha-backend/internal/pkg/apperror"
)

var errUserNotInContext = errors.New("пользователь не найден в контексте")

// currentUser извлекает пользователя, положенного auth middleware.
func currentUser(c *gin.Context) (*models.User, error) {
	raw, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil, errUserNotInContext
	}

	user, ok := raw.(*models.User)
	if !ok {
		return nil, errUserNotInContext
	}

	return user, nil
}

// respondSuccess отвечает конвертом {message, data}. data опускается,
// когда отвечать нечем.
func respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// respondError переводит ошибку в конверт {message}. Известные ошибки
// доменного слоя несут свой статус; всё остальное — серверная ошибка,
// наружу уходит только обезличенное сообщение.
func respondError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, gin.H{"message": appErr.Message})
		return
	}

	respondServerError(c, err)
}

// respondServerError логирует причину с корреляционным идентификатором
// и отвечает 500 без деталей.
func respondServerError(c *gin.Context, err error) {
	logger.Log.WithFields(logrus.Fields{
		"request_id": c.GetString(middleware.ContextRequestIDKey),
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
	}).Errorf("запрос завершился ошибкой: %v", err)

	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
}

// respondValidation отвечает 400 с текстом нарушенного правила.
func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
}
