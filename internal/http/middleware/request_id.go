package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextRequestIDKey — ключ корреляционного идентификатора запроса.
const ContextRequestIDKey = "requestID"

// RequestID присваивает каждому запросу идентификатор. Клиентский
// X-Request-ID уважается, иначе генерируется новый. Идентификатор
// попадает в лог каждой серверной ошибки и в ответный заголовок.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(ContextRequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
