package handlers

import (
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/zenitha-app/zenitha-backend/internal/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Init("fatal")
	os.Exit(m.Run())
}
