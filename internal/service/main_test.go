package service

import (
	"os"
	"testing"

	"github.com/zenitha-app/zenitha-backend/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Init("fatal")
	os.Exit(m.Run())
}
