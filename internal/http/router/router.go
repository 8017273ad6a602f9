package router

import (
	"github.com/gin-gonic/gin"

	"github.com/zenitha-app/zenitha-backend/internal/config"
	"github.com/zenitha-app/zenitha-backend/internal/http/handlers"
	"github.com/zenitha-app/zenitha-backend/internal/http/middleware"
	"github.com/zenitha-app/zenitha-backend/internal/service"
)

// SetupRouter собирает все маршруты API.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	taskHandler *handlers.TaskHandler,
	categoryHandler *handlers.CategoryHandler,
	pushTokenHandler *handlers.PushTokenHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
	users middleware.UserLoader,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.RequestID())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	// Публичные маршруты входа под лимитом: перебор паролей и кодов
	// должен упираться в лимит запросов.
	public := r.Group("/")
	public.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		public.POST("/register", authHandler.Register)
		public.POST("/login", authHandler.Login)
		public.POST("/google/auth", authHandler.GoogleAuth)
		public.POST("/forgot_password", authHandler.ForgotPassword)
		public.POST("/reset_password", authHandler.ResetPassword)
		public.POST("/verify_email", authHandler.VerifyEmail)
	}

	// Защищённые маршруты.
	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager, users))
	{
		protected.GET("/user", userHandler.Get)
		protected.PUT("/user", userHandler.Update)
		protected.POST("/user/change_password", userHandler.ChangePassword)
		protected.POST("/user/resend_verify", userHandler.ResendVerify)
		protected.POST("/user/push-token", pushTokenHandler.Save)

		protected.POST("/tasks", taskHandler.Create)
		protected.GET("/tasks", taskHandler.List)
		protected.GET("/tasks/:id", taskHandler.Get)
		protected.PUT("/tasks/:id", taskHandler.Update)
		protected.DELETE("/tasks/:id", taskHandler.Delete)
		protected.POST("/tasks/generate", taskHandler.Generate)

		protected.POST("/categories", categoryHandler.Create)
		protected.GET("/categories", categoryHandler.List)
		protected.GET("/categories/:id", categoryHandler.Get)
		protected.PUT("/categories/:id", categoryHandler.Update)
		protected.DELETE("/categories/:id", categoryHandler.Delete)
	}

	return r
}
