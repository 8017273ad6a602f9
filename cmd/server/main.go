package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/zenitha-app/zenitha-backend/internal/ai"
	"github.com/zenitha-app/zenitha-backend/internal/config"
	"github.com/zenitha-app/zenitha-backend/internal/db"
	"github.com/zenitha-app/zenitha-backend/internal/email"
	"github.com/zenitha-app/zenitha-backend/internal/googleauth"
	httpHandlers "github.com/zenitha-app/zenitha-backend/internal/http/handlers"
	httpRouter "github.com/zenitha-app/zenitha-backend/internal/http/router"
	"github.com/zenitha-app/zenitha-backend/internal/logger"
	"github.com/zenitha-app/zenitha-backend/internal/push"
	"github.com/zenitha-app/zenitha-backend/internal/repository"
	"github.com/zenitha-app/zenitha-backend/internal/service"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Внешние клиенты.
	sender, err := email.New(email.Options{
		Provider:     cfg.EmailProvider,
		SendgridKey:  cfg.SendgridKey,
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUser:     cfg.SMTPUser,
		SMTPPassword: cfg.SMTPPassword,
	})
	if err != nil {
		log.Fatalf("main: ошибка настройки почты: %v", err)
	}

	googleClient := googleauth.NewClient(cfg.GoogleTokenInfoURL)
	pushClient := push.NewClient(cfg.ExpoPushURL)
	aiClient := ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	otpRepo := repository.NewOtpRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	categoryRepo := repository.NewCategoryRepository(dbConn)
	taskRepo := repository.NewTaskRepository(dbConn)
	pushTokenRepo := repository.NewPushTokenRepository(dbConn)

	// Сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	otpService := service.NewOtpService(otpRepo, sender, cfg.EmailFrom, cfg.OtpTTL)
	authService := service.NewAuthService(userRepo, otpService, tokenManager, googleClient)
	schedulerService := service.NewSchedulerService(notificationRepo, pushClient, cfg.PollInterval)
	categoryService := service.NewCategoryService(categoryRepo)
	taskService := service.NewTaskService(taskRepo, categoryRepo, pushTokenRepo, aiClient, schedulerService)

	// Опросчик отложенных уведомлений живёт, пока жив процесс.
	go schedulerService.Run(ctx)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	userHandler := httpHandlers.NewUserHandler(authService)
	taskHandler := httpHandlers.NewTaskHandler(taskService)
	categoryHandler := httpHandlers.NewCategoryHandler(categoryService)
	pushTokenHandler := httpHandlers.NewPushTokenHandler(pushTokenRepo)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, authHandler, userHandler, taskHandler, categoryHandler, pushTokenHandler, healthHandler, tokenManager, userRepo)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
