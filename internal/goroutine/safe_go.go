package goroutine

import (
	"context"
	"runtime/debug"

	"github.com/zenitha-app/zenitha-backend/internal/logger"
)

// Пакет goroutine — примитив "отсоединённой задачи" для побочных эффектов,
// которых вызывающий не дожидается (отправка писем, уведомлений).
// Паника в такой задаче логируется и не роняет процесс; результат задачи
// никак не влияет на путь успеха вызывающего.

// SafeGo запускает горутину с обработкой panic.
func SafeGo(fn func()) {
	go func() {
		defer recoverPanic()
		fn()
	}()
}

// SafeGoWithContext запускает горутину с контекстом и обработкой panic.
func SafeGoWithContext(ctx context.Context, fn func(context.Context)) {
	go func() {
		defer recoverPanic()
		fn(ctx)
	}()
}

func recoverPanic() {
	if r := recover(); r != nil {
		if logger.Log != nil {
			logger.Log.Errorf("goroutine: panic в фоновой задаче: %v\n%s", r, debug.Stack())
		}
	}
}
