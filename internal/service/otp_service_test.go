package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zenitha-app/zenitha-backend/internal/models"
	"github.com/zenitha-app/zenitha-backend/internal/repository"
)

func TestOtpService_IssueAndLookup(t *testing.T) {
	repo := newMockOtpRepository()
	sender := newMockSender()
	service := NewOtpService(repo, sender, "no-reply@zenitha.app", time.Hour)
	ctx := context.Background()

	otp, err := service.Issue(ctx, "user-1", models.OtpPurposeVerifyEmail, "user@example.com")
	if err != nil {
		t.Fatalf("issue вернул ошибку: %v", err)
	}
	if len(otp.Code) != 6 {
		t.Fatalf("ожидался шестизначный код, получили %q", otp.Code)
	}
	if !otp.ExpiresAt.After(time.Now().Add(50 * time.Minute)) {
		t.Fatalf("код должен жить около часа")
	}
	sender.waitForEmail(t)

	found, err := service.Lookup(ctx, models.OtpFilter{Code: otp.Code, Purpose: models.OtpPurposeVerifyEmail})
	if err != nil {
		t.Fatalf("lookup вернул ошибку: %v", err)
	}
	if found.UserID != "user-1" {
		t.Fatalf("код привязан не к тому пользователю")
	}
}

func TestOtpService_ExpiredCodeIsInvisible(t *testing.T) {
	repo := newMockOtpRepository()
	sender := newMockSender()
	service := NewOtpService(repo, sender, "no-reply@zenitha.app", time.Hour)
	ctx := context.Background()

	stale := &models.Otp{
		UserID:    "user-1",
		Code:      "123456",
		Purpose:   models.OtpPurposeVerifyEmail,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := repo.Create(ctx, stale); err != nil {
		t.Fatalf("create вернул ошибку: %v", err)
	}

	if _, err := service.Lookup(ctx, models.OtpFilter{Code: "123456"}); !errors.Is(err, repository.ErrOtpNotFound) {
		t.Fatalf("просроченный код не должен находиться, получили %v", err)
	}
}

func TestOtpService_ConsumeIsFinal(t *testing.T) {
	repo := newMockOtpRepository()
	sender := newMockSender()
	service := NewOtpService(repo, sender, "no-reply@zenitha.app", time.Hour)
	ctx := context.Background()

	otp, err := service.Issue(ctx, "user-1", models.OtpPurposeResetPassword, "user@example.com")
	if err != nil {
		t.Fatalf("issue вернул ошибку: %v", err)
	}
	sender.waitForEmail(t)

	if err := service.Consume(ctx, otp.ID); err != nil {
		t.Fatalf("consume вернул ошибку: %v", err)
	}

	if _, err := service.Lookup(ctx, models.OtpFilter{Code: otp.Code}); !errors.Is(err, repository.ErrOtpNotFound) {
		t.Fatalf("погашенный код не должен находиться, получили %v", err)
	}

	// Повторное гашение безвредно.
	if err := service.Consume(ctx, otp.ID); err != nil {
		t.Fatalf("повторный consume вернул ошибку: %v", err)
	}
}
