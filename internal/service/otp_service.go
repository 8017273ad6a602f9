package service

import (
	"context"
	"time"

	"github.com/zenitha-app/zenitha-backend/internal/email"
	"github.com/zenitha-app/zenitha-backend/internal/goroutine"
	"github.com/zenitha-app/zenitha-backend/internal/logger"
	"github.com/zenitha-app/zenitha-backend/internal/models"
	"github.com/zenitha-app/zenitha-backend/internal/pkg/ident"
)

// OtpRepository описывает хранилище одноразовых кодов.
type OtpRepository interface {
	Create(ctx context.Context, otp *models.Otp) error
	Get(ctx context.Context, filter models.OtpFilter) (*models.Otp, error)
	Delete(ctx context.Context, id int64) error
}

// OtpService выпускает, проверяет и гасит одноразовые коды.
type OtpService struct {
	repo   OtpRepository
	sender email.Sender
	from   string
	ttl    time.Duration
}

// NewOtpService создаёт сервис одноразовых кодов.
func NewOtpService(repo OtpRepository, sender email.Sender, from string, ttl time.Duration) *OtpService {
	return &OtpService{
		repo:   repo,
		sender: sender,
		from:   from,
		ttl:    ttl,
	}
}

// NewPending собирает несохранённый код: используется, когда запись кода
// должна попасть в одну транзакцию с созданием пользователя.
func (s *OtpService) NewPending(purpose string) *models.Otp {
	return &models.Otp{
		Code:      ident.NewOtp(),
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(s.ttl),
	}
}

// Issue выпускает код для пользователя, сохраняет его и отправляет на почту.
func (s *OtpService) Issue(ctx context.Context, userID, purpose, toEmail string) (*models.Otp, error) {
	otp := s.NewPending(purpose)
	otp.UserID = userID

	if err := s.repo.Create(ctx, otp); err != nil {
		return nil, err
	}

	s.DispatchCode(toEmail, purpose, otp.Code)

	return otp, nil
}

// DispatchCode отправляет письмо с кодом в фоне. Ошибка доставки логируется
// и не влияет на исход вызвавшей операции.
func (s *OtpService) DispatchCode(toEmail, purpose, code string) {
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		params := email.TemplateParams{
			To:           toEmail,
			From:         s.from,
			EmailType:    emailTypeForPurpose(purpose),
			TemplateData: map[string]string{"otp": code},
		}
		if err := s.sender.SendTemplate(ctx, params); err != nil {
			logger.Log.Errorf("не удалось отправить письмо с кодом на %s: %v", toEmail, err)
		}
	})
}

// Lookup ищет живой код по фильтру. Просроченные коды не находятся.
func (s *OtpService) Lookup(ctx context.Context, filter models.OtpFilter) (*models.Otp, error) {
	return s.repo.Get(ctx, filter)
}

// Consume гасит код: повторное использование того же кода невозможно.
func (s *OtpService) Consume(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func emailTypeForPurpose(purpose string) email.Type {
	if purpose == models.OtpPurposeResetPassword {
		return email.TypeResetPassword
	}
	return email.TypeVerifyEmail
}
