package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/zenitha-app/zenitha-backend/internal/googleauth"
	"github.com/zenitha-app/zenitha-backend/internal/models"
	"github.com/zenitha-app/zenitha-backend/internal/pkg/apperror"
	"github.com/zenitha-app/zenitha-backend/internal/pkg/ident"
	"github.com/zenitha-app/zenitha-backend/internal/repository"
)

// AuthRepository описывает зависимости AuthService от слоя хранилища.
type AuthRepository interface {
	Create(ctx context.Context, user *models.User) error
	CreateWithOtp(ctx context.Context, user *models.User, otp *models.Otp) error
	Get(ctx context.Context, filter models.UserFilter) (*models.User, error)
	Update(ctx context.Context, filter models.UserFilter, update models.UserUpdate) (*models.User, error)
}

// GoogleVerifier проверяет гугловский id_token и возвращает сведения о владельце.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*googleauth.TokenInfo, error)
}

// AuthService инкапсулирует бизнес-логику учётных записей: регистрацию,
// вход, федеративный вход и все операции, защищённые одноразовым кодом.
type AuthService struct {
	repo   AuthRepository
	otps   *OtpService
	tokens *TokenManager
	google GoogleVerifier
}

// RegisterInput содержит данные пользователя при регистрации.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

// LoginInput содержит данные для входа.
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User   *models.User
	Token  string
	Expiry time.Time
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(repo AuthRepository, otps *OtpService, tokens *TokenManager, google GoogleVerifier) *AuthService {
	return &AuthService{
		repo:   repo,
		otps:   otps,
		tokens: tokens,
		google: google,
	}
}

// Register создаёт нового пользователя вместе с кодом подтверждения почты.
// Пользователь и код пишутся одной транзакцией: не бывает пользователя,
// которому нечем подтвердить почту. Письмо уходит уже после фиксации.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)

	if _, err := s.repo.Get(ctx, models.UserFilter{Email: email}); err == nil {
		return nil, apperror.ErrUserExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:             ident.NewID(),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          email,
		Password:       &hash,
		SignInProvider: models.SignInProviderCustom,
		Verified:       false,
	}

	otp := s.otps.NewPending(models.OtpPurposeVerifyEmail)
	otp.UserID = user.ID

	if err := s.repo.CreateWithOtp(ctx, user, otp); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, apperror.ErrUserExists
		}
		return nil, err
	}

	s.otps.DispatchCode(user.Email, otp.Purpose, otp.Code)

	return s.issue(user)
}

// Login проверяет пару email/пароль и выпускает токен сессии.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.repo.Get(ctx, models.UserFilter{Email: normalizeEmail(in.Email)})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	// Федеративный аккаунт локального пароля не имеет.
	if user.GoogleUserID != nil || user.Password == nil {
		return nil, apperror.ErrGoogleSignIn
	}

	if bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(in.Password)) != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issue(user)
}

// GoogleAuth проверяет id_token и входит под соответствующим пользователем,
// создавая его при первом входе. Почта федеративного пользователя считается
// подтверждённой самим Google, поэтому код ему не выпускается.
func (s *AuthService) GoogleAuth(ctx context.Context, idToken string) (*AuthResult, error) {
	info, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(info.Email)

	user, err := s.repo.Get(ctx, models.UserFilter{Email: email})
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}

		user = &models.User{
			ID:             ident.NewID(),
			Email:          email,
			SignInProvider: models.SignInProviderGoogle,
			GoogleUserID:   &info.UserID,
			Verified:       true,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			// Параллельный первый вход того же пользователя: перечитываем.
			if errors.Is(err, repository.ErrEmailTaken) {
				return s.googleRelogin(ctx, email)
			}
			return nil, err
		}
	}

	return s.issue(user)
}

func (s *AuthService) googleRelogin(ctx context.Context, email string) (*AuthResult, error) {
	user, err := s.repo.Get(ctx, models.UserFilter{Email: email})
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// ForgotPassword выпускает код сброса пароля для известной почты.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.repo.Get(ctx, models.UserFilter{Email: normalizeEmail(email)})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrInvalidEmail
		}
		return err
	}

	_, err = s.otps.Issue(ctx, user.ID, models.OtpPurposeResetPassword, user.Email)
	return err
}

// ResetPassword меняет пароль по коду сброса и гасит код.
func (s *AuthService) ResetPassword(ctx context.Context, code, newPassword string) error {
	otp, err := s.otps.Lookup(ctx, models.OtpFilter{
		Code:    code,
		Purpose: models.OtpPurposeResetPassword,
	})
	if err != nil {
		if errors.Is(err, repository.ErrOtpNotFound) {
			return apperror.ErrInvalidOtp
		}
		return err
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	if _, err := s.repo.Update(ctx, models.UserFilter{ID: otp.UserID}, models.UserUpdate{Password: &hash}); err != nil {
		return err
	}

	return s.otps.Consume(ctx, otp.ID)
}

// VerifyEmail помечает почту подтверждённой по коду и гасит код.
func (s *AuthService) VerifyEmail(ctx context.Context, code string) (*models.User, error) {
	otp, err := s.otps.Lookup(ctx, models.OtpFilter{
		Code:    code,
		Purpose: models.OtpPurposeVerifyEmail,
	})
	if err != nil {
		if errors.Is(err, repository.ErrOtpNotFound) {
			return nil, apperror.ErrInvalidOtp
		}
		return nil, err
	}

	verified := true
	user, err := s.repo.Update(ctx, models.UserFilter{ID: otp.UserID}, models.UserUpdate{Verified: &verified})
	if err != nil {
		return nil, err
	}

	if err := s.otps.Consume(ctx, otp.ID); err != nil {
		return nil, err
	}

	return user, nil
}

// ResendVerification выпускает новый код подтверждения для текущего пользователя.
func (s *AuthService) ResendVerification(ctx context.Context, user *models.User) error {
	if user.Verified {
		return apperror.ErrUserVerified
	}

	_, err := s.otps.Issue(ctx, user.ID, models.OtpPurposeVerifyEmail, user.Email)
	return err
}

// ChangePassword меняет пароль пользователя после проверки текущего.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, current, next string) error {
	if user.Password == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(current)) != nil {
		return apperror.ErrWrongPassword
	}

	hash, err := hashPassword(next)
	if err != nil {
		return err
	}

	_, err = s.repo.Update(ctx, models.UserFilter{ID: user.ID}, models.UserUpdate{Password: &hash})
	return err
}

// UpdateProfile обновляет имя и фамилию пользователя.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update models.UserUpdate) (*models.User, error) {
	return s.repo.Update(ctx, models.UserFilter{ID: userID}, update)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, expiry, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User:   user,
		Token:  token,
		Expiry: expiry,
	}, nil
}

func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("auth service: hash password %w", err)
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
