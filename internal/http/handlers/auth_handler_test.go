package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenitha-app/zenitha-backend/internal/email"
	"github.com/zenitha-app/zenitha-backend/internal/googleauth"
	"github.com/zenitha-app/zenitha-backend/internal/http/middleware"
	"github.com/zenitha-app/zenitha-backend/internal/models"
	"github.com/zenitha-app/zenitha-backend/internal/repository"
	"github.com/zenitha-app/zenitha-backend/internal/service"
)

// Тестовая обвязка: настоящие сервисы и middleware поверх хранилищ в памяти.

type memUserRepo struct {
	users map[string]*models.User
	otps  *memOtpRepo
}

func (m *memUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) CreateWithOtp(ctx context.Context, user *models.User, otp *models.Otp) error {
	if err := m.Create(ctx, user); err != nil {
		return err
	}
	return m.otps.Create(ctx, otp)
}

func (m *memUserRepo) Get(ctx context.Context, filter models.UserFilter) (*models.User, error) {
	for _, u := range m.users {
		if filter.ID != "" && u.ID != filter.ID {
			continue
		}
		if filter.Email != "" && u.Email != filter.Email {
			continue
		}
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUserRepo) Update(ctx context.Context, filter models.UserFilter, update models.UserUpdate) (*models.User, error) {
	user, err := m.Get(ctx, filter)
	if err != nil {
		return nil, err
	}
	if update.FirstName != nil {
		user.FirstName = update.FirstName
	}
	if update.LastName != nil {
		user.LastName = update.LastName
	}
	if update.Password != nil {
		user.Password = update.Password
	}
	if update.Verified != nil {
		user.Verified = *update.Verified
	}
	return user, nil
}

type memOtpRepo struct {
	otps   map[int64]*models.Otp
	nextID int64
}

func (m *memOtpRepo) Create(ctx context.Context, otp *models.Otp) error {
	m.nextID++
	otp.ID = m.nextID
	otp.CreatedAt = time.Now()
	stored := *otp
	m.otps[otp.ID] = &stored
	return nil
}

func (m *memOtpRepo) Get(ctx context.Context, filter models.OtpFilter) (*models.Otp, error) {
	for _, o := range m.otps {
		if o.ExpiresAt.Before(time.Now()) {
			continue
		}
		if filter.Code != "" && o.Code != filter.Code {
			continue
		}
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.Purpose != "" && o.Purpose != filter.Purpose {
			continue
		}
		return o, nil
	}
	return nil, repository.ErrOtpNotFound
}

func (m *memOtpRepo) Delete(ctx context.Context, id int64) error {
	delete(m.otps, id)
	return nil
}

type silentSender struct{}

func (silentSender) SendText(ctx context.Context, params email.TextParams) error { return nil }

func (silentSender) SendTemplate(ctx context.Context, params email.TemplateParams) error {
	return nil
}

type staticGoogle struct {
	info *googleauth.TokenInfo
	err  error
}

func (g *staticGoogle) Verify(ctx context.Context, idToken string) (*googleauth.TokenInfo, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.info, nil
}

type authHarness struct {
	engine *gin.Engine
	users  *memUserRepo
	otps   *memOtpRepo
	google *staticGoogle
}

func newAuthHarness() *authHarness {
	otpRepo := &memOtpRepo{otps: make(map[int64]*models.Otp)}
	userRepo := &memUserRepo{users: make(map[string]*models.User), otps: otpRepo}
	google := &staticGoogle{}

	otps := service.NewOtpService(otpRepo, silentSender{}, "no-reply@zenitha.app", time.Hour)
	tokens := service.NewTokenManager("test-secret", time.Hour)
	auth := service.NewAuthService(userRepo, otps, tokens, google)

	authHandler := NewAuthHandler(auth)
	userHandler := NewUserHandler(auth)

	r := gin.New()
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/google/auth", authHandler.GoogleAuth)
	r.POST("/forgot_password", authHandler.ForgotPassword)
	r.POST("/reset_password", authHandler.ResetPassword)
	r.POST("/verify_email", authHandler.VerifyEmail)

	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(tokens, userRepo))
	protected.GET("/user", userHandler.Get)
	protected.POST("/user/resend_verify", userHandler.ResendVerify)
	protected.POST("/user/change_password", userHandler.ChangePassword)

	return &authHarness{engine: r, users: userRepo, otps: otpRepo, google: google}
}

func (h *authHarness) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthHandler_Register(t *testing.T) {
	h := newAuthHarness()

	w := h.do(t, "POST", "/register", gin.H{"email": "new@example.com", "password": "Password1!"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "Registration successful", body["message"])

	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])
	assert.NotZero(t, data["expiry"])

	user := data["user"].(map[string]interface{})
	assert.Equal(t, "new@example.com", user["email"])
	assert.Equal(t, false, user["verified"])
	// Пароль и google_user_id никогда не попадают в ответ.
	_, hasPassword := user["password"]
	assert.False(t, hasPassword)
}

func TestAuthHandler_RegisterDuplicate(t *testing.T) {
	h := newAuthHarness()

	w := h.do(t, "POST", "/register", gin.H{"email": "dup@example.com", "password": "Password1!"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = h.do(t, "POST", "/register", gin.H{"email": "dup@example.com", "password": "Password1!"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", decodeBody(t, w)["message"])
}

func TestAuthHandler_RegisterWeakPassword(t *testing.T) {
	h := newAuthHarness()

	w := h.do(t, "POST", "/register", gin.H{"email": "weak@example.com", "password": "short"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, h.users.users)
}

func TestAuthHandler_LoginFlow(t *testing.T) {
	h := newAuthHarness()
	h.do(t, "POST", "/register", gin.H{"email": "user@example.com", "password": "Password1!"}, nil)

	w := h.do(t, "POST", "/login", gin.H{"email": "user@example.com", "password": "Password1!"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Login successful", decodeBody(t, w)["message"])

	w = h.do(t, "POST", "/login", gin.H{"email": "user@example.com", "password": "Wrong1!pass"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid email/password", decodeBody(t, w)["message"])
}

func TestAuthHandler_VerifyEmailFlow(t *testing.T) {
	h := newAuthHarness()
	h.do(t, "POST", "/register", gin.H{"email": "verify@example.com", "password": "Password1!"}, nil)

	var code string
	for _, o := range h.otps.otps {
		code = o.Code
	}
	require.NotEmpty(t, code)

	w := h.do(t, "POST", "/verify_email", gin.H{"otp": code}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "User verified", body["message"])
	assert.Equal(t, true, body["data"].(map[string]interface{})["verified"])

	// Код одноразовый.
	w = h.do(t, "POST", "/verify_email", gin.H{"otp": code}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid Otp", decodeBody(t, w)["message"])
}

func TestAuthHandler_ForgotAndResetFlow(t *testing.T) {
	h := newAuthHarness()
	h.do(t, "POST", "/register", gin.H{"email": "reset@example.com", "password": "Password1!"}, nil)

	w := h.do(t, "POST", "/forgot_password", gin.H{"email": "unknown@example.com"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid email", decodeBody(t, w)["message"])

	w = h.do(t, "POST", "/forgot_password", gin.H{"email": "reset@example.com"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Reset password initiated", decodeBody(t, w)["message"])

	var code string
	for _, o := range h.otps.otps {
		if o.Purpose == models.OtpPurposeResetPassword {
			code = o.Code
		}
	}
	require.NotEmpty(t, code)

	w = h.do(t, "POST", "/reset_password", gin.H{"otp": code, "password": "NewPassword1!"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password has been reset", decodeBody(t, w)["message"])

	w = h.do(t, "POST", "/login", gin.H{"email": "reset@example.com", "password": "NewPassword1!"}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_GoogleAuthErrors(t *testing.T) {
	h := newAuthHarness()

	h.google.err = &googleauth.Error{Code: googleauth.CodeExpired, Detail: "expired"}
	w := h.do(t, "POST", "/google/auth", gin.H{"token": "stale"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Token expired, please login again.", decodeBody(t, w)["message"])

	h.google.err = &googleauth.Error{Code: googleauth.CodeInvalid, Detail: "bad"}
	w = h.do(t, "POST", "/google/auth", gin.H{"token": "bad"}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid token", decodeBody(t, w)["message"])

	h.google.err = &googleauth.Error{Code: googleauth.CodeInternal, Detail: "boom"}
	w = h.do(t, "POST", "/google/auth", gin.H{"token": "any"}, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal Server Error", decodeBody(t, w)["message"])
}

func TestAuthHandler_GoogleAuthCreatesVerifiedUser(t *testing.T) {
	h := newAuthHarness()
	h.google.info = &googleauth.TokenInfo{Email: "google@example.com", UserID: "google-1"}

	w := h.do(t, "POST", "/google/auth", gin.H{"token": "good"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "User identified", body["message"])
	user := body["data"].(map[string]interface{})["user"].(map[string]interface{})
	assert.Equal(t, true, user["verified"])
	assert.Equal(t, models.SignInProviderGoogle, user["sign_in_provider"])
}

func TestAuthMiddleware_HeaderContract(t *testing.T) {
	h := newAuthHarness()

	// Без заголовка — 401.
	w := h.do(t, "GET", "/user", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Please specify authorization header", decodeBody(t, w)["message"])

	// Кривой формат — тоже 401.
	w = h.do(t, "GET", "/user", nil, map[string]string{"Authorization": "nonsense"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Please specify correct authorization header", decodeBody(t, w)["message"])

	// Мусорный токен — 400.
	w = h.do(t, "GET", "/user", nil, map[string]string{"Authorization": "Bearer not-a-jwt"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Not authorized to access this route", decodeBody(t, w)["message"])

	// Просроченный токен — 400 с отдельным сообщением.
	expired := service.NewTokenManager("test-secret", -time.Minute)
	token, _, err := expired.Issue("whoever")
	require.NoError(t, err)
	w = h.do(t, "GET", "/user", nil, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Token expired", decodeBody(t, w)["message"])

	// Валидный токен несуществующего пользователя — 400 Invalid token.
	fresh := service.NewTokenManager("test-secret", time.Hour)
	token, _, err = fresh.Issue("ghost-user")
	require.NoError(t, err)
	w = h.do(t, "GET", "/user", nil, map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid token", decodeBody(t, w)["message"])
}

func TestUserHandler_AuthenticatedFlow(t *testing.T) {
	h := newAuthHarness()

	w := h.do(t, "POST", "/register", gin.H{"email": "me@example.com", "password": "Password1!"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	token := decodeBody(t, w)["data"].(map[string]interface{})["token"].(string)
	auth := map[string]string{"Authorization": "Bearer " + token}

	w = h.do(t, "GET", "/user", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "User retrieved", body["message"])

	w = h.do(t, "POST", "/user/resend_verify", nil, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Otp sent", decodeBody(t, w)["message"])

	w = h.do(t, "POST", "/user/change_password", gin.H{"password": "Wrong1!", "new_password": "Changed1!"}, auth)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Wrong password", decodeBody(t, w)["message"])

	w = h.do(t, "POST", "/user/change_password", gin.H{"password": "Password1!", "new_password": "Changed1!"}, auth)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password changed", decodeBody(t, w)["message"])
}
