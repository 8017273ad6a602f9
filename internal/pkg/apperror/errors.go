package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeProvider     ErrorCode = "EXTERNAL_PROVIDER_ERROR"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// codeToHTTPStatus переводит код ошибки в HTTP статус. Конфликт
// отдаётся как 400: истории про занятую почту и неверный пароль
// различаются только текстом сообщения.
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeConflict, ErrCodeProvider:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeConflict
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeValidation
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

var (
	ErrUserExists         = New(ErrCodeConflict, "User already exists")
	ErrInvalidCredentials = New(ErrCodeBadRequest, "Invalid email/password")
	ErrGoogleSignIn       = New(ErrCodeBadRequest, "Please sign in with google")
	ErrInvalidEmail       = New(ErrCodeBadRequest, "Invalid email")
	ErrInvalidOtp         = New(ErrCodeBadRequest, "Invalid Otp")
	ErrUserVerified       = New(ErrCodeBadRequest, "User is verified")
	ErrWrongPassword      = New(ErrCodeBadRequest, "Wrong password")
	ErrInvalidCategory    = New(ErrCodeBadRequest, "Invalid category")
	ErrTaskNotFound       = New(ErrCodeNotFound, "Task not found")
	ErrCategoryNotFound   = New(ErrCodeNotFound, "Category not found")
)
