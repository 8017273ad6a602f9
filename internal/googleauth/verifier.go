package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrorCode классифицирует ошибку провайдера. Набор кодов фиксирован:
// неизвестные ответы провайдера сводятся к CodeInternal.
type ErrorCode string

const (
	CodeExpired  ErrorCode = "EXPIRED_TOKEN"
	CodeInvalid  ErrorCode = "INVALID_TOKEN"
	CodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error — ошибка проверки Google ID токена.
type Error struct {
	Code   ErrorCode
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("googleauth: %s: %s", e.Code, e.Detail)
}

// AsError извлекает *Error из цепочки.
func AsError(err error) (*Error, bool) {
	var gErr *Error
	ok := errors.As(err, &gErr)
	return gErr, ok
}

// TokenInfo — данные пользователя, подтверждённые провайдером.
type TokenInfo struct {
	Email  string
	UserID string
}

// Client проверяет Google ID токены через tokeninfo endpoint.
type Client struct {
	tokenInfoURL string
	httpClient   *http.Client
}

// NewClient создаёт клиента проверки токенов.
func NewClient(tokenInfoURL string) *Client {
	return &Client{
		tokenInfoURL: tokenInfoURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Verify проверяет ID токен и возвращает email и идентификатор
// пользователя у провайдера.
func (c *Client) Verify(ctx context.Context, idToken string) (*TokenInfo, error) {
	reqURL := c.tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &Error{Code: CodeInternal, Detail: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Code: CodeInternal, Detail: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)

		detail := body.ErrorDescription
		if detail == "" {
			detail = body.Error
		}

		switch {
		case resp.StatusCode >= http.StatusInternalServerError:
			return nil, &Error{Code: CodeInternal, Detail: detail}
		case strings.Contains(strings.ToLower(detail), "expired"):
			return nil, &Error{Code: CodeExpired, Detail: detail}
		default:
			return nil, &Error{Code: CodeInvalid, Detail: detail}
		}
	}

	var info struct {
		Email string `json:"email"`
		Sub   string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, &Error{Code: CodeInternal, Detail: err.Error()}
	}

	if info.Email == "" || info.Sub == "" {
		return nil, &Error{Code: CodeInvalid, Detail: "token has no email or subject"}
	}

	return &TokenInfo{Email: info.Email, UserID: info.Sub}, nil
}
