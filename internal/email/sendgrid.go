package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const sendgridSendURL = "https://api.sendgrid.com/v3/mail/send"

// Идентификаторы шаблонов из дашборда SendGrid: HTML шаблоны живут там,
// чтобы не держать вёрстку в коде.
func sendgridTemplateID(emailType Type) (string, error) {
	switch emailType {
	case TypeVerifyEmail:
		return "d-998f1bcdcc004d7eb17e8c57b5a08f01", nil
	case TypeResetPassword:
		return "d-d98bb74a9ea64850a069065c5d873fd5", nil
	default:
		return "", fmt.Errorf("email: неизвестный тип письма %q", emailType)
	}
}

// SendgridSender отправляет письма через SendGrid HTTP API.
type SendgridSender struct {
	apiKey     string
	sendURL    string
	httpClient *http.Client
}

// NewSendgridSender создаёт клиента SendGrid.
func NewSendgridSender(apiKey string) *SendgridSender {
	return &SendgridSender{
		apiKey:  apiKey,
		sendURL: sendgridSendURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SendText отправляет простое письмо с готовым HTML телом.
func (s *SendgridSender) SendText(ctx context.Context, params TextParams) error {
	payload := map[string]interface{}{
		"personalizations": []map[string]interface{}{
			{"to": []map[string]string{{"email": params.To}}},
		},
		"from":    map[string]string{"email": params.From},
		"subject": params.Subject,
		"content": []map[string]string{
			{"type": "text/html", "value": params.Body},
		},
	}

	return s.send(ctx, payload)
}

// SendTemplate отправляет письмо по шаблону с динамическими данными.
func (s *SendgridSender) SendTemplate(ctx context.Context, params TemplateParams) error {
	templateID, err := sendgridTemplateID(params.EmailType)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"personalizations": []map[string]interface{}{
			{
				"to":                    []map[string]string{{"email": params.To}},
				"dynamic_template_data": params.TemplateData,
			},
		},
		"from":        map[string]string{"email": params.From},
		"template_id": templateID,
	}

	return s.send(ctx, payload)
}

// send выполняет запрос к SendGrid API.
func (s *SendgridSender) send(ctx context.Context, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("email: sendgrid marshal %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("email: sendgrid request %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("email: sendgrid send %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("email: sendgrid вернул статус %d: %s", resp.StatusCode, detail)
	}

	return nil
}
