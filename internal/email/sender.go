package email

import (
	"context"
	"fmt"
)

// Тип письма определяет шаблон, по которому оно отправляется.
type Type string

const (
	TypeVerifyEmail   Type = "VERIFY_EMAIL"
	TypeResetPassword Type = "RESET_PASSWORD"
)

// TextParams — параметры простого письма с готовым телом.
type TextParams struct {
	To      string
	From    string
	Subject string
	Body    string
}

// TemplateParams — параметры письма по шаблону.
type TemplateParams struct {
	To           string
	From         string
	EmailType    Type
	TemplateData map[string]string
}

// Sender — единый интерфейс почтового клиента. Конкретный провайдер
// выбирается один раз при создании, а не на каждый вызов: провайдерная
// логика не расползается по коду.
type Sender interface {
	SendText(ctx context.Context, params TextParams) error
	SendTemplate(ctx context.Context, params TemplateParams) error
}

// Options — настройки провайдеров.
type Options struct {
	Provider     string
	SendgridKey  string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
}

// New возвращает почтовый клиент выбранного провайдера.
// Сейчас поддерживаются sendgrid и smtp; новые провайдеры добавляются
// сюда (например mailgun или ses, если доставляемость sendgrid
// окажется недостаточной).
func New(opts Options) (Sender, error) {
	switch opts.Provider {
	case "smtp":
		return NewSMTPSender(opts.SMTPHost, opts.SMTPPort, opts.SMTPUser, opts.SMTPPassword), nil
	case "sendgrid", "":
		return NewSendgridSender(opts.SendgridKey), nil
	default:
		return nil, fmt.Errorf("email: неизвестный провайдер %q", opts.Provider)
	}
}
