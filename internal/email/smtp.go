package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender отправляет письма через обычный SMTP сервер.
// Используется в развёртываниях без SendGrid (локальная разработка,
// staging с mailhog). Шаблоны рендерятся в простой текст.
type SMTPSender struct {
	addr     string
	username string
	password string
	host     string
}

// NewSMTPSender создаёт SMTP клиента.
func NewSMTPSender(host, port, username, password string) *SMTPSender {
	return &SMTPSender{
		addr:     host + ":" + port,
		username: username,
		password: password,
		host:     host,
	}
}

// SendText отправляет простое письмо.
func (s *SMTPSender) SendText(ctx context.Context, params TextParams) error {
	return s.send(params.From, params.To, params.Subject, params.Body)
}

// SendTemplate отправляет письмо по шаблону, отрендеренному в текст.
func (s *SMTPSender) SendTemplate(ctx context.Context, params TemplateParams) error {
	subject, body, err := renderTemplate(params.EmailType, params.TemplateData)
	if err != nil {
		return err
	}

	return s.send(params.From, params.To, subject, body)
}

// renderTemplate подставляет данные в текстовую версию шаблона.
func renderTemplate(emailType Type, data map[string]string) (subject, body string, err error) {
	switch emailType {
	case TypeVerifyEmail:
		return "Verify your email",
			fmt.Sprintf("Your verification code is %s. It expires in one hour.", data["otp"]),
			nil
	case TypeResetPassword:
		return "Reset your password",
			fmt.Sprintf("Your password reset code is %s. It expires in one hour.", data["otp"]),
			nil
	default:
		return "", "", fmt.Errorf("email: неизвестный тип письма %q", emailType)
	}
}

// send собирает сообщение и отправляет его через net/smtp.
func (s *SMTPSender) send(from, to, subject, body string) error {
	var msg strings.Builder
	msg.WriteString("From: " + from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if err := smtp.SendMail(s.addr, auth, from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("email: smtp send %w", err)
	}

	return nil
}
