package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/edicionpersuasiva/crm/internal/usecase"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// NewEmailSender builds an SMTP sender. When service names a known provider
// its host and port override the explicit ones.
func NewEmailSender(service, host string, port int, user, password, from string) *EmailSender {
	if svc, ok := smtpServices[strings.ToLower(service)]; ok {
		host, port = svc.Host, svc.Port
	}
	if from == "" {
		from = user
	}
	return &EmailSender{
		From:   from,
		dialer: gomail.NewDialer(host, port, user, password),
	}
}

// NewEmailSenderWithDialer is used when the transport is provided by the caller.
func NewEmailSenderWithDialer(from string, d Dialer) *EmailSender {
	return &EmailSender{From: from, dialer: d}
}

func (s *EmailSender) SendLeadSummary(ctx context.Context, to string, data usecase.LeadSummaryEmail) error {
	subject := fmt.Sprintf("Nuevo lead %s: %s", data.Temperature, data.Name)
	return s.send(ctx, to, subject, "lead_summary.html", data)
}

func (s *EmailSender) SendLeadConfirmation(ctx context.Context, to string, data usecase.LeadConfirmationEmail) error {
	return s.send(ctx, to, "¡Recibimos tus respuestas! | Edición Persuasiva", "lead_confirmation.html", data)
}

func (s *EmailSender) send(ctx context.Context, to, subject, tmpl string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return fmt.Errorf("error al procesar template %s: %w", tmpl, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("error al enviar email SMTP: %w", err)
	}
	return nil
}
