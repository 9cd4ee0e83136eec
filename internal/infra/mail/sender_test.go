package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/edicionpersuasiva/crm/internal/usecase"
)

type recordingDialer struct {
	messages []*gomail.Message
	err      error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.messages = append(d.messages, m...)
	return d.err
}

func TestSendLeadSummary(t *testing.T) {
	d := &recordingDialer{}
	s := NewEmailSenderWithDialer("crm@edicionpersuasiva.com", d)

	err := s.SendLeadSummary(context.Background(), "admin@edicionpersuasiva.com", usecase.LeadSummaryEmail{
		LeadID:       "lead-1",
		Name:         "Ana <script>",
		Email:        "ana@example.com",
		Temperature:  "🔥 Caliente",
		DashboardURL: "https://crm.example.com/admin/leads/lead-1",
		CreatedAt:    time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	require.Len(t, d.messages, 1)
	assert.Equal(t, []string{"admin@edicionpersuasiva.com"}, d.messages[0].GetHeader("To"))
	assert.Equal(t, []string{"crm@edicionpersuasiva.com"}, d.messages[0].GetHeader("From"))
}

func TestLeadSummaryTemplateEscapesAnswers(t *testing.T) {
	var body bytes.Buffer
	err := templates.ExecuteTemplate(&body, "lead_summary.html", usecase.LeadSummaryEmail{
		Name:         "Ana <script>",
		Why:          "Quiero <b>crecer</b>",
		Temperature:  "🌤 Tibio",
		DashboardURL: "https://crm.example.com/admin/leads/lead-1",
		CreatedAt:    time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	html := body.String()
	assert.Contains(t, html, `href="https://crm.example.com/admin/leads/lead-1"`)
	assert.Contains(t, html, "10/03/2025 12:00")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;b&gt;crecer&lt;/b&gt;")
}

func TestSendLeadConfirmationPropagatesTransportError(t *testing.T) {
	d := &recordingDialer{err: errors.New("connection refused")}
	s := NewEmailSenderWithDialer("crm@edicionpersuasiva.com", d)

	err := s.SendLeadConfirmation(context.Background(), "ana@example.com", usecase.LeadConfirmationEmail{
		Name:        "Ana",
		WhatsAppURL: "https://wa.me/5215512345678?text=hola",
	})

	assert.ErrorContains(t, err, "connection refused")
	assert.Len(t, d.messages, 1)
}

func TestSendSkipsCanceledContext(t *testing.T) {
	d := &recordingDialer{}
	s := NewEmailSenderWithDialer("crm@edicionpersuasiva.com", d)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.SendLeadConfirmation(ctx, "ana@example.com", usecase.LeadConfirmationEmail{Name: "Ana"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, d.messages)
}

func TestNewEmailSenderUsesServicePreset(t *testing.T) {
	s := NewEmailSender("Gmail", "ignored", 25, "team@gmail.com", "pw", "")
	d, ok := s.dialer.(*gomail.Dialer)
	require.True(t, ok)
	assert.Equal(t, "smtp.gmail.com", d.Host)
	assert.Equal(t, 587, d.Port)
	assert.Equal(t, "team@gmail.com", s.From)
}
