package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edicionpersuasiva/crm/internal/entity"
	"github.com/edicionpersuasiva/crm/internal/infra/memory"
	"github.com/edicionpersuasiva/crm/internal/usecase"
)

func TestLeadTemperature(t *testing.T) {
	assert.Equal(t, "🔥 Caliente", usecase.LeadTemperature("si"))
	assert.Equal(t, "🌤 Tibio", usecase.LeadTemperature("tal_vez"))
	assert.Equal(t, "❄️ Frío", usecase.LeadTemperature("no"))
	assert.Equal(t, "Sin definir", usecase.LeadTemperature(""))
	assert.Equal(t, "Sin definir", usecase.LeadTemperature("quizas"))
}

func TestNotifyLeadSendsBothEmails(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	lead := seedLead(t, store, entity.LeadStatusLead)
	mailer := new(MockEmailService)

	mailer.On("SendLeadSummary", ctx, "admin@edicionpersuasiva.com", mock.MatchedBy(func(d usecase.LeadSummaryEmail) bool {
		return d.LeadID == lead.ID &&
			d.Temperature == "Sin definir" &&
			d.DashboardURL == "https://crm.example.com/admin/leads/"+lead.ID
	})).Return(nil)
	mailer.On("SendLeadConfirmation", ctx, lead.Email, mock.MatchedBy(func(d usecase.LeadConfirmationEmail) bool {
		return d.Name == lead.Name && d.WhatsAppURL != ""
	})).Return(nil)

	uc := usecase.NewNotifyLeadUseCase(store.Leads(), mailer, "admin@edicionpersuasiva.com", "https://crm.example.com/", "5215512345678", nil)
	err := uc.Execute(ctx, usecase.LeadCreatedEvent{LeadID: lead.ID})

	require.NoError(t, err)
	mailer.AssertExpectations(t)
}

func TestNotifyLeadKeepsGoingWhenOneEmailFails(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	lead := seedLead(t, store, entity.LeadStatusLead)
	mailer := new(MockEmailService)
	smtpErr := errors.New("smtp timeout")

	mailer.On("SendLeadSummary", ctx, mock.Anything, mock.Anything).Return(smtpErr)
	mailer.On("SendLeadConfirmation", ctx, lead.Email, mock.Anything).Return(nil)

	uc := usecase.NewNotifyLeadUseCase(store.Leads(), mailer, "admin@edicionpersuasiva.com", "", "", nil)
	err := uc.Execute(ctx, usecase.LeadCreatedEvent{LeadID: lead.ID})

	require.Error(t, err)
	assert.ErrorIs(t, err, smtpErr)
	mailer.AssertCalled(t, "SendLeadConfirmation", ctx, lead.Email, mock.Anything)
}

func TestNotifyLeadUnknownLead(t *testing.T) {
	mailer := new(MockEmailService)
	uc := usecase.NewNotifyLeadUseCase(memory.NewStore().Leads(), mailer, "admin@example.com", "", "", nil)

	err := uc.Execute(context.Background(), usecase.LeadCreatedEvent{LeadID: "missing"})

	assert.Equal(t, usecase.CodeLeadNotFound, domainCode(err))
	mailer.AssertNotCalled(t, "SendLeadSummary", mock.Anything, mock.Anything, mock.Anything)
}
