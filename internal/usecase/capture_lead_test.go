package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edicionpersuasiva/crm/internal/entity"
	"github.com/edicionpersuasiva/crm/internal/infra/memory"
	"github.com/edicionpersuasiva/crm/internal/usecase"
)

func validCaptureInput() usecase.CaptureLeadInput {
	return usecase.CaptureLeadInput{
		Name:        "Ana López",
		Email:       "Ana@Example.com",
		Phone:       "5522838461",
		CountryCode: "+52",
		Role:        "editor",
		Level:       "intermedio",
		Software:    "premiere",
		Clients:     "1-3",
		Investment:  "si",
		Why:         "Quiero vender mejor mis ediciones",
	}
}

func TestCaptureLeadSuccess(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	publisher := new(MockPublisher)
	publisher.On("PublishLeadCreated", ctx, mock.MatchedBy(func(e usecase.LeadCreatedEvent) bool {
		return e.LeadID != "" && e.Origin == "intake_quiz"
	})).Return(nil)

	uc := usecase.NewCaptureLeadUseCase(store.Leads(), publisher, "+52 1 55 1234 5678", nil)
	uc.Now = fixedClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))

	out, err := uc.Execute(ctx, validCaptureInput())

	require.NoError(t, err)
	assert.Equal(t, "lead", out.Status)
	assert.Contains(t, out.WhatsAppURL, "https://wa.me/5215512345678?text=")
	assert.Contains(t, out.WhatsAppURL, "Ana%20L%C3%B3pez")

	lead, err := store.Leads().FindByID(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", lead.Email)
	assert.Equal(t, "+525522838461", lead.Phone)
	assert.Equal(t, entity.LeadStatusLead, lead.Status)
	assert.Empty(t, lead.StatusHistory)
	assert.Equal(t, "si", lead.Investment)
	publisher.AssertExpectations(t)
}

func TestCaptureLeadValidationErrors(t *testing.T) {
	store := memory.NewStore()
	publisher := new(MockPublisher)
	uc := usecase.NewCaptureLeadUseCase(store.Leads(), publisher, "", nil)

	input := validCaptureInput()
	input.Name = "A"
	input.Email = "no-es-email"
	input.Phone = "554589624"
	input.Software = ""

	_, err := uc.Execute(context.Background(), input)

	de, ok := usecase.AsDomainError(err)
	require.True(t, ok)
	assert.Equal(t, usecase.CodeValidation, de.Code)
	fields := map[string]bool{}
	for _, f := range de.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["email"])
	assert.True(t, fields["phone"])
	assert.True(t, fields["software"])
	publisher.AssertNotCalled(t, "PublishLeadCreated", mock.Anything, mock.Anything)
}

func TestCaptureLeadPublisherFailureDoesNotFailIntake(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	publisher := new(MockPublisher)
	publisher.On("PublishLeadCreated", ctx, mock.Anything).Return(errors.New("broker down"))

	uc := usecase.NewCaptureLeadUseCase(store.Leads(), publisher, "5215512345678", nil)
	out, err := uc.Execute(ctx, validCaptureInput())

	require.NoError(t, err)
	_, err = store.Leads().FindByID(ctx, out.ID)
	assert.NoError(t, err)
}

func TestCaptureLeadIgnoresClientStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := usecase.NewCaptureLeadUseCase(store.Leads(), nil, "", nil)

	out, err := uc.Execute(ctx, validCaptureInput())
	require.NoError(t, err)
	assert.Equal(t, string(entity.LeadStatusLead), out.Status)
}

func TestBuildWhatsAppURL(t *testing.T) {
	url := usecase.BuildWhatsAppURL("+52 (55) 1234-5678", "Luis")
	assert.Equal(t, "https://wa.me/525512345678?text=", url[:len("https://wa.me/525512345678?text=")])
	assert.NotContains(t, url, "+")
}
