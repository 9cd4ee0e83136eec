package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateAccessEndDate(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	end := CalculateAccessEndDate(start)
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, end, CalculateAccessEndDate(start), "same input must give same output")

	leap := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 4, 30, 12, 30, 0, 0, time.UTC), CalculateAccessEndDate(leap))
}

func TestSaleIsActiveMember(t *testing.T) {
	tests := []struct {
		name      string
		total     string
		paid      string
		exemption bool
		want      bool
	}{
		{"exactly half", "800", "400", false, true},
		{"one cent below half", "800", "399.99", false, false},
		{"fully paid", "800", "800", false, true},
		{"nothing paid", "800", "0", false, false},
		{"exemption without payment", "800", "0", true, true},
		{"odd total boundary", "750", "375", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Sale{
				TotalAmount:      decimal.RequireFromString(tt.total),
				PaidAmount:       decimal.RequireFromString(tt.paid),
				ExemptionGranted: tt.exemption,
			}
			assert.Equal(t, tt.want, s.IsActiveMember())
		})
	}
}

func TestSaleAccessStatus(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.Equal(t, AccessPending, (&Sale{}).AccessStatus(now))
	assert.Equal(t, AccessPending, (&Sale{AccessEndDate: &future}).AccessStatus(now))
	assert.Equal(t, AccessGrantedNoDate, (&Sale{AccessGranted: true}).AccessStatus(now))
	assert.Equal(t, AccessExpired, (&Sale{AccessGranted: true, AccessEndDate: &past}).AccessStatus(now))
	assert.Equal(t, AccessActive, (&Sale{AccessGranted: true, AccessEndDate: &future}).AccessStatus(now))
	assert.Equal(t, AccessActive, (&Sale{AccessGranted: true, AccessEndDate: &now}).AccessStatus(now), "end date is inclusive")
}

func TestSalePaymentProgress(t *testing.T) {
	s := &Sale{TotalAmount: decimal.NewFromInt(800), PaidAmount: decimal.NewFromInt(200)}
	assert.True(t, decimal.NewFromInt(25).Equal(s.PaymentProgress()))

	s.PaidAmount = decimal.NewFromInt(1000)
	assert.True(t, decimal.NewFromInt(100).Equal(s.PaymentProgress()))
}

func TestFindPaymentPlan(t *testing.T) {
	p, err := FindPaymentPlan(PlanDosPagos)
	assert.NoError(t, err)
	assert.True(t, decimal.NewFromInt(800).Equal(p.Total))

	_, err = FindPaymentPlan("10_pagos")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}
