package entity

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrPlanNotFound = errors.New("plan de pago no encontrado")

type PaymentPlanID string

const (
	PlanContado       PaymentPlanID = "contado"
	PlanDosPagos      PaymentPlanID = "2_pagos"
	PlanTresPagos     PaymentPlanID = "3_pagos"
	PlanPersonalizado PaymentPlanID = "personalizado"
)

type PaymentPlan struct {
	ID           PaymentPlanID   `json:"id"`
	Name         string          `json:"name"`
	Installments int             `json:"installments"`
	Total        decimal.Decimal `json:"total"`
}

var paymentPlans = map[PaymentPlanID]PaymentPlan{
	PlanContado:       {ID: PlanContado, Name: "Pago único", Installments: 1, Total: decimal.NewFromInt(750)},
	PlanDosPagos:      {ID: PlanDosPagos, Name: "2 pagos", Installments: 2, Total: decimal.NewFromInt(800)},
	PlanTresPagos:     {ID: PlanTresPagos, Name: "3 pagos", Installments: 3, Total: decimal.NewFromInt(900)},
	PlanPersonalizado: {ID: PlanPersonalizado, Name: "Personalizado", Installments: 1, Total: decimal.Zero},
}

func FindPaymentPlan(id PaymentPlanID) (PaymentPlan, error) {
	p, ok := paymentPlans[id]
	if !ok {
		return PaymentPlan{}, ErrPlanNotFound
	}
	return p, nil
}

func PaymentPlans() []PaymentPlan {
	return []PaymentPlan{
		paymentPlans[PlanContado],
		paymentPlans[PlanDosPagos],
		paymentPlans[PlanTresPagos],
		paymentPlans[PlanPersonalizado],
	}
}
