package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/edicionpersuasiva/crm/internal/infra/http/middleware"
	"github.com/edicionpersuasiva/crm/internal/usecase"
)

type AdminLeadHandler struct {
	query      *usecase.CRMQueryUseCase
	update     *usecase.UpdateLeadUseCase
	createSale *usecase.CreateSaleUseCase
	logger     *zap.Logger
}

func NewAdminLeadHandler(
	query *usecase.CRMQueryUseCase,
	update *usecase.UpdateLeadUseCase,
	createSale *usecase.CreateSaleUseCase,
	logger *zap.Logger,
) *AdminLeadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminLeadHandler{query: query, update: update, createSale: createSale, logger: logger}
}

type PatchLeadRequest struct {
	Status     *string `json:"status" validate:"omitempty,oneof=lead onboarding sale rejected"`
	Notes      *string `json:"notes" validate:"omitempty,max=5000"`
	AssignedTo *string `json:"assignedTo" validate:"omitempty,max=200"`
	Details    string  `json:"details" validate:"max=500"`
}

type CreateSaleRequest struct {
	Product     string           `json:"product" validate:"required"`
	PaymentPlan string           `json:"paymentPlan" validate:"required"`
	TotalAmount *decimal.Decimal `json:"totalAmount"`
}

func (h *AdminLeadHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	leads, err := h.query.ListLeads(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *AdminLeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.query.GetLead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *AdminLeadHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var req PatchLeadRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	actor := middleware.CurrentUser(r.Context())
	lead, err := h.update.Execute(r.Context(), usecase.UpdateLeadInput{
		LeadID:      chi.URLParam(r, "id"),
		Status:      req.Status,
		Notes:       req.Notes,
		AssignedTo:  req.AssignedTo,
		Details:     req.Details,
		PerformedBy: actorEmail(actor),
	})
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	if req.Status != nil {
		middleware.RecordLeadStatusChange(string(lead.Status), "admin")
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *AdminLeadHandler) CreateSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	actor := middleware.CurrentUser(r.Context())
	sale, err := h.createSale.Execute(r.Context(), usecase.CreateSaleInput{
		LeadID:      chi.URLParam(r, "id"),
		Product:     req.Product,
		PaymentPlan: req.PaymentPlan,
		TotalAmount: req.TotalAmount,
		SaleUserID:  actorUID(actor),
		PerformedBy: actorEmail(actor),
	})
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	middleware.RecordSaleCreated(string(sale.PaymentPlan))

	h.logger.Info("sale created",
		zap.String("sale_id", sale.ID),
		zap.String("lead_id", sale.LeadID),
		zap.String("plan", string(sale.PaymentPlan)),
		zap.String("total", sale.TotalAmount.StringFixed(2)),
	)
	writeJSON(w, http.StatusCreated, usecase.NewSaleView(sale, h.query.Now()))
}
