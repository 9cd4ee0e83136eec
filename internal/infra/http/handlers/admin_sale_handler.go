package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/edicionpersuasiva/crm/internal/entity"
	"github.com/edicionpersuasiva/crm/internal/infra/http/middleware"
	"github.com/edicionpersuasiva/crm/internal/infra/storage"
	"github.com/edicionpersuasiva/crm/internal/usecase"
)

const maxReceiptBytes = 10 << 20

// ReceiptUploader is implemented by *storage.ReceiptStore.
type ReceiptUploader interface {
	Upload(ctx context.Context, saleID, contentType string, body io.Reader, size int64) (string, error)
}

type AdminSaleHandler struct {
	query     *usecase.CRMQueryUseCase
	payments  *usecase.AddPaymentProofUseCase
	exemption *usecase.GrantPaymentExemptionUseCase
	access    *usecase.CourseAccessUseCase
	receipts  ReceiptUploader
	logger    *zap.Logger
}

func NewAdminSaleHandler(
	query *usecase.CRMQueryUseCase,
	payments *usecase.AddPaymentProofUseCase,
	exemption *usecase.GrantPaymentExemptionUseCase,
	access *usecase.CourseAccessUseCase,
	receipts ReceiptUploader,
	logger *zap.Logger,
) *AdminSaleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminSaleHandler{
		query:     query,
		payments:  payments,
		exemption: exemption,
		access:    access,
		receipts:  receipts,
		logger:    logger,
	}
}

type AddPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	ImageURL    string          `json:"imageUrl" validate:"required,url"`
	Description string          `json:"description" validate:"max=500"`
}

type ExemptionRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// AccessRequest accepts the start date as ISO string, date, epoch or
// {seconds, nanoseconds} document.
type AccessRequest struct {
	StartDate entity.Timestamp `json:"startDate"`
	Reason    string           `json:"reason" validate:"max=500"`
}

type ReceiptResponse struct {
	ImageURL string `json:"imageUrl"`
}

func (h *AdminSaleHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := entity.SaleFilter{ActiveOnly: q.Get("active") == "true"}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	if v := q.Get("accessGranted"); v != "" {
		granted, err := strconv.ParseBool(v)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "accessGranted debe ser true o false")
			return
		}
		filter.AccessGranted = &granted
	}

	sales, err := h.query.ListSales(r.Context(), filter)
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (h *AdminSaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	sale, err := h.query.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (h *AdminSaleHandler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var req AddPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sale, err := h.payments.Execute(r.Context(), usecase.AddPaymentProofInput{
		SaleID:      chi.URLParam(r, "id"),
		Amount:      req.Amount,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		PerformedBy: actorEmail(middleware.CurrentUser(r.Context())),
	})
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	middleware.RecordPayment()
	h.respondSale(w, http.StatusCreated, sale)
}

// UploadReceipt stores a receipt file and returns its URL for a later payment.
func (h *AdminSaleHandler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	if h.receipts == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "STORAGE_NOT_CONFIGURED", "el almacenamiento de comprobantes no está configurado")
		return
	}
	saleID := chi.URLParam(r, "id")
	if _, err := h.query.GetSale(r.Context(), saleID); err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxReceiptBytes+1<<10)
	if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
		writeErrorResponse(w, http.StatusRequestEntityTooLarge, usecase.CodeValidation, "el archivo supera los 10 MB")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "adjunta el archivo en el campo file")
		return
	}
	defer file.Close()
	if header.Size > maxReceiptBytes {
		writeErrorResponse(w, http.StatusRequestEntityTooLarge, usecase.CodeValidation, "el archivo supera los 10 MB")
		return
	}

	url, err := h.receipts.Upload(r.Context(), saleID, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			writeErrorResponse(w, http.StatusUnsupportedMediaType, usecase.CodeValidation, err.Error())
			return
		}
		middleware.RecordIntegrationError("s3")
		h.logger.Error("receipt upload failed", zap.String("sale_id", saleID), zap.Error(err))
		writeErrorResponse(w, http.StatusBadGateway, "STORAGE_ERROR", "no se pudo subir el comprobante")
		return
	}
	writeJSON(w, http.StatusCreated, ReceiptResponse{ImageURL: url})
}

func (h *AdminSaleHandler) GrantExemption(w http.ResponseWriter, r *http.Request) {
	var req ExemptionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sale, err := h.exemption.Execute(r.Context(), usecase.GrantExemptionInput{
		SaleID:      chi.URLParam(r, "id"),
		Reason:      req.Reason,
		PerformedBy: actorEmail(middleware.CurrentUser(r.Context())),
	})
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	h.respondSale(w, http.StatusOK, sale)
}

func (h *AdminSaleHandler) GrantAccess(w http.ResponseWriter, r *http.Request) {
	h.changeAccess(w, r, string(entity.ActionAccessGranted), h.access.Grant)
}

func (h *AdminSaleHandler) UpdateAccess(w http.ResponseWriter, r *http.Request) {
	h.changeAccess(w, r, string(entity.ActionAccessUpdated), h.access.Update)
}

// RevokeAccess accepts an optional body with a reason.
func (h *AdminSaleHandler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	var req AccessRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}
	sale, err := h.access.Revoke(r.Context(), usecase.CourseAccessInput{
		SaleID:      chi.URLParam(r, "id"),
		Reason:      req.Reason,
		PerformedBy: actorEmail(middleware.CurrentUser(r.Context())),
	})
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	middleware.RecordAccessChange(string(entity.ActionAccessRevoked))
	h.respondSale(w, http.StatusOK, sale)
}

type accessFunc func(context.Context, usecase.CourseAccessInput) (*entity.Sale, error)

func (h *AdminSaleHandler) changeAccess(w http.ResponseWriter, r *http.Request, action string, apply accessFunc) {
	var req AccessRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sale, err := apply(r.Context(), usecase.CourseAccessInput{
		SaleID:      chi.URLParam(r, "id"),
		StartDate:   req.StartDate.Time,
		Reason:      req.Reason,
		PerformedBy: actorEmail(middleware.CurrentUser(r.Context())),
	})
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	middleware.RecordAccessChange(action)
	h.logger.Info("course access changed",
		zap.String("sale_id", sale.ID),
		zap.String("action", action),
	)
	h.respondSale(w, http.StatusOK, sale)
}

func (h *AdminSaleHandler) respondSale(w http.ResponseWriter, status int, sale *entity.Sale) {
	writeJSON(w, status, usecase.NewSaleView(sale, h.query.Now()))
}
