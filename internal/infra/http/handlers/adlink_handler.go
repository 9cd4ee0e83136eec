package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/edicionpersuasiva/crm/internal/infra/http/middleware"
	"github.com/edicionpersuasiva/crm/internal/usecase"
)

type AdLinkHandler struct {
	links  *usecase.AdLinkUseCase
	logger *zap.Logger
}

func NewAdLinkHandler(links *usecase.AdLinkUseCase, logger *zap.Logger) *AdLinkHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdLinkHandler{links: links, logger: logger}
}

type CreateAdLinkRequest struct {
	Slug        string `json:"slug" validate:"required"`
	Destination string `json:"destination" validate:"required"`
	Source      string `json:"source" validate:"max=100"`
	Medium      string `json:"medium" validate:"max=100"`
	Campaign    string `json:"campaign" validate:"max=100"`
}

func (h *AdLinkHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.links.List(r.Context())
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (h *AdLinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAdLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	link, err := h.links.Create(r.Context(), usecase.CreateAdLinkInput{
		Slug:        req.Slug,
		Destination: req.Destination,
		Source:      req.Source,
		Medium:      req.Medium,
		Campaign:    req.Campaign,
		CreatedBy:   actorEmail(middleware.CurrentUser(r.Context())),
	})
	if err != nil {
		writeUseCaseError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

// Redirect counts the click and sends the visitor to the tagged destination.
func (h *AdLinkHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	target, err := h.links.Resolve(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if de, ok := usecase.AsDomainError(err); ok && de.Code == usecase.CodeAdLinkNotFound {
			http.NotFound(w, r)
			return
		}
		writeUseCaseError(w, h.logger, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
