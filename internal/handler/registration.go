package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sobot/zbor-gradjana/internal/auth"
	"github.com/Sobot/zbor-gradjana/internal/handler/dto"
	"github.com/Sobot/zbor-gradjana/internal/model"
	"github.com/Sobot/zbor-gradjana/internal/service"
)

// RegistrationHandler handles registration HTTP requests.
type RegistrationHandler struct {
	service *service.RegistrationService
	logger  *slog.Logger
}

// NewRegistrationHandler creates a new RegistrationHandler.
func NewRegistrationHandler(svc *service.RegistrationService, logger *slog.Logger) *RegistrationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistrationHandler{service: svc, logger: logger}
}

// List handles GET /api/v1/registrations.
// Registrant names are only included on the caller's own records.
func (h *RegistrationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.RegistrationFilter{UserID: r.URL.Query().Get("user_id")}

	list, err := h.service.List(r.Context(), auth.UserIDFromContext(r.Context()), filter)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRegistrationListResponse(list))
}

// Create handles POST /api/v1/registrations.
// The address is resolved before anything is stored.
func (h *RegistrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserIDFromContext(r.Context())
	if callerID == "" {
		handleServiceError(w, r, h.logger, service.ErrUnauthorized)
		return
	}

	var req dto.RegistrationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	reg, err := h.service.Create(r.Context(), callerID, service.RegistrationInput{
		Name:         deref(req.Name),
		Municipality: deref(req.Municipality),
		StreetName:   deref(req.StreetName),
		StreetNumber: deref(req.StreetNumber),
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToRegistrationResponse(reg))
}

// Update handles PATCH /api/v1/registrations/{id}.
// Ownership is checked before the body is read.
func (h *RegistrationHandler) Update(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserIDFromContext(r.Context())
	id := recordID(r, chi.URLParam(r, "id"))
	if err := h.service.Authorize(r.Context(), callerID, id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	var req dto.RegistrationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	reg, err := h.service.Update(r.Context(), callerID, id, service.RegistrationPatch{
		Name:         req.Name,
		Municipality: req.Municipality,
		StreetName:   req.StreetName,
		StreetNumber: req.StreetNumber,
	})
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRegistrationResponse(reg))
}

// Delete handles DELETE /api/v1/registrations/{id} and DELETE /api/v1/registrations?id=.
func (h *RegistrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := recordID(r, chi.URLParam(r, "id"))
	if err := h.service.Delete(r.Context(), auth.UserIDFromContext(r.Context()), id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DeleteResponse{Success: true})
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
