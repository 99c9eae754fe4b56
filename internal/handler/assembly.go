package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sobot/zbor-gradjana/internal/auth"
	"github.com/Sobot/zbor-gradjana/internal/handler/dto"
	"github.com/Sobot/zbor-gradjana/internal/model"
	"github.com/Sobot/zbor-gradjana/internal/service"
)

// AssemblyHandler handles assembly HTTP requests.
type AssemblyHandler struct {
	service *service.AssemblyService
	logger  *slog.Logger
}

// NewAssemblyHandler creates a new AssemblyHandler.
func NewAssemblyHandler(svc *service.AssemblyService, logger *slog.Logger) *AssemblyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssemblyHandler{service: svc, logger: logger}
}

// List handles GET /api/v1/assemblies.
func (h *AssemblyHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := model.AssemblyFilter{UserID: r.URL.Query().Get("user_id")}

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAssemblyListResponse(list))
}

// Create handles POST /api/v1/assemblies.
func (h *AssemblyHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserIDFromContext(r.Context())
	if callerID == "" {
		handleServiceError(w, r, h.logger, service.ErrUnauthorized)
		return
	}

	var req dto.AssemblyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	boundary, _, err := decodeBoundary(req.Boundary)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid boundary: "+err.Error())
		return
	}

	in := service.AssemblyInput{
		Boundary: boundary,
		Point:    req.Point.ToModel(),
	}
	if req.Name != nil {
		in.Name = *req.Name
	}
	if req.ScheduledAt != nil {
		in.ScheduledAt = *req.ScheduledAt
	}
	if req.Location != nil {
		in.Location = *req.Location
	}

	a, err := h.service.Create(r.Context(), callerID, in)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToAssemblyResponse(a))
}

// Update handles PATCH /api/v1/assemblies/{id}.
// Ownership is checked before the body is read.
func (h *AssemblyHandler) Update(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserIDFromContext(r.Context())
	id := recordID(r, chi.URLParam(r, "id"))
	if err := h.service.Authorize(r.Context(), callerID, id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	var req dto.AssemblyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	boundary, clear, err := decodeBoundary(req.Boundary)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid boundary: "+err.Error())
		return
	}

	patch := service.AssemblyPatch{
		Name:          req.Name,
		ScheduledAt:   req.ScheduledAt,
		Location:      req.Location,
		Boundary:      boundary,
		ClearBoundary: clear,
		Point:         req.Point.ToModel(),
	}

	a, err := h.service.Update(r.Context(), callerID, id, patch)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAssemblyResponse(a))
}

// Delete handles DELETE /api/v1/assemblies/{id} and DELETE /api/v1/assemblies?id=.
func (h *AssemblyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := recordID(r, chi.URLParam(r, "id"))
	if err := h.service.Delete(r.Context(), auth.UserIDFromContext(r.Context()), id); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DeleteResponse{Success: true})
}

// decodeBoundary distinguishes an absent boundary from an explicit null.
// clear is true only for null.
func decodeBoundary(raw json.RawMessage) (p *model.Polygon, clear bool, err error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, true, nil
	}
	var poly model.Polygon
	if err := json.Unmarshal(raw, &poly); err != nil {
		return nil, false, err
	}
	return &poly, false, nil
}
