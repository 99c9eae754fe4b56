// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Sobot/zbor-gradjana/internal/geocode"
	"github.com/Sobot/zbor-gradjana/internal/handler/dto"
	"github.com/Sobot/zbor-gradjana/internal/middleware"
	"github.com/Sobot/zbor-gradjana/internal/service"
)

// Version is reported by the root endpoint.
var Version = "dev"

// Handler serves the root, 404 and 405 responses.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Index describes the service.
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "zbor-gradjana",
		"version": Version,
	})
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

var errBodyTooLarge = errors.New("request body too large")

// decodeJSON decodes a single JSON object into dst, rejecting unknown
// fields and trailing data.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected data after JSON object")
	}
	return nil
}

// writeDecodeError maps a decodeJSON failure to a response.
func writeDecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "INVALID_JSON", "invalid request body: "+err.Error())
}

// handleServiceError maps service and resolver errors to responses.
// Unexpected errors are logged and reported without detail.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "record not found")
	case errors.Is(err, service.ErrMissingID):
		writeError(w, http.StatusBadRequest, "MISSING_ID", "id is required")
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
	case errors.Is(err, geocode.ErrAddressNotFound):
		writeError(w, http.StatusUnprocessableEntity, "ADDRESS_NOT_FOUND", "address could not be found")
	case errors.Is(err, geocode.ErrResolverUnavailable):
		logger.Warn("geocoder_unavailable",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusServiceUnavailable, "RESOLVER_UNAVAILABLE", "address lookup is temporarily unavailable")
	default:
		logger.Error("internal_error",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
	}
}

// recordID returns the id from the path, falling back to ?id=.
func recordID(r *http.Request, pathID string) string {
	if pathID != "" {
		return pathID
	}
	return r.URL.Query().Get("id")
}
