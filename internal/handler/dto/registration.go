package dto

import (
	"encoding/json"
	"time"

	"github.com/Sobot/zbor-gradjana/internal/model"
)

// RegistrationRequest is the body of POST and PATCH /api/v1/registrations.
// Coordinates are always resolved from the address; any sent by the client
// are ignored.
type RegistrationRequest struct {
	ServerFields
	Point     json.RawMessage `json:"point,omitempty"`
	Latitude  json.RawMessage `json:"latitude,omitempty"`
	Longitude json.RawMessage `json:"longitude,omitempty"`

	Name         *string `json:"name"`
	Municipality *string `json:"municipality"`
	StreetName   *string `json:"street_name"`
	StreetNumber *string `json:"street_number"`
}

// RegistrationResponse represents a registration in API responses.
// Name is omitted when the caller does not own the record.
type RegistrationResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Municipality string    `json:"municipality"`
	StreetName   string    `json:"street_name"`
	StreetNumber string    `json:"street_number"`
	Point        Point     `json:"point"`
	UserID       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegistrationListResponse wraps a list of registrations.
type RegistrationListResponse struct {
	Data []RegistrationResponse `json:"data"`
}

// ToRegistrationResponse converts a Registration model to its DTO.
func ToRegistrationResponse(r *model.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:           r.ID,
		Name:         r.Name,
		Municipality: r.Municipality,
		StreetName:   r.StreetName,
		StreetNumber: r.StreetNumber,
		Point:        FromPoint(r.Point),
		UserID:       r.UserID,
		CreatedAt:    r.CreatedAt,
	}
}

// ToRegistrationListResponse converts a list of registrations.
func ToRegistrationListResponse(list []*model.Registration) RegistrationListResponse {
	out := RegistrationListResponse{Data: make([]RegistrationResponse, 0, len(list))}
	for _, r := range list {
		out.Data = append(out.Data, ToRegistrationResponse(r))
	}
	return out
}
