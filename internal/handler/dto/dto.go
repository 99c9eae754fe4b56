// Package dto provides Data Transfer Objects for API requests and responses.
//
// Request types list every accepted field. Server-controlled fields are
// accepted and ignored so clients can send back what they received.
package dto

import (
	"encoding/json"

	"github.com/Sobot/zbor-gradjana/internal/model"
)

// Point is a coordinate pair.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ToModel converts the DTO to a model point.
func (p *Point) ToModel() *model.Point {
	if p == nil {
		return nil
	}
	return &model.Point{Lat: p.Lat, Lng: p.Lng}
}

// FromPoint converts a model point.
func FromPoint(p model.Point) Point {
	return Point{Lat: p.Lat, Lng: p.Lng}
}

// ServerFields are read-only fields present in responses. They may appear
// in requests and are ignored.
type ServerFields struct {
	ID        json.RawMessage `json:"id,omitempty"`
	UserID    json.RawMessage `json:"user_id,omitempty"`
	CreatedAt json.RawMessage `json:"created_at,omitempty"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// DeleteResponse is returned by successful deletes.
type DeleteResponse struct {
	Success bool `json:"success"`
}
