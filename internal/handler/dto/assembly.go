package dto

import (
	"encoding/json"
	"time"

	"github.com/Sobot/zbor-gradjana/internal/model"
)

// AssemblyRequest is the body of POST and PATCH /api/v1/assemblies.
// On PATCH, absent fields are left unchanged and "boundary": null removes
// the boundary.
type AssemblyRequest struct {
	ServerFields
	OwnerName json.RawMessage `json:"owner_name,omitempty"`

	Name        *string         `json:"name"`
	ScheduledAt *time.Time      `json:"scheduled_at"`
	Location    *string         `json:"location"`
	Boundary    json.RawMessage `json:"boundary"`
	Point       *Point          `json:"point"`
}

// AssemblyResponse represents an assembly in API responses.
type AssemblyResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ScheduledAt time.Time      `json:"scheduled_at"`
	Location    string         `json:"location"`
	Boundary    *model.Polygon `json:"boundary"`
	Point       Point          `json:"point"`
	UserID      string         `json:"user_id"`
	OwnerName   string         `json:"owner_name"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AssemblyListResponse wraps a list of assemblies.
type AssemblyListResponse struct {
	Data []AssemblyResponse `json:"data"`
}

// ToAssemblyResponse converts an Assembly model to its DTO.
func ToAssemblyResponse(a *model.Assembly) AssemblyResponse {
	return AssemblyResponse{
		ID:          a.ID,
		Name:        a.Name,
		ScheduledAt: a.ScheduledAt,
		Location:    a.Location,
		Boundary:    a.Boundary,
		Point:       FromPoint(a.Point),
		UserID:      a.UserID,
		OwnerName:   a.OwnerName,
		CreatedAt:   a.CreatedAt,
	}
}

// ToAssemblyListResponse converts a list of assemblies.
func ToAssemblyListResponse(list []*model.Assembly) AssemblyListResponse {
	out := AssemblyListResponse{Data: make([]AssemblyResponse, 0, len(list))}
	for _, a := range list {
		out.Data = append(out.Data, ToAssemblyResponse(a))
	}
	return out
}
