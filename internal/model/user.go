package model

import "time"

// User is the external identity that owns assemblies and registrations.
// The API never writes users; operator tooling does.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the authenticated caller attached to a request.
// A nil Identity means the caller is anonymous.
type Identity struct {
	UserID string
	Name   string
}
