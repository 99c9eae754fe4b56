// Package model defines domain entities for the application.
package model

import "time"

// Field limits shared by validation and storage.
const (
	MaxNameLength     = 200
	MaxLocationLength = 500
	MaxAddressLength  = 200
)

// Assembly is a scheduled neighborhood gathering owned by the user who created it.
type Assembly struct {
	ID          string
	Name        string
	ScheduledAt time.Time
	Location    string
	Boundary    *Polygon
	Point       Point
	UserID      string
	OwnerName   string // read-only, joined from users
	CreatedAt   time.Time
}

// IsOwnedBy reports whether userID owns the assembly.
func (a *Assembly) IsOwnedBy(userID string) bool {
	return userID != "" && a.UserID == userID
}

// AssemblyFilter restricts assembly listings.
type AssemblyFilter struct {
	UserID string
}
