package model

import "time"

// Registration records one resident's intent to take part, anchored to a
// resolved street address. Point is always set on stored records.
type Registration struct {
	ID           string
	Name         string
	Municipality string
	StreetName   string
	StreetNumber string
	Point        Point
	UserID       string
	CreatedAt    time.Time
}

// IsOwnedBy reports whether userID owns the registration.
func (r *Registration) IsOwnedBy(userID string) bool {
	return userID != "" && r.UserID == userID
}

// NameVisibleTo reports whether the registrant name may be shown to callerID.
// Only the owner sees it; anonymous callers never do.
func (r *Registration) NameVisibleTo(callerID string) bool {
	return r.IsOwnedBy(callerID)
}

// Address returns the address components used for geocoding.
func (r *Registration) Address() Address {
	return Address{
		StreetName:   r.StreetName,
		StreetNumber: r.StreetNumber,
		Municipality: r.Municipality,
	}
}

// RegistrationFilter restricts registration listings.
type RegistrationFilter struct {
	UserID string
}

// Address is a free-text street address within a municipality.
type Address struct {
	StreetName   string
	StreetNumber string
	Municipality string
}
