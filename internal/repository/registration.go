package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Sobot/zbor-gradjana/internal/model"
)

// ErrRegistrationNotFound is returned when no registration has the requested id.
var ErrRegistrationNotFound = errors.New("registration not found")

// CreateRegistration inserts a registration. Callers must have resolved the point.
func (r *Repository) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	query := `
		INSERT INTO registrations (id, name, municipality, street_name, street_number, latitude, longitude, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		reg.ID,
		reg.Name,
		reg.Municipality,
		reg.StreetName,
		reg.StreetNumber,
		reg.Point.Lat,
		reg.Point.Lng,
		reg.UserID,
		reg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create registration: %w", err)
	}

	return nil
}

// GetRegistrationByID retrieves a registration by its ID.
func (r *Repository) GetRegistrationByID(ctx context.Context, id string) (*model.Registration, error) {
	query := `
		SELECT id, name, municipality, street_name, street_number, latitude, longitude, user_id, created_at
		FROM registrations
		WHERE id = $1
	`

	reg, err := scanRegistration(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration by ID: %w", err)
	}

	return reg, nil
}

// ListRegistrations returns registrations newest first, optionally restricted to one owner.
func (r *Repository) ListRegistrations(ctx context.Context, filter model.RegistrationFilter) ([]*model.Registration, error) {
	query := `
		SELECT id, name, municipality, street_name, street_number, latitude, longitude, user_id, created_at
		FROM registrations
	`
	var args []any
	if filter.UserID != "" {
		query += " WHERE user_id = $1"
		args = append(args, filter.UserID)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]*model.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		registrations = append(registrations, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registrations: %w", err)
	}

	return registrations, nil
}

// UpdateRegistration writes the mutable fields of a registration.
func (r *Repository) UpdateRegistration(ctx context.Context, reg *model.Registration) error {
	query := `
		UPDATE registrations
		SET name = $2, municipality = $3, street_name = $4, street_number = $5, latitude = $6, longitude = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		reg.ID,
		reg.Name,
		reg.Municipality,
		reg.StreetName,
		reg.StreetNumber,
		reg.Point.Lat,
		reg.Point.Lng,
	)
	if err != nil {
		return fmt.Errorf("failed to update registration: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}

// DeleteRegistration removes a registration.
func (r *Repository) DeleteRegistration(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrRegistrationNotFound
	}

	return nil
}

func scanRegistration(row pgx.Row) (*model.Registration, error) {
	var reg model.Registration
	err := row.Scan(
		&reg.ID,
		&reg.Name,
		&reg.Municipality,
		&reg.StreetName,
		&reg.StreetNumber,
		&reg.Point.Lat,
		&reg.Point.Lng,
		&reg.UserID,
		&reg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}
