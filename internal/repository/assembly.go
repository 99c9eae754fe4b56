package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Sobot/zbor-gradjana/internal/model"
)

// ErrAssemblyNotFound is returned when no assembly has the requested id.
var ErrAssemblyNotFound = errors.New("assembly not found")

const assemblyColumns = `a.id, a.name, a.scheduled_at, a.location, a.boundary, a.latitude, a.longitude,
		a.user_id, COALESCE(u.name, ''), a.created_at`

// CreateAssembly inserts a new assembly and fills in the owner's display name.
func (r *Repository) CreateAssembly(ctx context.Context, a *model.Assembly) error {
	boundary, err := encodeBoundary(a.Boundary)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO assemblies (id, name, scheduled_at, location, boundary, latitude, longitude, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING COALESCE((SELECT name FROM users WHERE id = $8), '')
	`

	err = r.pool.QueryRow(ctx, query,
		a.ID,
		a.Name,
		a.ScheduledAt,
		a.Location,
		boundary,
		a.Point.Lat,
		a.Point.Lng,
		a.UserID,
		a.CreatedAt,
	).Scan(&a.OwnerName)
	if err != nil {
		return fmt.Errorf("failed to create assembly: %w", err)
	}

	return nil
}

// GetAssemblyByID retrieves an assembly by its ID.
func (r *Repository) GetAssemblyByID(ctx context.Context, id string) (*model.Assembly, error) {
	query := `
		SELECT ` + assemblyColumns + `
		FROM assemblies a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.id = $1
	`

	a, err := scanAssembly(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAssemblyNotFound
		}
		return nil, fmt.Errorf("failed to get assembly by ID: %w", err)
	}

	return a, nil
}

// ListAssemblies returns assemblies newest first, optionally restricted to one owner.
func (r *Repository) ListAssemblies(ctx context.Context, filter model.AssemblyFilter) ([]*model.Assembly, error) {
	query := `
		SELECT ` + assemblyColumns + `
		FROM assemblies a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE TRUE
	`
	args := []any{}
	argIndex := 1

	if filter.UserID != "" {
		query += fmt.Sprintf(" AND a.user_id = $%d", argIndex)
		args = append(args, filter.UserID)
		argIndex++
	}

	query += " ORDER BY a.created_at DESC, a.id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assemblies: %w", err)
	}
	defer rows.Close()

	assemblies := make([]*model.Assembly, 0)
	for rows.Next() {
		a, err := scanAssembly(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assembly: %w", err)
		}
		assemblies = append(assemblies, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assemblies: %w", err)
	}

	return assemblies, nil
}

// UpdateAssembly writes the mutable fields of an assembly. Owner and
// creation time are never touched.
func (r *Repository) UpdateAssembly(ctx context.Context, a *model.Assembly) error {
	boundary, err := encodeBoundary(a.Boundary)
	if err != nil {
		return err
	}

	query := `
		UPDATE assemblies
		SET name = $2, scheduled_at = $3, location = $4, boundary = $5, latitude = $6, longitude = $7
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		a.ID,
		a.Name,
		a.ScheduledAt,
		a.Location,
		boundary,
		a.Point.Lat,
		a.Point.Lng,
	)
	if err != nil {
		return fmt.Errorf("failed to update assembly: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAssemblyNotFound
	}

	return nil
}

// DeleteAssembly removes an assembly.
func (r *Repository) DeleteAssembly(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM assemblies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assembly: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAssemblyNotFound
	}

	return nil
}

func scanAssembly(row pgx.Row) (*model.Assembly, error) {
	var (
		a        model.Assembly
		boundary []byte
	)
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.ScheduledAt,
		&a.Location,
		&boundary,
		&a.Point.Lat,
		&a.Point.Lng,
		&a.UserID,
		&a.OwnerName,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if boundary != nil {
		var p model.Polygon
		if err := json.Unmarshal(boundary, &p); err != nil {
			return nil, fmt.Errorf("decode boundary: %w", err)
		}
		a.Boundary = &p
	}

	return &a, nil
}

// encodeBoundary returns the JSONB payload for a boundary, or nil for NULL.
func encodeBoundary(p *model.Polygon) ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode boundary: %w", err)
	}
	return data, nil
}
