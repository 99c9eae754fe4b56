package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Sobot/zbor-gradjana/internal/metrics"
	"github.com/Sobot/zbor-gradjana/internal/model"
	"github.com/Sobot/zbor-gradjana/internal/repository"
)

// AssemblyService handles assembly business logic.
type AssemblyService struct {
	store   AssemblyStore
	metrics metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewAssemblyService creates a new AssemblyService.
func NewAssemblyService(store AssemblyStore, recorder metrics.Recorder, logger *slog.Logger) *AssemblyService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AssemblyService{
		store:   store,
		metrics: recorder,
		logger:  loggerOrDefault(logger),
		now:     clockOrDefault(nil),
	}
}

// AssemblyInput defines input for creating an assembly.
type AssemblyInput struct {
	Name        string
	ScheduledAt time.Time
	Location    string
	Boundary    *model.Polygon
	Point       *model.Point
}

// AssemblyPatch defines a partial update. Nil fields are left unchanged.
type AssemblyPatch struct {
	Name          *string
	ScheduledAt   *time.Time
	Location      *string
	Boundary      *model.Polygon
	ClearBoundary bool // explicit null in the request
	Point         *model.Point
}

// List returns assemblies newest first, optionally restricted to one owner.
func (s *AssemblyService) List(ctx context.Context, filter model.AssemblyFilter) ([]*model.Assembly, error) {
	list, err := s.store.ListAssemblies(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list assemblies: %w", err)
	}
	return list, nil
}

// Create stores a new assembly owned by callerID.
func (s *AssemblyService) Create(ctx context.Context, callerID string, in AssemblyInput) (*model.Assembly, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}

	a := &model.Assembly{
		Name:        in.Name,
		ScheduledAt: in.ScheduledAt,
		Location:    in.Location,
		Boundary:    in.Boundary,
	}
	if in.Point != nil {
		a.Point = *in.Point
	}
	if err := validateAssembly(a, in.Point != nil); err != nil {
		return nil, err
	}

	a.ID = newID()
	a.UserID = callerID
	a.CreatedAt = storedTime(s.now())

	if err := s.store.CreateAssembly(ctx, a); err != nil {
		return nil, fmt.Errorf("create assembly: %w", err)
	}

	s.metrics.IncRecordCreated(metrics.KindAssembly)
	s.logger.Info("assembly_created",
		slog.String("assembly_id", a.ID),
		slog.String("user_id", callerID),
	)
	return a, nil
}

// Update applies patch to the assembly with the given id.
func (s *AssemblyService) Update(ctx context.Context, callerID, id string, patch AssemblyPatch) (*model.Assembly, error) {
	a, err := s.authorize(ctx, callerID, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.ScheduledAt != nil {
		a.ScheduledAt = *patch.ScheduledAt
	}
	if patch.Location != nil {
		a.Location = *patch.Location
	}
	if patch.ClearBoundary {
		a.Boundary = nil
	} else if patch.Boundary != nil {
		a.Boundary = patch.Boundary
	}
	if patch.Point != nil {
		a.Point = *patch.Point
	}
	if err := validateAssembly(a, true); err != nil {
		return nil, err
	}

	if err := s.store.UpdateAssembly(ctx, a); err != nil {
		if errors.Is(err, repository.ErrAssemblyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update assembly: %w", err)
	}

	s.metrics.IncRecordUpdated(metrics.KindAssembly)
	s.logger.Info("assembly_updated",
		slog.String("assembly_id", a.ID),
		slog.String("user_id", callerID),
	)
	return a, nil
}

// Delete removes the assembly with the given id.
func (s *AssemblyService) Delete(ctx context.Context, callerID, id string) error {
	if _, err := s.authorize(ctx, callerID, id); err != nil {
		return err
	}

	if err := s.store.DeleteAssembly(ctx, id); err != nil {
		if errors.Is(err, repository.ErrAssemblyNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete assembly: %w", err)
	}

	s.metrics.IncRecordDeleted(metrics.KindAssembly)
	s.logger.Info("assembly_deleted",
		slog.String("assembly_id", id),
		slog.String("user_id", callerID),
	)
	return nil
}

// Authorize runs the checks of Update and Delete without modifying the
// assembly.
func (s *AssemblyService) Authorize(ctx context.Context, callerID, id string) error {
	_, err := s.authorize(ctx, callerID, id)
	return err
}

// authorize loads the assembly and checks the caller owns it.
func (s *AssemblyService) authorize(ctx context.Context, callerID, id string) (*model.Assembly, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}

	a, err := s.store.GetAssemblyByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAssemblyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get assembly: %w", err)
	}

	if !a.IsOwnedBy(callerID) {
		s.metrics.IncAuthorizationDenied(metrics.KindAssembly)
		s.logger.Warn("assembly_access_denied",
			slog.String("assembly_id", id),
			slog.String("user_id", callerID),
		)
		return nil, ErrUnauthorized
	}
	return a, nil
}

// validateAssembly normalizes text fields in place and checks a.
func validateAssembly(a *model.Assembly, hasPoint bool) error {
	name, err := requireText("name", a.Name, model.MaxNameLength)
	if err != nil {
		return err
	}
	a.Name = name

	if a.ScheduledAt.IsZero() {
		return invalid("scheduled_at is required")
	}
	a.ScheduledAt = storedTime(a.ScheduledAt)

	a.Location = strings.TrimSpace(a.Location)
	if utf8.RuneCountInString(a.Location) > model.MaxLocationLength {
		return invalid("location must be at most %d characters", model.MaxLocationLength)
	}

	if !hasPoint {
		return invalid("point is required")
	}
	if err := a.Point.Validate(); err != nil {
		return invalid("point: %v", err)
	}

	if a.Boundary != nil {
		if err := a.Boundary.Validate(); err != nil {
			return invalid("boundary: %v", err)
		}
	}
	return nil
}
