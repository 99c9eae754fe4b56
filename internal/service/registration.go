package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Sobot/zbor-gradjana/internal/geocode"
	"github.com/Sobot/zbor-gradjana/internal/metrics"
	"github.com/Sobot/zbor-gradjana/internal/model"
	"github.com/Sobot/zbor-gradjana/internal/repository"
)

// Registration workflow stages, used in logs and failure metrics.
const (
	StageIdle       = "idle"
	StageResolving  = "resolving"
	StagePersisting = "persisting"
)

// RegistrationService handles registration business logic. Every stored
// registration carries a point resolved from its address.
type RegistrationService struct {
	store    RegistrationStore
	resolver geocode.Resolver
	metrics  metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(store RegistrationStore, resolver geocode.Resolver, recorder metrics.Recorder, logger *slog.Logger) *RegistrationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if resolver == nil {
		resolver = geocode.Disabled{}
	}
	return &RegistrationService{
		store:    store,
		resolver: resolver,
		metrics:  recorder,
		logger:   loggerOrDefault(logger),
		now:      clockOrDefault(nil),
	}
}

// RegistrationInput defines input for creating a registration.
type RegistrationInput struct {
	Name         string
	Municipality string
	StreetName   string
	StreetNumber string
}

// RegistrationPatch defines a partial update. Nil fields are left unchanged.
type RegistrationPatch struct {
	Name         *string
	Municipality *string
	StreetName   *string
	StreetNumber *string
}

// List returns registrations newest first, optionally restricted to one
// owner. Names are cleared on records the caller does not own.
func (s *RegistrationService) List(ctx context.Context, callerID string, filter model.RegistrationFilter) ([]*model.Registration, error) {
	list, err := s.store.ListRegistrations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	for _, r := range list {
		if !r.NameVisibleTo(callerID) {
			r.Name = ""
		}
	}
	return list, nil
}

// Create resolves the address and stores a new registration owned by
// callerID. Nothing is written unless resolution succeeds.
func (s *RegistrationService) Create(ctx context.Context, callerID string, in RegistrationInput) (*model.Registration, error) {
	log := s.logger.With(slog.String("user_id", callerID))
	log.Debug("registration_stage", slog.String("stage", StageIdle))

	if callerID == "" {
		s.fail(log, StageIdle, ErrUnauthorized)
		return nil, ErrUnauthorized
	}

	reg := &model.Registration{
		Name:         in.Name,
		Municipality: in.Municipality,
		StreetName:   in.StreetName,
		StreetNumber: in.StreetNumber,
	}
	if err := validateRegistration(reg); err != nil {
		s.fail(log, StageIdle, err)
		return nil, err
	}

	log.Debug("registration_stage", slog.String("stage", StageResolving))
	point, err := s.resolve(ctx, reg.Address())
	if err != nil {
		s.fail(log, StageResolving, err)
		return nil, err
	}

	reg.ID = newID()
	reg.Point = point
	reg.UserID = callerID
	reg.CreatedAt = storedTime(s.now())

	log.Debug("registration_stage", slog.String("stage", StagePersisting))
	if err := s.store.CreateRegistration(ctx, reg); err != nil {
		s.fail(log, StagePersisting, err)
		return nil, fmt.Errorf("create registration: %w", err)
	}

	s.metrics.IncRecordCreated(metrics.KindRegistration)
	log.Info("registration_created", slog.String("registration_id", reg.ID))
	return reg, nil
}

// Update applies patch to the registration with the given id. A changed
// address is resolved again before anything is written.
func (s *RegistrationService) Update(ctx context.Context, callerID, id string, patch RegistrationPatch) (*model.Registration, error) {
	reg, err := s.authorize(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	before := reg.Address()

	if patch.Name != nil {
		reg.Name = *patch.Name
	}
	if patch.Municipality != nil {
		reg.Municipality = *patch.Municipality
	}
	if patch.StreetName != nil {
		reg.StreetName = *patch.StreetName
	}
	if patch.StreetNumber != nil {
		reg.StreetNumber = *patch.StreetNumber
	}
	if err := validateRegistration(reg); err != nil {
		return nil, err
	}

	if reg.Address() != before {
		point, err := s.resolve(ctx, reg.Address())
		if err != nil {
			s.fail(s.logger.With(slog.String("user_id", callerID)), StageResolving, err)
			return nil, err
		}
		reg.Point = point
	}

	if err := s.store.UpdateRegistration(ctx, reg); err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update registration: %w", err)
	}

	s.metrics.IncRecordUpdated(metrics.KindRegistration)
	s.logger.Info("registration_updated",
		slog.String("registration_id", reg.ID),
		slog.String("user_id", callerID),
	)
	return reg, nil
}

// Delete removes the registration with the given id.
func (s *RegistrationService) Delete(ctx context.Context, callerID, id string) error {
	if _, err := s.authorize(ctx, callerID, id); err != nil {
		return err
	}

	if err := s.store.DeleteRegistration(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete registration: %w", err)
	}

	s.metrics.IncRecordDeleted(metrics.KindRegistration)
	s.logger.Info("registration_deleted",
		slog.String("registration_id", id),
		slog.String("user_id", callerID),
	)
	return nil
}

// Authorize reports whether callerID may change the registration with the
// given id, without modifying it.
func (s *RegistrationService) Authorize(ctx context.Context, callerID, id string) error {
	_, err := s.authorize(ctx, callerID, id)
	return err
}

func (s *RegistrationService) authorize(ctx context.Context, callerID, id string) (*model.Registration, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}

	reg, err := s.store.GetRegistrationByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}

	if !reg.IsOwnedBy(callerID) {
		s.metrics.IncAuthorizationDenied(metrics.KindRegistration)
		s.logger.Warn("registration_access_denied",
			slog.String("registration_id", id),
			slog.String("user_id", callerID),
		)
		return nil, ErrUnauthorized
	}
	return reg, nil
}

// resolve calls the resolver and records the outcome.
func (s *RegistrationService) resolve(ctx context.Context, addr model.Address) (model.Point, error) {
	start := time.Now()
	point, err := s.resolver.Resolve(ctx, addr)
	s.metrics.ObserveGeocodeDuration(time.Since(start))
	s.metrics.IncGeocodeLookup(geocode.Outcome(err))
	if err != nil {
		return model.Point{}, fmt.Errorf("resolve address: %w", err)
	}
	return point, nil
}

func (s *RegistrationService) fail(log *slog.Logger, stage string, err error) {
	s.metrics.IncRegistrationFailed(stage)
	level := slog.LevelInfo
	if stage == StagePersisting {
		level = slog.LevelError
	}
	log.Log(context.Background(), level, "registration_failed",
		slog.String("stage", stage),
		slog.String("error", err.Error()),
	)
}

// validateRegistration normalizes text fields in place and checks r.
func validateRegistration(r *model.Registration) error {
	var err error
	if r.Name, err = requireText("name", r.Name, model.MaxNameLength); err != nil {
		return err
	}
	if r.Municipality, err = requireText("municipality", r.Municipality, model.MaxAddressLength); err != nil {
		return err
	}
	if r.StreetName, err = requireText("street_name", r.StreetName, model.MaxAddressLength); err != nil {
		return err
	}
	if r.StreetNumber, err = requireText("street_number", r.StreetNumber, model.MaxAddressLength); err != nil {
		return err
	}
	return nil
}
