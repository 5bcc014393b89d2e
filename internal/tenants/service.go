package tenants

import (
	"context"
	"errors"

	"leadzap_backend/internal/scoring"
	"leadzap_backend/platform/apperr"

	"github.com/google/uuid"
)

// SettingsReader is the narrow interface other modules use to resolve a
// tenant's scoring configuration.
type SettingsReader interface {
	EffectiveSettings(ctx context.Context, tenantID uuid.UUID) (Settings, error)
}

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// EffectiveSettings returns the tenant's settings with defaults applied.
func (s *Service) EffectiveSettings(ctx context.Context, tenantID uuid.UUID) (Settings, error) {
	tenant, err := s.repo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Settings{}, apperr.NotFound("tenant not found")
		}
		return Settings{}, err
	}
	return tenant.Settings.applyDefaults(), nil
}

// UpdateSettings replaces the tenant's settings after validating the
// scoring overrides.
func (s *Service) UpdateSettings(ctx context.Context, tenantID uuid.UUID, settings Settings) (Settings, error) {
	if settings.QualificationThreshold < 0 || settings.QualificationThreshold > 100 {
		return Settings{}, apperr.Validation("qualification threshold must be between 0 and 100")
	}
	if table := settings.WeightTable(); table != nil {
		if err := table.Validate(); err != nil {
			return Settings{}, apperr.Validation("invalid weight table").WithDetails(err.Error())
		}
	}

	tenant, err := s.repo.UpdateSettings(ctx, tenantID, settings)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Settings{}, apperr.NotFound("tenant not found")
		}
		return Settings{}, err
	}
	return tenant.Settings.applyDefaults(), nil
}

// EngineFor resolves the scoring engine for a tenant. Unknown tenants get
// the default engine so inbound messages are never dropped on config errors.
func (s *Service) EngineFor(ctx context.Context, tenantID uuid.UUID) *scoring.Engine {
	settings, err := s.EffectiveSettings(ctx, tenantID)
	if err != nil {
		return scoring.New()
	}
	engine, err := settings.Engine()
	if err != nil {
		return scoring.New()
	}
	return engine
}
