// Package service contains lead management business logic.
package service

import (
	"context"
	"errors"

	"leadzap_backend/internal/events"
	"leadzap_backend/internal/leads/domain"
	"leadzap_backend/internal/leads/repository"
	"leadzap_backend/internal/leads/transport"
	"leadzap_backend/platform/apperr"
	"leadzap_backend/platform/phone"

	"github.com/google/uuid"
)

const defaultPageSize = 20

// Repository defines the data access interface needed by the leads service.
type Repository interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	CreateIfAbsent(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, bool, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (repository.Lead, error)
	GetByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (repository.Lead, error)
	List(ctx context.Context, params repository.ListLeadsParams) ([]repository.Lead, int, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status domain.Status, score *int) (repository.Lead, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (repository.DashboardStats, error)
}

type Service struct {
	repo     Repository
	eventBus events.Bus
}

func New(repo Repository, eventBus events.Bus) *Service {
	return &Service{repo: repo, eventBus: eventBus}
}

// Create registers a new lead and publishes LeadCreated.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	req.Phone = phone.NormalizeE164(req.Phone)

	source := domain.Source(req.Source)
	if source == "" {
		source = domain.SourceManual
	}

	params := repository.CreateLeadParams{
		TenantID:       tenantID,
		Name:           req.Name,
		Phone:          req.Phone,
		Source:         source,
		InseridoManual: true,
		Tags:           req.Tags,
	}
	if req.Email != "" {
		params.Email = &req.Email
	}

	lead, created, err := s.repo.CreateIfAbsent(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if !created {
		return transport.LeadResponse{}, apperr.Conflict("lead with this phone already exists")
	}

	s.eventBus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		TenantID:  tenantID,
		Name:      lead.Name,
		Phone:     lead.Phone,
		Source:    string(source),
	})

	return toResponse(lead), nil
}

// GetOrCreateByPhone finds a lead by phone or registers a new one. Used by
// the inbound message flow where unknown numbers become leads automatically.
func (s *Service) GetOrCreateByPhone(ctx context.Context, tenantID uuid.UUID, rawPhone, name string) (transport.LeadResponse, error) {
	normalized := phone.NormalizeE164(rawPhone)

	lead, err := s.repo.GetByPhone(ctx, tenantID, normalized)
	if err == nil {
		return toResponse(lead), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, err
	}

	if name == "" {
		name = normalized
	}
	created, wasCreated, err := s.repo.CreateIfAbsent(ctx, repository.CreateLeadParams{
		TenantID: tenantID,
		Name:     name,
		Phone:    normalized,
		Source:   domain.SourceInboundWhatsApp,
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if !wasCreated {
		// Lost the race to a concurrent insert; fetch the winner.
		lead, err = s.repo.GetByPhone(ctx, tenantID, normalized)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		return toResponse(lead), nil
	}

	s.eventBus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    created.ID,
		TenantID:  tenantID,
		Name:      created.Name,
		Phone:     created.Phone,
		Source:    string(domain.SourceInboundWhatsApp),
	})

	return toResponse(created), nil
}

func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, err
	}
	return toResponse(lead), nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, query transport.ListLeadsQuery) (transport.LeadListResponse, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = defaultPageSize
	}

	params := repository.ListLeadsParams{
		TenantID: tenantID,
		Search:   query.Search,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}
	if query.Status != "" {
		status := domain.Status(query.Status)
		params.Status = &status
	}
	if query.Source != "" {
		source := domain.Source(query.Source)
		params.Source = &source
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, toResponse(lead))
	}

	return transport.LeadListResponse{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (s *Service) Update(ctx context.Context, tenantID, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	params := repository.UpdateLeadParams{
		Name:  req.Name,
		Email: req.Email,
		Tags:  req.Tags,
	}
	if req.Phone != nil {
		normalized := phone.NormalizeE164(*req.Phone)
		params.Phone = &normalized
	}

	lead, err := s.repo.Update(ctx, tenantID, id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, err
	}
	return toResponse(lead), nil
}

func (s *Service) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	err := s.repo.Delete(ctx, tenantID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("lead not found")
	}
	return err
}

// TransitionStatus moves a lead through the automatic status flow, enforcing
// the allowed transitions. A no-op when the lead is already in the target
// status.
func (s *Service) TransitionStatus(ctx context.Context, tenantID, id uuid.UUID, to domain.Status, score *int) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, err
	}

	if lead.Status == to {
		return toResponse(lead), nil
	}
	if !domain.CanTransition(lead.Status, to) {
		return transport.LeadResponse{}, apperr.Conflict("invalid status transition").
			WithDetails(map[string]string{"from": string(lead.Status), "to": string(to)})
	}

	updated, err := s.repo.UpdateStatus(ctx, tenantID, id, to, score)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.eventBus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		TenantID:  tenantID,
		OldStatus: string(lead.Status),
		NewStatus: string(to),
		Actor:     "system",
	})

	return toResponse(updated), nil
}

// ManualQualify overrides the automatic flow and marks the lead qualified.
// The stored score, if any, is preserved.
func (s *Service) ManualQualify(ctx context.Context, tenantID, id, actorID uuid.UUID, reason string) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		return transport.LeadResponse{}, err
	}

	if !domain.CanManuallyQualify(lead.Status) {
		return transport.LeadResponse{}, apperr.Conflict("lead is already qualified")
	}

	updated, err := s.repo.UpdateStatus(ctx, tenantID, id, domain.StatusQualificado, nil)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	score := 0
	if updated.Score != nil {
		score = *updated.Score
	}
	s.eventBus.Publish(ctx, events.LeadQualified{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		TenantID:  tenantID,
		Name:      updated.Name,
		Phone:     updated.Phone,
		Score:     score,
		Manual:    true,
		Reason:    reason,
	})
	s.eventBus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		TenantID:  tenantID,
		OldStatus: string(lead.Status),
		NewStatus: string(domain.StatusQualificado),
		Actor:     actorID.String(),
	})

	return toResponse(updated), nil
}

// DashboardStats assembles the tenant dashboard aggregates.
func (s *Service) DashboardStats(ctx context.Context, tenantID uuid.UUID) (transport.DashboardStatsResponse, error) {
	stats, err := s.repo.GetDashboardStats(ctx, tenantID)
	if err != nil {
		return transport.DashboardStatsResponse{}, err
	}

	resp := transport.DashboardStatsResponse{
		Total:          stats.Total,
		Novo:           stats.Novo,
		EmConversa:     stats.EmConversa,
		Qualificado:    stats.Qualificado,
		Desqualificado: stats.Desqualificado,
		AverageScore:   stats.AverageScore,
		BySource:       stats.BySource,
		LastLeadAt:     stats.LastLeadAt,
	}
	decided := stats.Qualificado + stats.Desqualificado
	if decided > 0 {
		resp.QualifiedRate = float64(stats.Qualificado) / float64(decided)
	}
	return resp, nil
}

func toResponse(lead repository.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:             lead.ID,
		Name:           lead.Name,
		Phone:          lead.Phone,
		Source:         lead.Source,
		InseridoManual: lead.InseridoManual,
		Tags:           lead.Tags,
		Status:         lead.Status,
		Score:          lead.Score,
		CreatedAt:      lead.CreatedAt,
		UpdatedAt:      lead.UpdatedAt,
	}
	if lead.Email != nil {
		resp.Email = *lead.Email
	}
	return resp
}
