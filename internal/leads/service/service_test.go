package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"leadzap_backend/internal/events"
	"leadzap_backend/internal/leads/domain"
	"leadzap_backend/internal/leads/repository"
	"leadzap_backend/internal/leads/transport"
	"leadzap_backend/platform/apperr"

	"github.com/google/uuid"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	mu    sync.Mutex
	leads map[uuid.UUID]repository.Lead
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{leads: make(map[uuid.UUID]repository.Lead)}
}

func (f *fakeRepo) Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error) {
	lead, created, err := f.CreateIfAbsent(ctx, params)
	if err != nil {
		return repository.Lead{}, err
	}
	if !created {
		return repository.Lead{}, errors.New("duplicate phone")
	}
	return lead, nil
}

func (f *fakeRepo) CreateIfAbsent(_ context.Context, params repository.CreateLeadParams) (repository.Lead, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.leads {
		if existing.TenantID == params.TenantID && existing.Phone == params.Phone {
			return repository.Lead{}, false, nil
		}
	}
	lead := repository.Lead{
		ID:       uuid.New(),
		TenantID: params.TenantID,
		Name:     params.Name,
		Phone:    params.Phone,
		Email:    params.Email,
		Source:   params.Source,
		Status:   domain.StatusNovo,
	}
	f.leads[lead.ID] = lead
	return lead, true, nil
}

func (f *fakeRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok || lead.TenantID != tenantID {
		return repository.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeRepo) GetByPhone(_ context.Context, tenantID uuid.UUID, phone string) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, lead := range f.leads {
		if lead.TenantID == tenantID && lead.Phone == phone {
			return lead, nil
		}
	}
	return repository.Lead{}, repository.ErrNotFound
}

func (f *fakeRepo) List(_ context.Context, params repository.ListLeadsParams) ([]repository.Lead, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Lead
	for _, lead := range f.leads {
		if lead.TenantID != params.TenantID {
			continue
		}
		if params.Status != nil && lead.Status != *params.Status {
			continue
		}
		out = append(out, lead)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Update(_ context.Context, tenantID, id uuid.UUID, params repository.UpdateLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok || lead.TenantID != tenantID {
		return repository.Lead{}, repository.ErrNotFound
	}
	if params.Name != nil {
		lead.Name = *params.Name
	}
	if params.Phone != nil {
		lead.Phone = *params.Phone
	}
	if params.Email != nil {
		lead.Email = params.Email
	}
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, tenantID, id uuid.UUID, status domain.Status, score *int) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok || lead.TenantID != tenantID {
		return repository.Lead{}, repository.ErrNotFound
	}
	lead.Status = status
	if score != nil {
		lead.Score = score
	}
	f.leads[id] = lead
	return lead, nil
}

func (f *fakeRepo) Delete(_ context.Context, tenantID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok || lead.TenantID != tenantID {
		return repository.ErrNotFound
	}
	delete(f.leads, id)
	return nil
}

func (f *fakeRepo) GetDashboardStats(_ context.Context, tenantID uuid.UUID) (repository.DashboardStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stats repository.DashboardStats
	for _, lead := range f.leads {
		if lead.TenantID != tenantID {
			continue
		}
		stats.Total++
		switch lead.Status {
		case domain.StatusNovo:
			stats.Novo++
		case domain.StatusEmConversa:
			stats.EmConversa++
		case domain.StatusQualificado:
			stats.Qualificado++
		case domain.StatusDesqualificado:
			stats.Desqualificado++
		}
	}
	return stats, nil
}

// recordingBus captures published events for assertions.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) published(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, e := range b.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}

func newTestService() (*Service, *fakeRepo, *recordingBus) {
	repo := newFakeRepo()
	bus := &recordingBus{}
	return New(repo, bus), repo, bus
}

func TestCreate_NormalizesPhoneAndPublishes(t *testing.T) {
	svc, _, bus := newTestService()
	tenantID := uuid.New()

	lead, err := svc.Create(context.Background(), tenantID, transport.CreateLeadRequest{
		Name:  "Maria Silva",
		Phone: "11 99988-8777",
	})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if lead.Phone != "+5511999888777" {
		t.Errorf("phone = %q, want normalized E.164", lead.Phone)
	}
	if lead.Status != domain.StatusNovo {
		t.Errorf("status = %s, want novo", lead.Status)
	}
	if got := bus.published("leads.lead.created"); len(got) != 1 {
		t.Errorf("expected 1 LeadCreated event, got %d", len(got))
	}
}

func TestCreate_DuplicatePhoneConflicts(t *testing.T) {
	svc, _, _ := newTestService()
	tenantID := uuid.New()
	req := transport.CreateLeadRequest{Name: "Maria", Phone: "+5511999888777"}

	if _, err := svc.Create(context.Background(), tenantID, req); err != nil {
		t.Fatalf("first Create() failed: %v", err)
	}
	_, err := svc.Create(context.Background(), tenantID, req)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGetOrCreateByPhone(t *testing.T) {
	svc, _, bus := newTestService()
	tenantID := uuid.New()

	first, err := svc.GetOrCreateByPhone(context.Background(), tenantID, "+5511999888777", "")
	if err != nil {
		t.Fatalf("GetOrCreateByPhone() failed: %v", err)
	}
	if first.Name != "+5511999888777" {
		t.Errorf("nameless lead should default to phone, got %q", first.Name)
	}

	second, err := svc.GetOrCreateByPhone(context.Background(), tenantID, "+5511999888777", "Maria")
	if err != nil {
		t.Fatalf("second GetOrCreateByPhone() failed: %v", err)
	}
	if second.ID != first.ID {
		t.Error("expected the same lead on repeat lookup")
	}
	if got := bus.published("leads.lead.created"); len(got) != 1 {
		t.Errorf("expected 1 LeadCreated event, got %d", len(got))
	}
}

func TestTransitionStatus_RejectsInvalidTransition(t *testing.T) {
	svc, repo, _ := newTestService()
	tenantID := uuid.New()
	lead, _, err := repo.CreateIfAbsent(context.Background(), repository.CreateLeadParams{
		TenantID: tenantID, Name: "Maria", Phone: "+5511999888777",
	})
	if err != nil {
		t.Fatal(err)
	}

	// novo cannot jump straight to qualificado
	_, err = svc.TransitionStatus(context.Background(), tenantID, lead.ID, domain.StatusQualificado, nil)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	if _, err := svc.TransitionStatus(context.Background(), tenantID, lead.ID, domain.StatusEmConversa, nil); err != nil {
		t.Fatalf("novo -> em_conversa should succeed: %v", err)
	}
}

func TestTransitionStatus_SameStatusIsNoOp(t *testing.T) {
	svc, repo, bus := newTestService()
	tenantID := uuid.New()
	lead, _, _ := repo.CreateIfAbsent(context.Background(), repository.CreateLeadParams{
		TenantID: tenantID, Name: "Maria", Phone: "+5511999888777",
	})

	if _, err := svc.TransitionStatus(context.Background(), tenantID, lead.ID, domain.StatusNovo, nil); err != nil {
		t.Fatalf("no-op transition failed: %v", err)
	}
	if got := bus.published("leads.status.changed"); len(got) != 0 {
		t.Errorf("no-op transition must not publish, got %d events", len(got))
	}
}

func TestManualQualify(t *testing.T) {
	svc, repo, bus := newTestService()
	tenantID := uuid.New()
	actorID := uuid.New()
	lead, _, _ := repo.CreateIfAbsent(context.Background(), repository.CreateLeadParams{
		TenantID: tenantID, Name: "Maria", Phone: "+5511999888777",
	})

	updated, err := svc.ManualQualify(context.Background(), tenantID, lead.ID, actorID, "cliente antigo")
	if err != nil {
		t.Fatalf("ManualQualify() failed: %v", err)
	}
	if updated.Status != domain.StatusQualificado {
		t.Fatalf("status = %s, want qualificado", updated.Status)
	}

	qualified := bus.published("leads.lead.qualified")
	if len(qualified) != 1 {
		t.Fatalf("expected 1 LeadQualified event, got %d", len(qualified))
	}
	if e := qualified[0].(events.LeadQualified); !e.Manual {
		t.Error("manual qualification event must carry Manual=true")
	}

	// Second override on an already qualified lead conflicts.
	_, err = svc.ManualQualify(context.Background(), tenantID, lead.ID, actorID, "cliente antigo")
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDashboardStats_QualifiedRate(t *testing.T) {
	svc, repo, _ := newTestService()
	tenantID := uuid.New()

	seed := []domain.Status{
		domain.StatusQualificado,
		domain.StatusQualificado,
		domain.StatusDesqualificado,
		domain.StatusNovo,
	}
	for _, status := range seed {
		lead, _, _ := repo.CreateIfAbsent(context.Background(), repository.CreateLeadParams{
			TenantID: tenantID, Name: "Lead", Phone: uuid.NewString(),
		})
		stored := repo.leads[lead.ID]
		stored.Status = status
		repo.leads[lead.ID] = stored
	}

	stats, err := svc.DashboardStats(context.Background(), tenantID)
	if err != nil {
		t.Fatalf("DashboardStats() failed: %v", err)
	}
	if stats.Total != 4 {
		t.Fatalf("total = %d, want 4", stats.Total)
	}
	// 2 qualified out of 3 decided
	if want := 2.0 / 3.0; stats.QualifiedRate != want {
		t.Errorf("qualifiedRate = %f, want %f", stats.QualifiedRate, want)
	}
}
