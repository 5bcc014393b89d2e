package qualification

import (
	"context"
	"strings"
	"testing"
	"time"

	"leadzap_backend/internal/events"
	platformevents "leadzap_backend/platform/events"
	"leadzap_backend/platform/logger"

	"github.com/google/uuid"
)

func TestRecorder_ManualQualificationCreatesRecord(t *testing.T) {
	store := newFakeStore()
	rec := NewRecorder(store, logger.New("test"))
	ctx := context.Background()

	leadID := uuid.New()
	tenantID := uuid.New()
	err := rec.handleLeadQualified(ctx, events.LeadQualified{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		TenantID:  tenantID,
		Score:     100,
		Threshold: 70,
		Manual:    true,
		Reason:    "cliente indicado pelo parceiro",
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	records, _ := store.ListQualificationsByLead(ctx, tenantID, leadID)
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	q := records[0]
	if !q.Qualified || q.Score != 100 {
		t.Errorf("record = score %d qualified %v, want 100 true", q.Score, q.Qualified)
	}
	if q.Observacoes == nil || !strings.Contains(*q.Observacoes, "cliente indicado pelo parceiro") {
		t.Errorf("observacoes = %v, want the operator reason", q.Observacoes)
	}
}

func TestRecorder_IgnoresAutomaticQualifications(t *testing.T) {
	store := newFakeStore()
	rec := NewRecorder(store, logger.New("test"))

	err := rec.handleLeadQualified(context.Background(), events.LeadQualified{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		TenantID:  uuid.New(),
		Score:     85,
		Manual:    false,
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.quals) != 0 {
		t.Errorf("automatic qualification produced a manual record")
	}
}

func TestRecorder_RecordsAfterPublisherRequestEnds(t *testing.T) {
	store := newFakeStore()
	bus := platformevents.NewInMemoryBus(logger.New("test"))
	NewRecorder(store, logger.New("test")).Register(bus)

	leadID := uuid.New()
	tenantID := uuid.New()

	// The publishing HTTP request finishes, and its context is canceled,
	// before the subscriber gets to run.
	reqCtx, cancel := context.WithCancel(context.Background())
	bus.Publish(reqCtx, events.LeadQualified{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		TenantID:  tenantID,
		Score:     90,
		Manual:    true,
		Reason:    "indicação",
	})
	cancel()

	deadline := time.Now().Add(time.Second)
	for {
		records, _ := store.ListQualificationsByLead(context.Background(), tenantID, leadID)
		if len(records) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("records = %d, want 1", len(records))
		}
		time.Sleep(5 * time.Millisecond)
	}
}
