package qualification

import (
	"context"
	"fmt"

	"leadzap_backend/internal/events"
	"leadzap_backend/internal/scoring"
	"leadzap_backend/platform/logger"

	"github.com/google/uuid"
)

// Recorder appends a qualification record when an operator qualifies a lead
// by hand, so the audit trail covers manual decisions too. Automatic
// qualifications are recorded by the conversation flow itself.
type Recorder struct {
	store Store
	log   *logger.Logger
}

func NewRecorder(store Store, log *logger.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

// Register subscribes the recorder on the bus.
func (r *Recorder) Register(bus events.Bus) {
	bus.Subscribe(events.LeadQualified{}.EventName(), events.HandlerFunc(r.handleLeadQualified))
}

func (r *Recorder) handleLeadQualified(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadQualified)
	if !ok || !e.Manual {
		return nil
	}

	obs := "Qualificação manual"
	if e.Reason != "" {
		obs = fmt.Sprintf("Qualificação manual: %s", e.Reason)
	}

	// Manual records have no conversation behind them. A fresh synthetic
	// session id keeps the per-session dedup key satisfied.
	_, _, err := r.store.InsertQualification(ctx, InsertQualificationParams{
		SessionID:   uuid.New(),
		LeadID:      e.LeadID,
		TenantID:    e.TenantID,
		Answers:     scoring.Answers{},
		Score:       e.Score,
		Qualified:   true,
		Breakdown:   scoring.Breakdown{},
		Observacoes: &obs,
	})
	if err != nil {
		r.log.Error("record manual qualification", "leadId", e.LeadID, "error", err)
		return err
	}
	return nil
}
