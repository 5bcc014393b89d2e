package notification

import (
	"context"

	"leadzap_backend/internal/events"
	"leadzap_backend/internal/tenants"
	"leadzap_backend/platform/logger"
)

// Notifier listens for qualified leads and emails each tenant's consultant.
type Notifier struct {
	sender   Sender
	settings tenants.SettingsReader
	log      *logger.Logger
}

// NewNotifier builds a notifier. A nil sender disables notifications without
// affecting the rest of the pipeline.
func NewNotifier(sender Sender, settings tenants.SettingsReader, log *logger.Logger) *Notifier {
	return &Notifier{sender: sender, settings: settings, log: log}
}

// Register subscribes the notifier on the bus. No-op when disabled.
func (n *Notifier) Register(bus events.Bus) {
	if n.sender == nil {
		n.log.Info("email notifications disabled")
		return
	}
	bus.Subscribe(events.LeadQualified{}.EventName(), events.HandlerFunc(n.handleLeadQualified))
}

func (n *Notifier) handleLeadQualified(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadQualified)
	if !ok {
		return nil
	}

	settings, err := n.settings.EffectiveSettings(ctx, e.TenantID)
	if err != nil {
		n.log.Error("resolve tenant settings for notification", "tenantId", e.TenantID, "error", err)
		return err
	}
	if settings.NotifyEmail == "" {
		n.log.Info("tenant has no notification email configured", "tenantId", e.TenantID)
		return nil
	}

	err = n.sender.SendLeadQualifiedEmail(ctx, settings.NotifyEmail, LeadQualifiedEmail{
		Name:      e.Name,
		Phone:     e.Phone,
		Score:     e.Score,
		Threshold: e.Threshold,
		Manual:    e.Manual,
		Reason:    e.Reason,
	})
	if err != nil {
		n.log.Error("send qualified lead email", "leadId", e.LeadID, "error", err)
		return err
	}

	n.log.Info("qualified lead email sent", "leadId", e.LeadID, "to", settings.NotifyEmail)
	return nil
}
