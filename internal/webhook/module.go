package webhook

import (
	apphttp "leadzap_backend/internal/http"
	"leadzap_backend/platform/config"
	"leadzap_backend/platform/logger"
)

// Module is the inbound webhook module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the webhook module.
func NewModule(cfg config.WebhookConfig, conversation Conversation, log *logger.Logger) *Module {
	return &Module{
		handler: NewHandler(conversation, log, cfg.GetWebhookAuthToken(), cfg.GetDefaultTenantID()),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts webhook routes on the rate-limited public group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Webhook)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
