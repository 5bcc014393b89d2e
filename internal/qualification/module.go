package qualification

import (
	"leadzap_backend/internal/events"
	apphttp "leadzap_backend/internal/http"
	"leadzap_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the qualification bounded context module implementing http.Module.
type Module struct {
	handler  *Handler
	service  *Service
	recorder *Recorder
}

// NewModule creates and initializes the qualification module. The scheduler
// may be nil when delayed re-engagement is not configured.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, log *logger.Logger, leads LeadDirectory, tenantCfg TenantConfig, sender Sender, scheduler ReEngagementScheduler) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, leads, tenantCfg, sender, scheduler, eventBus)
	recorder := NewRecorder(repo, log)
	recorder.Register(eventBus)
	return &Module{handler: NewHandler(svc), service: svc, recorder: recorder}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "qualification"
}

// Service returns the conversation service for use by the webhook module and
// the worker.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes mounts qualification routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/qualification")
	m.handler.RegisterRoutes(group)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
