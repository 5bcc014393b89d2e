package qualification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadzap_backend/internal/events"
	leaddomain "leadzap_backend/internal/leads/domain"
	leadtransport "leadzap_backend/internal/leads/transport"
	"leadzap_backend/internal/scoring"
	"leadzap_backend/internal/tenants"
	"leadzap_backend/platform/apperr"

	"github.com/google/uuid"
)

// reEngagementDelay is how long a lead may sit on a question before a nudge
// is scheduled.
const reEngagementDelay = 24 * time.Hour

// Store is the persistence surface the conversation service needs.
type Store interface {
	CreateSession(ctx context.Context, leadID, tenantID uuid.UUID, phone string) (Session, error)
	GetSession(ctx context.Context, tenantID, id uuid.UUID) (Session, error)
	GetActiveSessionByLead(ctx context.Context, tenantID, leadID uuid.UUID) (Session, error)
	ListSessionsByLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]Session, error)
	UpdateSessionState(ctx context.Context, id uuid.UUID, step Step, answers map[string]string, status SessionStatus) (Session, error)
	MarkAbandonedBefore(ctx context.Context, cutoff time.Time) ([]Session, error)
	CreateMessage(ctx context.Context, sessionID uuid.UUID, direction MessageDirection, content string, providerSID *string) (Message, error)
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]Message, error)
	InboundMessageExists(ctx context.Context, providerSID string) (bool, error)
	InsertQualification(ctx context.Context, params InsertQualificationParams) (Qualification, bool, error)
	ListQualificationsByLead(ctx context.Context, tenantID, leadID uuid.UUID) ([]Qualification, error)
}

// LeadDirectory is the slice of the leads service the conversation needs.
type LeadDirectory interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (leadtransport.LeadResponse, error)
	GetOrCreateByPhone(ctx context.Context, tenantID uuid.UUID, rawPhone, name string) (leadtransport.LeadResponse, error)
	TransitionStatus(ctx context.Context, tenantID, id uuid.UUID, to leaddomain.Status, score *int) (leadtransport.LeadResponse, error)
}

// TenantConfig resolves per-tenant scoring and conversation settings.
type TenantConfig interface {
	EffectiveSettings(ctx context.Context, tenantID uuid.UUID) (tenants.Settings, error)
	EngineFor(ctx context.Context, tenantID uuid.UUID) *scoring.Engine
}

// Sender delivers an outbound WhatsApp message and returns the provider SID.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// ReEngagementScheduler enqueues a delayed nudge for a stalled session.
// Optional; a nil scheduler disables re-engagement.
type ReEngagementScheduler interface {
	ScheduleReEngagement(ctx context.Context, tenantID, sessionID uuid.UUID, step string, delay time.Duration) error
}

type Service struct {
	store     Store
	leads     LeadDirectory
	tenantCfg TenantConfig
	sender    Sender
	scheduler ReEngagementScheduler
	eventBus  events.Bus
}

func NewService(store Store, leads LeadDirectory, tenantCfg TenantConfig, sender Sender, scheduler ReEngagementScheduler, eventBus events.Bus) *Service {
	return &Service{
		store:     store,
		leads:     leads,
		tenantCfg: tenantCfg,
		sender:    sender,
		scheduler: scheduler,
		eventBus:  eventBus,
	}
}

// HandleInboundMessage drives the qualification state machine with one
// incoming WhatsApp message. Replays of the same provider SID are dropped.
// The returned string is the reply that was sent, empty when the message was
// a duplicate.
func (s *Service) HandleInboundMessage(ctx context.Context, tenantID uuid.UUID, rawPhone, body, providerSID string) (string, error) {
	if providerSID != "" {
		seen, err := s.store.InboundMessageExists(ctx, providerSID)
		if err != nil {
			return "", fmt.Errorf("dedup check: %w", err)
		}
		if seen {
			return "", nil
		}
	}

	lead, err := s.leads.GetOrCreateByPhone(ctx, tenantID, rawPhone, "")
	if err != nil {
		return "", err
	}

	s.eventBus.Publish(ctx, events.InboundMessageReceived{
		BaseEvent:  events.NewBaseEvent(),
		MessageSid: providerSID,
		TenantID:   tenantID,
		Phone:      lead.Phone,
		Body:       body,
	})

	session, err := s.store.GetActiveSessionByLead(ctx, tenantID, lead.ID)
	if errors.Is(err, ErrSessionNotFound) {
		return s.startSession(ctx, tenantID, lead, body, providerSID)
	}
	if err != nil {
		return "", err
	}

	return s.advanceSession(ctx, lead, session, body, providerSID)
}

// StartQualification opens a session for an existing lead and sends the
// welcome question. Used by operators to kick off the flow manually.
func (s *Service) StartQualification(ctx context.Context, tenantID, leadID uuid.UUID) (Session, error) {
	lead, err := s.leads.GetByID(ctx, tenantID, leadID)
	if err != nil {
		return Session{}, err
	}
	if _, err := s.store.GetActiveSessionByLead(ctx, tenantID, leadID); err == nil {
		return Session{}, apperr.Conflict("lead already has an active qualification session")
	} else if !errors.Is(err, ErrSessionNotFound) {
		return Session{}, err
	}

	session, err := s.openSession(ctx, tenantID, lead)
	if err != nil {
		return Session{}, err
	}
	if err := s.reply(ctx, session, lead.Phone, welcomeMessage); err != nil {
		return Session{}, err
	}
	return s.store.UpdateSessionState(ctx, session.ID, StepPatrimonio, session.Answers, SessionAtiva)
}

// startSession handles the first inbound message of a new conversation.
func (s *Service) startSession(ctx context.Context, tenantID uuid.UUID, lead leadtransport.LeadResponse, body, providerSID string) (string, error) {
	session, err := s.openSession(ctx, tenantID, lead)
	if err != nil {
		return "", err
	}
	if err := s.storeInbound(ctx, session.ID, body, providerSID); err != nil {
		return "", err
	}
	if err := s.reply(ctx, session, lead.Phone, welcomeMessage); err != nil {
		return "", err
	}
	if _, err := s.store.UpdateSessionState(ctx, session.ID, StepPatrimonio, session.Answers, SessionAtiva); err != nil {
		return "", err
	}
	s.scheduleNudge(ctx, session, StepPatrimonio)
	return welcomeMessage, nil
}

func (s *Service) openSession(ctx context.Context, tenantID uuid.UUID, lead leadtransport.LeadResponse) (Session, error) {
	session, err := s.store.CreateSession(ctx, lead.ID, tenantID, lead.Phone)
	if err != nil {
		return Session{}, err
	}

	// Every lead moves into conversation, including ones previously closed
	// as qualified or disqualified. Completion then writes the fresh result,
	// so the lead's score and status always track the newest record.
	if _, err := s.leads.TransitionStatus(ctx, session.TenantID, lead.ID, leaddomain.StatusEmConversa, nil); err != nil {
		if apperr.GetKind(err) != apperr.KindConflict {
			return Session{}, err
		}
	}

	s.eventBus.Publish(ctx, events.SessionStarted{
		BaseEvent: events.NewBaseEvent(),
		SessionID: session.ID,
		LeadID:    lead.ID,
		TenantID:  session.TenantID,
		Phone:     lead.Phone,
	})
	return session, nil
}

// advanceSession processes an answer for the session's current question.
func (s *Service) advanceSession(ctx context.Context, lead leadtransport.LeadResponse, session Session, body, providerSID string) (string, error) {
	if err := s.storeInbound(ctx, session.ID, body, providerSID); err != nil {
		return "", err
	}

	factor, ok := stepFactor[session.CurrentStep]
	if !ok {
		// Session is not on a question step. Restart the flow from the top.
		if err := s.reply(ctx, session, lead.Phone, welcomeMessage); err != nil {
			return "", err
		}
		if _, err := s.store.UpdateSessionState(ctx, session.ID, StepPatrimonio, map[string]string{}, SessionAtiva); err != nil {
			return "", err
		}
		return welcomeMessage, nil
	}

	choice, ok := ExtractChoice(body)
	if !ok {
		reask := reasks[session.CurrentStep]
		if err := s.reply(ctx, session, lead.Phone, reask); err != nil {
			return "", err
		}
		return reask, nil
	}

	answers := session.Answers
	if answers == nil {
		answers = make(map[string]string)
	}
	answers[string(factor)] = string(choice)

	next := nextStep[session.CurrentStep]
	if next != StepCompleta {
		question := questions[next]
		if err := s.reply(ctx, session, lead.Phone, question); err != nil {
			return "", err
		}
		updated, err := s.store.UpdateSessionState(ctx, session.ID, next, answers, SessionAtiva)
		if err != nil {
			return "", err
		}
		s.scheduleNudge(ctx, updated, next)
		return question, nil
	}

	session.Answers = answers
	return s.completeSession(ctx, lead, session)
}

// completeSession scores the collected answers, records the qualification and
// closes the session.
func (s *Service) completeSession(ctx context.Context, lead leadtransport.LeadResponse, session Session) (string, error) {
	engine := s.tenantCfg.EngineFor(ctx, session.TenantID)
	breakdown, decision, err := engine.Score(session.answers())
	if err != nil {
		return "", fmt.Errorf("score session %s: %w", session.ID, err)
	}

	record, inserted, err := s.store.InsertQualification(ctx, InsertQualificationParams{
		SessionID: session.ID,
		LeadID:    session.LeadID,
		TenantID:  session.TenantID,
		Answers:   session.answers(),
		Score:     decision.Score,
		Qualified: decision.Qualified,
		Breakdown: breakdown,
	})
	if err != nil {
		return "", err
	}

	if _, err := s.store.UpdateSessionState(ctx, session.ID, StepCompleta, session.Answers, SessionConcluida); err != nil {
		return "", err
	}

	target := leaddomain.StatusQualificado
	if !decision.Qualified {
		target = leaddomain.StatusDesqualificado
	}
	score := decision.Score
	if _, err := s.leads.TransitionStatus(ctx, session.TenantID, session.LeadID, target, &score); err != nil {
		if apperr.GetKind(err) != apperr.KindConflict {
			return "", err
		}
	}

	s.eventBus.Publish(ctx, events.SessionCompleted{
		BaseEvent: events.NewBaseEvent(),
		SessionID: session.ID,
		LeadID:    session.LeadID,
		TenantID:  session.TenantID,
		Score:     decision.Score,
		Qualified: decision.Qualified,
	})
	if inserted {
		s.eventBus.Publish(ctx, events.QualificationRecorded{
			BaseEvent:       events.NewBaseEvent(),
			QualificationID: record.ID,
			SessionID:       session.ID,
			LeadID:          session.LeadID,
			TenantID:        session.TenantID,
			Score:           decision.Score,
			Qualified:       decision.Qualified,
		})
		if decision.Qualified {
			s.eventBus.Publish(ctx, events.LeadQualified{
				BaseEvent: events.NewBaseEvent(),
				LeadID:    session.LeadID,
				TenantID:  session.TenantID,
				Name:      lead.Name,
				Phone:     lead.Phone,
				Score:     decision.Score,
				Threshold: decision.Threshold,
				Reason:    decision.Rationale,
			})
		} else {
			s.eventBus.Publish(ctx, events.LeadDisqualified{
				BaseEvent: events.NewBaseEvent(),
				LeadID:    session.LeadID,
				TenantID:  session.TenantID,
				Score:     decision.Score,
				Threshold: decision.Threshold,
			})
		}
	}

	final := disqualifiedMessage
	if decision.Qualified {
		final = qualifiedMessage
	}
	if err := s.reply(ctx, session, lead.Phone, final); err != nil {
		return "", err
	}
	return final, nil
}

// HandleReEngagement sends the nudge if the session is still stuck on the
// step it was scheduled for. Progress since scheduling makes it a no-op.
func (s *Service) HandleReEngagement(ctx context.Context, tenantID, sessionID uuid.UUID, step Step) error {
	session, err := s.store.GetSession(ctx, tenantID, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}
	if session.Status != SessionAtiva || session.CurrentStep != step {
		return nil
	}

	settings, err := s.tenantCfg.EffectiveSettings(ctx, tenantID)
	if err == nil && settings.ReEngagementEnabled != nil && !*settings.ReEngagementEnabled {
		return nil
	}

	return s.reply(ctx, session, session.Phone, reEngagementMessage)
}

// SweepAbandoned closes sessions inactive since the cutoff and publishes an
// event per closed session. Returns the number of sessions closed.
func (s *Service) SweepAbandoned(ctx context.Context, cutoff time.Time) (int, error) {
	sessions, err := s.store.MarkAbandonedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	for _, session := range sessions {
		s.eventBus.Publish(ctx, events.SessionAbandoned{
			BaseEvent: events.NewBaseEvent(),
			SessionID: session.ID,
			LeadID:    session.LeadID,
			TenantID:  session.TenantID,
			LastStep:  string(session.CurrentStep),
		})
	}
	return len(sessions), nil
}

// --- Read endpoints ---

func (s *Service) ListSessions(ctx context.Context, tenantID, leadID uuid.UUID) ([]Session, error) {
	if _, err := s.leads.GetByID(ctx, tenantID, leadID); err != nil {
		return nil, err
	}
	return s.store.ListSessionsByLead(ctx, tenantID, leadID)
}

func (s *Service) SessionTranscript(ctx context.Context, tenantID, sessionID uuid.UUID) (Session, []Message, error) {
	session, err := s.store.GetSession(ctx, tenantID, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Session{}, nil, apperr.NotFound("session not found")
		}
		return Session{}, nil, err
	}
	messages, err := s.store.ListMessages(ctx, sessionID)
	if err != nil {
		return Session{}, nil, err
	}
	return session, messages, nil
}

func (s *Service) ListQualifications(ctx context.Context, tenantID, leadID uuid.UUID) ([]Qualification, error) {
	if _, err := s.leads.GetByID(ctx, tenantID, leadID); err != nil {
		return nil, err
	}
	return s.store.ListQualificationsByLead(ctx, tenantID, leadID)
}

// --- helpers ---

func (s *Service) storeInbound(ctx context.Context, sessionID uuid.UUID, body, providerSID string) error {
	var sid *string
	if providerSID != "" {
		sid = &providerSID
	}
	_, err := s.store.CreateMessage(ctx, sessionID, DirectionInbound, body, sid)
	return err
}

// reply sends an outbound message and stores it in the transcript.
func (s *Service) reply(ctx context.Context, session Session, to, body string) error {
	sid, err := s.sender.Send(ctx, to, body)
	if err != nil {
		s.eventBus.Publish(ctx, events.OutboundMessageFailed{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    session.LeadID,
			TenantID:  session.TenantID,
			Phone:     to,
			Reason:    err.Error(),
		})
		return fmt.Errorf("send whatsapp message: %w", err)
	}
	var providerSID *string
	if sid != "" {
		providerSID = &sid
	}
	_, err = s.store.CreateMessage(ctx, session.ID, DirectionOutbound, body, providerSID)
	return err
}

func (s *Service) scheduleNudge(ctx context.Context, session Session, step Step) {
	if s.scheduler == nil {
		return
	}
	// Scheduling is best effort; the abandonment sweep still closes stale
	// sessions if the nudge never fires.
	_ = s.scheduler.ScheduleReEngagement(ctx, session.TenantID, session.ID, string(step), reEngagementDelay)
}
