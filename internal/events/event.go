// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadzap_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is registered.
type LeadCreated struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	TenantID uuid.UUID `json:"tenantId"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Source   string    `json:"source,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStatusChanged is published whenever a lead transitions between statuses.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	TenantID  uuid.UUID `json:"tenantId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	Actor     string    `json:"actor"` // "system" or a user id
}

func (e LeadStatusChanged) EventName() string { return "leads.status.changed" }

// LeadQualified is published when a lead reaches the qualification threshold,
// either through the conversation flow or a manual override.
type LeadQualified struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	TenantID  uuid.UUID `json:"tenantId"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Score     int       `json:"score"`
	Threshold int       `json:"threshold"`
	Manual    bool      `json:"manual"`
	Reason    string    `json:"reason,omitempty"`
}

func (e LeadQualified) EventName() string { return "leads.lead.qualified" }

// LeadDisqualified is published when a completed conversation scores below
// the threshold.
type LeadDisqualified struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	TenantID  uuid.UUID `json:"tenantId"`
	Score     int       `json:"score"`
	Threshold int       `json:"threshold"`
}

func (e LeadDisqualified) EventName() string { return "leads.lead.disqualified" }

// LeadsImported is published after a CSV batch import finishes.
type LeadsImported struct {
	BaseEvent
	TenantID uuid.UUID `json:"tenantId"`
	Created  int       `json:"created"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
}

func (e LeadsImported) EventName() string { return "leads.import.completed" }

// =============================================================================
// Qualification Domain Events
// =============================================================================

// SessionStarted is published when a qualification conversation begins.
type SessionStarted struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	LeadID    uuid.UUID `json:"leadId"`
	TenantID  uuid.UUID `json:"tenantId"`
	Phone     string    `json:"phone"`
}

func (e SessionStarted) EventName() string { return "qualification.session.started" }

// SessionCompleted is published when all four answers have been collected
// and the session was scored.
type SessionCompleted struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	LeadID    uuid.UUID `json:"leadId"`
	TenantID  uuid.UUID `json:"tenantId"`
	Score     int       `json:"score"`
	Qualified bool      `json:"qualified"`
}

func (e SessionCompleted) EventName() string { return "qualification.session.completed" }

// SessionAbandoned is published by the scheduler when a session has been
// inactive past the abandonment window.
type SessionAbandoned struct {
	BaseEvent
	SessionID uuid.UUID `json:"sessionId"`
	LeadID    uuid.UUID `json:"leadId"`
	TenantID  uuid.UUID `json:"tenantId"`
	LastStep  string    `json:"lastStep"`
}

func (e SessionAbandoned) EventName() string { return "qualification.session.abandoned" }

// QualificationRecorded is published when a qualification result is persisted.
// It fires once per session; replays of the same session do not re-publish.
type QualificationRecorded struct {
	BaseEvent
	QualificationID uuid.UUID `json:"qualificationId"`
	SessionID       uuid.UUID `json:"sessionId"`
	LeadID          uuid.UUID `json:"leadId"`
	TenantID        uuid.UUID `json:"tenantId"`
	Score           int       `json:"score"`
	Qualified       bool      `json:"qualified"`
}

func (e QualificationRecorded) EventName() string { return "qualification.record.created" }

// =============================================================================
// Messaging Domain Events
// =============================================================================

// InboundMessageReceived is published when the webhook accepts a new
// WhatsApp message.
type InboundMessageReceived struct {
	BaseEvent
	MessageSid string    `json:"messageSid"`
	TenantID   uuid.UUID `json:"tenantId"`
	Phone      string    `json:"phone"`
	Body       string    `json:"body"`
}

func (e InboundMessageReceived) EventName() string { return "webhook.message.received" }

// OutboundMessageFailed is published when a WhatsApp send fails after retries,
// so the lead can be flagged for manual follow-up.
type OutboundMessageFailed struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	TenantID uuid.UUID `json:"tenantId"`
	Phone    string    `json:"phone"`
	Reason   string    `json:"reason"`
}

func (e OutboundMessageFailed) EventName() string { return "whatsapp.message.failed" }
