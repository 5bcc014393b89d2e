// Package domain provides core business rules for the leads bounded context.
package domain

// Status is the lifecycle state of a lead.
type Status string

const (
	// StatusNovo is the initial state of every lead.
	StatusNovo Status = "novo"
	// StatusEmConversa means a qualification conversation is in progress.
	StatusEmConversa Status = "em_conversa"
	// StatusQualificado means the lead scored at or above the threshold,
	// or was qualified manually.
	StatusQualificado Status = "qualificado"
	// StatusDesqualificado means a completed conversation scored below
	// the threshold.
	StatusDesqualificado Status = "desqualificado"
)

// allowedTransitions lists the automatic (system-driven) status transitions.
// Manual qualification is handled separately by CanManuallyQualify.
var allowedTransitions = map[Status][]Status{
	StatusNovo:       {StatusEmConversa},
	StatusEmConversa: {StatusQualificado, StatusDesqualificado},
	// Closed leads, qualified or not, re-enter the flow when they message
	// again. The completed conversation then sets the fresh score and status.
	StatusQualificado:    {StatusEmConversa},
	StatusDesqualificado: {StatusEmConversa},
}

// Valid reports whether s is a known lead status.
func (s Status) Valid() bool {
	switch s {
	case StatusNovo, StatusEmConversa, StatusQualificado, StatusDesqualificado:
		return true
	}
	return false
}

// CanTransition reports whether the system may move a lead from one status
// to another.
func CanTransition(from, to Status) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// CanManuallyQualify reports whether an operator may override the lead to
// qualificado. Every status except qualificado itself is eligible.
func CanManuallyQualify(from Status) bool {
	return from.Valid() && from != StatusQualificado
}
