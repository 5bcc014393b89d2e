// Package tenants manages per-tenant configuration for the qualification flow.
package tenants

import (
	"leadzap_backend/internal/scoring"
)

// Settings is the typed form of the tenant's jsonb settings column.
// Zero values fall back to application defaults at read time.
type Settings struct {
	BusinessName           string                    `json:"businessName,omitempty"`
	WelcomeMessage         string                    `json:"welcomeMessage,omitempty"`
	QualificationThreshold int                       `json:"qualificationThreshold,omitempty"`
	Weights                map[string]map[string]int `json:"weights,omitempty"`
	NotifyEmail            string                    `json:"notifyEmail,omitempty"`
	ReEngagementEnabled    *bool                     `json:"reEngagementEnabled,omitempty"`
}

// applyDefaults fills unset fields so callers always see effective values.
func (s Settings) applyDefaults() Settings {
	if s.QualificationThreshold == 0 {
		s.QualificationThreshold = scoring.DefaultThreshold
	}
	if s.ReEngagementEnabled == nil {
		enabled := true
		s.ReEngagementEnabled = &enabled
	}
	return s
}

// WeightTable converts the stored weight overrides to the scoring package's
// representation. Returns nil when the tenant has no overrides.
func (s Settings) WeightTable() scoring.WeightTable {
	if len(s.Weights) == 0 {
		return nil
	}
	table := make(scoring.WeightTable, len(s.Weights))
	for factor, choices := range s.Weights {
		row := make(map[scoring.Choice]int, len(choices))
		for choice, points := range choices {
			row[scoring.Choice(choice)] = points
		}
		table[scoring.Factor(factor)] = row
	}
	return table
}

// Engine builds a scoring engine honoring the tenant's overrides, falling
// back to the default engine when the overrides are invalid or absent.
func (s Settings) Engine() (*scoring.Engine, error) {
	return scoring.NewWithOverrides(s.WeightTable(), s.QualificationThreshold)
}
