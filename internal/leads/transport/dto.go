package transport

import (
	"time"

	"leadzap_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Request DTOs

type CreateLeadRequest struct {
	Name   string   `json:"name" validate:"required,min=1,max=150"`
	Phone  string   `json:"phone" validate:"required,min=5,max=20"`
	Email  string   `json:"email,omitempty" validate:"omitempty,email"`
	Source string   `json:"source,omitempty" validate:"omitempty,oneof=youtube newsletter manual inbound_whatsapp upload_csv external"`
	Tags   []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

type UpdateLeadRequest struct {
	Name  *string   `json:"name,omitempty" validate:"omitempty,min=1,max=150"`
	Phone *string   `json:"phone,omitempty" validate:"omitempty,min=5,max=20"`
	Email *string   `json:"email,omitempty" validate:"omitempty,email"`
	Tags  *[]string `json:"tags,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

type ListLeadsQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=novo em_conversa qualificado desqualificado"`
	Source string `form:"source" validate:"omitempty,oneof=youtube newsletter manual inbound_whatsapp upload_csv external"`
	Search string `form:"search" validate:"omitempty,max=150"`
	Page   int    `form:"page" validate:"omitempty,min=1"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=100"`
}

type ManualQualifyRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// Response DTOs

type LeadResponse struct {
	ID             uuid.UUID     `json:"id"`
	Name           string        `json:"name"`
	Phone          string        `json:"phone"`
	Email          string        `json:"email,omitempty"`
	Source         domain.Source `json:"source"`
	InseridoManual bool          `json:"inseridoManual"`
	Tags           []string      `json:"tags,omitempty"`
	Status         domain.Status `json:"status"`
	Score          *int          `json:"score,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type ImportResultResponse struct {
	Created int           `json:"created"`
	Skipped int           `json:"skipped"`
	Failed  int           `json:"failed"`
	Errors  []ImportError `json:"errors,omitempty"`
}

// ImportError describes a single rejected CSV row.
type ImportError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type DashboardStatsResponse struct {
	Total          int            `json:"total"`
	Novo           int            `json:"novo"`
	EmConversa     int            `json:"emConversa"`
	Qualificado    int            `json:"qualificado"`
	Desqualificado int            `json:"desqualificado"`
	QualifiedRate  float64        `json:"qualifiedRate"`
	AverageScore   *float64       `json:"averageScore,omitempty"`
	BySource       map[string]int `json:"bySource,omitempty"`
	LastLeadAt     *time.Time     `json:"lastLeadAt,omitempty"`
}
