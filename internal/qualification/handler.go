package qualification

import (
	"net/http"
	"time"

	"leadzap_backend/internal/scoring"
	"leadzap_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidID = "invalid id"

type SessionResponse struct {
	ID          uuid.UUID         `json:"id"`
	LeadID      uuid.UUID         `json:"leadId"`
	Phone       string            `json:"phone"`
	Status      SessionStatus     `json:"status"`
	CurrentStep Step              `json:"currentStep"`
	Answers     map[string]string `json:"answers"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type MessageResponse struct {
	ID        uuid.UUID        `json:"id"`
	Direction MessageDirection `json:"direction"`
	Content   string           `json:"content"`
	CreatedAt time.Time        `json:"createdAt"`
}

type TranscriptResponse struct {
	Session  SessionResponse   `json:"session"`
	Messages []MessageResponse `json:"messages"`
}

type QualificationResponse struct {
	ID          uuid.UUID         `json:"id"`
	SessionID   uuid.UUID         `json:"sessionId"`
	LeadID      uuid.UUID         `json:"leadId"`
	Patrimonio  scoring.Choice    `json:"patrimonio"`
	Objetivo    scoring.Choice    `json:"objetivo"`
	Urgencia    scoring.Choice    `json:"urgencia"`
	Interesse   scoring.Choice    `json:"interesse"`
	Score       int               `json:"score"`
	Qualified   bool              `json:"qualified"`
	Breakdown   scoring.Breakdown `json:"breakdown"`
	Observacoes *string           `json:"observacoes,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/leads/:leadId/start", h.StartQualification)
	rg.GET("/leads/:leadId/sessions", h.ListSessions)
	rg.GET("/leads/:leadId/records", h.ListQualifications)
	rg.GET("/sessions/:id", h.SessionTranscript)
}

func (h *Handler) StartQualification(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	session, err := h.svc.StartQualification(c.Request.Context(), identity.TenantID(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toSessionResponse(session))
}

func (h *Handler) ListSessions(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	sessions, err := h.svc.ListSessions(c.Request.Context(), identity.TenantID(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	httpkit.OK(c, out)
}

func (h *Handler) ListQualifications(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("leadId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	records, err := h.svc.ListQualifications(c.Request.Context(), identity.TenantID(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]QualificationResponse, 0, len(records))
	for _, q := range records {
		out = append(out, QualificationResponse{
			ID:          q.ID,
			SessionID:   q.SessionID,
			LeadID:      q.LeadID,
			Patrimonio:  q.Patrimonio,
			Objetivo:    q.Objetivo,
			Urgencia:    q.Urgencia,
			Interesse:   q.Interesse,
			Score:       q.Score,
			Qualified:   q.Qualified,
			Breakdown:   q.Breakdown,
			Observacoes: q.Observacoes,
			CreatedAt:   q.CreatedAt,
		})
	}
	httpkit.OK(c, out)
}

func (h *Handler) SessionTranscript(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	session, messages, err := h.svc.SessionTranscript(c.Request.Context(), identity.TenantID(), sessionID)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := TranscriptResponse{
		Session:  toSessionResponse(session),
		Messages: make([]MessageResponse, 0, len(messages)),
	}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, MessageResponse{
			ID:        m.ID,
			Direction: m.Direction,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	httpkit.OK(c, resp)
}

func toSessionResponse(s Session) SessionResponse {
	return SessionResponse{
		ID:          s.ID,
		LeadID:      s.LeadID,
		Phone:       s.Phone,
		Status:      s.Status,
		CurrentStep: s.CurrentStep,
		Answers:     s.Answers,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
