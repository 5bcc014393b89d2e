// Package webhook receives inbound WhatsApp messages from the Twilio-style
// gateway and feeds them into the qualification conversation.
package webhook

import (
	"context"
	"crypto/subtle"
	"net/http"

	"leadzap_backend/platform/httpkit"
	"leadzap_backend/platform/logger"
	"leadzap_backend/platform/phone"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// emptyTwiML tells the gateway no inline reply is needed; replies go out
// through the sender instead.
const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

// Conversation is the slice of the qualification service the webhook needs.
type Conversation interface {
	HandleInboundMessage(ctx context.Context, tenantID uuid.UUID, rawPhone, body, providerSID string) (string, error)
}

type Handler struct {
	conversation Conversation
	log          *logger.Logger
	authToken    string
	tenantID     uuid.UUID
}

func NewHandler(conversation Conversation, log *logger.Logger, authToken, defaultTenantID string) *Handler {
	h := &Handler{conversation: conversation, log: log, authToken: authToken}
	if id, err := uuid.Parse(defaultTenantID); err == nil {
		h.tenantID = id
	}
	return h
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/whatsapp", h.ReceiveMessage)
	rg.GET("/whatsapp/health", h.Health)
}

// ReceiveMessage handles a Twilio-style form delivery. The gateway retries on
// non-2xx, so handler errors surface as 5xx and duplicates are absorbed
// downstream by the MessageSid dedup.
func (h *Handler) ReceiveMessage(c *gin.Context) {
	if !h.authorized(c) {
		httpkit.Error(c, http.StatusUnauthorized, "invalid webhook token", nil)
		return
	}
	if h.tenantID == uuid.Nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "webhook tenant not configured", nil)
		return
	}

	body := c.PostForm("Body")
	from := phone.StripWhatsAppPrefix(c.PostForm("From"))
	messageSid := c.PostForm("MessageSid")
	if from == "" || body == "" {
		httpkit.Error(c, http.StatusBadRequest, "missing From or Body", nil)
		return
	}

	reply, err := h.conversation.HandleInboundMessage(c.Request.Context(), h.tenantID, from, body, messageSid)
	if err != nil {
		h.log.Error("webhook message handling failed", "sid", messageSid, "error", err)
		httpkit.Error(c, http.StatusInternalServerError, "message handling failed", nil)
		return
	}
	if reply == "" {
		h.log.Info("webhook duplicate delivery ignored", "sid", messageSid)
	}

	c.Data(http.StatusOK, "text/xml", []byte(emptyTwiML))
}

func (h *Handler) Health(c *gin.Context) {
	httpkit.OK(c, gin.H{"status": "ok"})
}

// authorized checks the shared webhook token, taken from either the
// X-Webhook-Token header or the token query parameter (gateways that cannot
// set headers use the latter).
func (h *Handler) authorized(c *gin.Context) bool {
	if h.authToken == "" {
		return true
	}
	token := c.GetHeader("X-Webhook-Token")
	if token == "" {
		token = c.Query("token")
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.authToken)) == 1
}
