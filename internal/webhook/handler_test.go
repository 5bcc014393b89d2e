package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"leadzap_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeConversation struct {
	calls    int
	tenantID uuid.UUID
	phone    string
	body     string
	sid      string
	reply    string
	err      error
}

func (f *fakeConversation) HandleInboundMessage(_ context.Context, tenantID uuid.UUID, rawPhone, body, providerSID string) (string, error) {
	f.calls++
	f.tenantID = tenantID
	f.phone = rawPhone
	f.body = body
	f.sid = providerSID
	return f.reply, f.err
}

func newTestRouter(conv Conversation, token, tenantID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewHandler(conv, logger.New("test"), token, tenantID)
	h.RegisterRoutes(engine.Group("/webhook"))
	return engine
}

func postForm(engine *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestReceiveMessage(t *testing.T) {
	tenantID := uuid.New()
	conv := &fakeConversation{reply: "próxima pergunta"}
	engine := newTestRouter(conv, "", tenantID.String())

	rec := postForm(engine, "/webhook/whatsapp", url.Values{
		"Body":       {"A"},
		"From":       {"whatsapp:+5511999888777"},
		"To":         {"whatsapp:+5511900000000"},
		"MessageSid": {"SM123"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/xml") {
		t.Errorf("content type = %q, want text/xml", ct)
	}
	if conv.calls != 1 {
		t.Fatalf("conversation called %d times, want 1", conv.calls)
	}
	if conv.tenantID != tenantID {
		t.Errorf("tenant = %s, want %s", conv.tenantID, tenantID)
	}
	if conv.phone != "+5511999888777" {
		t.Errorf("phone = %q, want whatsapp prefix stripped", conv.phone)
	}
	if conv.sid != "SM123" {
		t.Errorf("sid = %q, want SM123", conv.sid)
	}
}

func TestReceiveMessage_TokenAuth(t *testing.T) {
	tenantID := uuid.New().String()
	form := url.Values{"Body": {"oi"}, "From": {"whatsapp:+5511999888777"}}

	tests := []struct {
		name string
		path string
		want int
	}{
		{"missing token", "/webhook/whatsapp", http.StatusUnauthorized},
		{"wrong token", "/webhook/whatsapp?token=wrong", http.StatusUnauthorized},
		{"query token", "/webhook/whatsapp?token=s3cret", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			engine := newTestRouter(&fakeConversation{reply: "ok"}, "s3cret", tenantID)
			rec := postForm(engine, tc.path, form)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}

	t.Run("header token", func(t *testing.T) {
		engine := newTestRouter(&fakeConversation{reply: "ok"}, "s3cret", tenantID)
		req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Webhook-Token", "s3cret")
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestReceiveMessage_MissingFields(t *testing.T) {
	engine := newTestRouter(&fakeConversation{}, "", uuid.New().String())
	rec := postForm(engine, "/webhook/whatsapp", url.Values{"From": {"whatsapp:+5511999888777"}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestReceiveMessage_TenantNotConfigured(t *testing.T) {
	engine := newTestRouter(&fakeConversation{}, "", "")
	rec := postForm(engine, "/webhook/whatsapp", url.Values{
		"Body": {"oi"},
		"From": {"whatsapp:+5511999888777"},
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	engine := newTestRouter(&fakeConversation{}, "", uuid.New().String())
	req := httptest.NewRequest(http.MethodGet, "/webhook/whatsapp/health", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
