// Package whatsapp sends outbound messages through a WhatsApp gateway, with
// an in-memory simulator for development environments.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"leadzap_backend/platform/config"
	"leadzap_backend/platform/logger"
	"leadzap_backend/platform/phone"
)

// Sender delivers an outbound WhatsApp message and returns the provider's
// message id.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

// New returns the gateway client, or the simulator when WHATSAPP_SIMULATE is
// set. The simulator needs no gateway credentials.
func New(cfg config.WhatsAppConfig, log *logger.Logger) (Sender, error) {
	if cfg.GetWhatsAppSimulate() {
		sim := NewSimulator(log)
		if path := cfg.GetWhatsAppScriptPath(); path != "" {
			script, err := LoadScript(path)
			if err != nil {
				return nil, fmt.Errorf("load whatsapp script: %w", err)
			}
			sim.SetScript(script)
		}
		return sim, nil
	}

	client := NewClient(cfg, log)
	if client == nil {
		return nil, fmt.Errorf("WHATSAPP_GATEWAY_URL is required unless WHATSAPP_SIMULATE is set")
	}
	return client, nil
}

// Client talks to a Twilio-compatible WhatsApp gateway.
type Client struct {
	baseURL    string
	apiKey     string
	fromNumber string
	http       *http.Client
	log        *logger.Logger
}

type sendRequest struct {
	From    string `json:"from,omitempty"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type sendResponse struct {
	Sid       string `json:"sid"`
	MessageID string `json:"message_id"`
}

func NewClient(cfg config.WhatsAppConfig, log *logger.Logger) *Client {
	if cfg.GetWhatsAppURL() == "" {
		return nil
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.GetWhatsAppURL(), "/"),
		apiKey:     cfg.GetWhatsAppKey(),
		fromNumber: cfg.GetWhatsAppFromNumber(),
		http:       &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

func (c *Client) Send(ctx context.Context, to, body string) (string, error) {
	normalized := phone.NormalizeE164(to)

	payload, err := json.Marshal(sendRequest{
		From:    c.fromNumber,
		Phone:   strings.TrimPrefix(normalized, "+"),
		Message: body,
	})
	if err != nil {
		return "", fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	url := fmt.Sprintf("%s/send/message", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", formatAuthHeader(c.apiKey))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("whatsapp gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed sendResponse
	_ = json.Unmarshal(data, &parsed)
	sid := parsed.Sid
	if sid == "" {
		sid = parsed.MessageID
	}

	c.log.WhatsAppEvent("message_sent", normalized, true, "")
	return sid, nil
}

func formatAuthHeader(apiKey string) string {
	if strings.HasPrefix(strings.ToLower(apiKey), "basic ") {
		return apiKey
	}

	encoded := base64.StdEncoding.EncodeToString([]byte(apiKey))
	return "Basic " + encoded
}
