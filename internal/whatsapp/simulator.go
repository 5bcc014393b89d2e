package whatsapp

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"leadzap_backend/platform/logger"

	"gopkg.in/yaml.v3"
)

// Script drives the simulator's automatic lead replies. Rules are matched in
// order against the outbound message; the first hit wins.
type Script struct {
	Default string       `yaml:"default"`
	Rules   []ScriptRule `yaml:"rules"`
}

type ScriptRule struct {
	Contains string `yaml:"contains"`
	Reply    string `yaml:"reply"`
}

// LoadScript reads a simulator script from a YAML file.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, err
	}
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return Script{}, fmt.Errorf("parse script %s: %w", path, err)
	}
	return script, nil
}

// Reply returns the scripted lead answer for an outbound message, or false
// when the script has nothing to say.
func (s Script) Reply(sent string) (string, bool) {
	lower := strings.ToLower(sent)
	for _, rule := range s.Rules {
		if rule.Contains != "" && strings.Contains(lower, strings.ToLower(rule.Contains)) {
			return rule.Reply, true
		}
	}
	if s.Default != "" {
		return s.Default, true
	}
	return "", false
}

// SimulatedMessage is one entry in a simulated conversation.
type SimulatedMessage struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	Body      string    `json:"body"`
	Direction string    `json:"direction"`
	Timestamp time.Time `json:"timestamp"`
}

// Simulator records outbound messages instead of delivering them. With a
// script and an AutoReply hook it can play the lead's side of the
// conversation end to end.
type Simulator struct {
	mu            sync.Mutex
	log           *logger.Logger
	script        Script
	hasScript     bool
	counter       int
	conversations map[string][]SimulatedMessage

	// AutoReply, when set, receives the scripted lead answer for every
	// outbound message. Wire it to the inbound message handler to run whole
	// conversations without a gateway.
	AutoReply func(phone, body string)
}

func NewSimulator(log *logger.Logger) *Simulator {
	return &Simulator{
		log:           log,
		conversations: make(map[string][]SimulatedMessage),
	}
}

func (s *Simulator) SetScript(script Script) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = script
	s.hasScript = true
}

func (s *Simulator) Send(_ context.Context, to, body string) (string, error) {
	s.mu.Lock()
	s.counter++
	id := fmt.Sprintf("SIM%s%d", time.Now().Format("20060102150405"), s.counter)
	s.conversations[to] = append(s.conversations[to], SimulatedMessage{
		ID:        id,
		Phone:     to,
		Body:      body,
		Direction: "outbound",
		Timestamp: time.Now(),
	})
	script := s.script
	hasScript := s.hasScript
	autoReply := s.AutoReply
	s.mu.Unlock()

	s.log.WhatsAppEvent("simulated_send", to, true, "")

	if hasScript && autoReply != nil {
		if reply, ok := script.Reply(body); ok {
			s.recordInbound(to, reply)
			autoReply(to, reply)
		}
	}
	return id, nil
}

func (s *Simulator) recordInbound(phone, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	s.conversations[phone] = append(s.conversations[phone], SimulatedMessage{
		ID:        fmt.Sprintf("SIMRESP%d", s.counter),
		Phone:     phone,
		Body:      body,
		Direction: "inbound",
		Timestamp: time.Now(),
	})
}

// Conversation returns the recorded exchange with a phone number.
func (s *Simulator) Conversation(phone string) []SimulatedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SimulatedMessage, len(s.conversations[phone]))
	copy(out, s.conversations[phone])
	return out
}

// Clear drops all recorded conversations.
func (s *Simulator) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = make(map[string][]SimulatedMessage)
	s.counter = 0
}

var _ Sender = (*Simulator)(nil)
var _ Sender = (*Client)(nil)
