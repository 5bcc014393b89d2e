package whatsapp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"leadzap_backend/platform/logger"
)

func TestSimulator_RecordsConversation(t *testing.T) {
	sim := NewSimulator(logger.New("test"))
	ctx := context.Background()

	id, err := sim.Send(ctx, "+5511999888777", "Olá! Primeira pergunta...")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id == "" {
		t.Fatal("send returned empty id")
	}

	conv := sim.Conversation("+5511999888777")
	if len(conv) != 1 {
		t.Fatalf("conversation length = %d, want 1", len(conv))
	}
	if conv[0].Direction != "outbound" || conv[0].ID != id {
		t.Errorf("recorded message = %+v", conv[0])
	}

	sim.Clear()
	if len(sim.Conversation("+5511999888777")) != 0 {
		t.Error("clear did not drop the conversation")
	}
}

func TestSimulator_ScriptedAutoReply(t *testing.T) {
	sim := NewSimulator(logger.New("test"))
	sim.SetScript(Script{
		Default: "Entendi, pode continuar",
		Rules: []ScriptRule{
			{Contains: "investir hoje", Reply: "Tenho uns 300 mil"},
			{Contains: "objetivo", Reply: "Aposentadoria"},
		},
	})

	var gotPhone, gotBody string
	sim.AutoReply = func(phone, body string) {
		gotPhone = phone
		gotBody = body
	}

	if _, err := sim.Send(context.Background(), "+5511999888777", "Quanto você tem disponível para investir hoje?"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotPhone != "+5511999888777" || gotBody != "Tenho uns 300 mil" {
		t.Fatalf("auto reply = (%q, %q), want scripted answer", gotPhone, gotBody)
	}

	conv := sim.Conversation("+5511999888777")
	if len(conv) != 2 {
		t.Fatalf("conversation length = %d, want outbound plus scripted inbound", len(conv))
	}
	if conv[1].Direction != "inbound" {
		t.Errorf("second message direction = %q, want inbound", conv[1].Direction)
	}
}

func TestScript_RuleOrderAndDefault(t *testing.T) {
	script := Script{
		Default: "ok",
		Rules: []ScriptRule{
			{Contains: "objetivo", Reply: "primeiro"},
			{Contains: "objetivo com os investimentos", Reply: "segundo"},
		},
	}

	reply, ok := script.Reply("Qual seu principal objetivo com os investimentos?")
	if !ok || reply != "primeiro" {
		t.Errorf("reply = (%q, %v), want first matching rule", reply, ok)
	}

	reply, ok = script.Reply("mensagem sem regra")
	if !ok || reply != "ok" {
		t.Errorf("reply = (%q, %v), want default", reply, ok)
	}

	empty := Script{}
	if _, ok := empty.Reply("qualquer coisa"); ok {
		t.Error("empty script produced a reply")
	}
}

func TestLoadScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.yaml")
	content := `default: "Entendi"
rules:
  - contains: "investir"
    reply: "Tenho 100 mil"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}

	script, err := LoadScript(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if script.Default != "Entendi" || len(script.Rules) != 1 {
		t.Fatalf("script = %+v", script)
	}
	if script.Rules[0].Contains != "investir" {
		t.Errorf("rule = %+v", script.Rules[0])
	}

	if _, err := LoadScript(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("loading a missing script succeeded")
	}
}
