package qualification

import (
	"testing"

	"leadzap_backend/internal/scoring"
)

func TestExtractChoice(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    scoring.Choice
		ok      bool
	}{
		{"bare letter upper", "A", scoring.ChoiceA, true},
		{"bare letter lower", "c", scoring.ChoiceC, true},
		{"letter with whitespace", "  b  ", scoring.ChoiceB, true},
		{"letter in sentence", "opção B", scoring.ChoiceB, true},
		{"letter with parenthesis", "d) mais de 500 mil", scoring.ChoiceD, true},
		{"amount above range", "tenho mais de 600 mil", scoring.ChoiceD, true},
		{"amount five hundred", "uns 500 mil guardados", scoring.ChoiceC, true},
		{"amount two hundred", "por volta de 200", scoring.ChoiceB, true},
		{"amount up to fifty", "até 50 mil", scoring.ChoiceA, true},
		{"goal retirement", "quero garantir minha aposentadoria", scoring.ChoiceA, true},
		{"goal growth", "crescimento do capital", scoring.ChoiceB, true},
		{"goal reserve", "reserva de emergência", scoring.ChoiceC, true},
		{"goal speculation", "especulação mesmo", scoring.ChoiceD, true},
		{"urgency this week", "quero começar esta semana", scoring.ChoiceA, true},
		{"urgency this month", "este mês ainda", scoring.ChoiceB, true},
		{"urgency three months", "em 3 meses", scoring.ChoiceC, true},
		{"article a wins over content", "daqui a 3 meses", scoring.ChoiceA, true},
		{"urgency no rush", "sem pressa nenhuma", scoring.ChoiceD, true},
		{"interest urgent yes", "sim, urgente por favor", scoring.ChoiceA, true},
		{"interest possible yes", "sim, quando possível", scoring.ChoiceB, true},
		{"interest possible unaccented", "sim, quando possivel", scoring.ChoiceB, true},
		{"interest maybe", "talvez mais pra frente", scoring.ChoiceC, true},
		{"interest no", "não, obrigado", scoring.ChoiceD, true},
		{"bare yes is ambiguous", "sim", "", false},
		{"empty", "", "", false},
		{"blank", "   ", "", false},
		{"unrecognized", "bom dia, tudo bem?", "", false},
		{"letter outside range", "E", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractChoice(tc.message)
			if ok != tc.ok {
				t.Fatalf("ExtractChoice(%q) ok = %v, want %v", tc.message, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Errorf("ExtractChoice(%q) = %q, want %q", tc.message, got, tc.want)
			}
		})
	}
}

func TestExtractChoice_AmountOrderBeatsSubstring(t *testing.T) {
	// "500" contains "50"; the larger bracket must win.
	got, ok := ExtractChoice("tenho 500 mil")
	if !ok || got != scoring.ChoiceC {
		t.Fatalf("got (%q, %v), want (C, true)", got, ok)
	}
}

func TestExtractChoice_AmountBeatsYes(t *testing.T) {
	// An affirmative wrapping an amount answers patrimônio, not interesse.
	got, ok := ExtractChoice("sim, tenho mais de 500 mil")
	if !ok || got != scoring.ChoiceD {
		t.Fatalf("got (%q, %v), want (D, true)", got, ok)
	}
}
