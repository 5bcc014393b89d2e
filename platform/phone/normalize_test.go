package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"+5511999888777", "+5511999888777"},
		{"11 99988-8777", "+5511999888777"},
		{"(11) 99988-8777", "+5511999888777"},
		{"not a number", "not a number"},
		{"  ", ""},
	}

	for _, tc := range cases {
		got := NormalizeE164(tc.input)
		if got != tc.want {
			t.Errorf("NormalizeE164(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestStripWhatsAppPrefix(t *testing.T) {
	if got := StripWhatsAppPrefix("whatsapp:+5511999888777"); got != "+5511999888777" {
		t.Fatalf("expected prefix stripped, got %q", got)
	}
	if got := StripWhatsAppPrefix("+5511999888777"); got != "+5511999888777" {
		t.Fatalf("expected number unchanged, got %q", got)
	}
}
