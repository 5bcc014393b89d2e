package domain

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusNovo, StatusEmConversa, true},
		{StatusEmConversa, StatusQualificado, true},
		{StatusEmConversa, StatusDesqualificado, true},
		{StatusDesqualificado, StatusEmConversa, true},
		{StatusQualificado, StatusEmConversa, true},

		{StatusNovo, StatusQualificado, false},
		{StatusNovo, StatusDesqualificado, false},
		{StatusQualificado, StatusDesqualificado, false},
		{StatusQualificado, StatusNovo, false},
		{StatusEmConversa, StatusNovo, false},
		{StatusDesqualificado, StatusNovo, false},
	}

	for _, tc := range tests {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCanManuallyQualify(t *testing.T) {
	tests := []struct {
		from Status
		want bool
	}{
		{StatusNovo, true},
		{StatusEmConversa, true},
		{StatusDesqualificado, true},
		{StatusQualificado, false},
		{Status("unknown"), false},
	}

	for _, tc := range tests {
		if got := CanManuallyQualify(tc.from); got != tc.want {
			t.Errorf("CanManuallyQualify(%s) = %v, want %v", tc.from, got, tc.want)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusNovo, StatusEmConversa, StatusQualificado, StatusDesqualificado} {
		if !s.Valid() {
			t.Errorf("Valid(%s) = false, want true", s)
		}
	}
	if Status("pendente").Valid() {
		t.Error("Valid(pendente) = true, want false")
	}
}
