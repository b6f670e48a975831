package domain

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Netflix", "netflix"},
		{"acute accent", "Café", "cafe"},
		{"already folded", "cafe", "cafe"},
		{"padding and caps", "  CAFE  ", "cafe"},
		{"internal whitespace collapsed", "Amazon \t  Prime\nVideo", "amazon prime video"},
		{"decomposed input", "Cafe\u0301", "cafe"},
		{"multiple diacritics", "Crème Brûlée", "creme brulee"},
		{"non latin kept", "Ютуб", "ютуб"},
		{"empty", "", ""},
		{"only spaces", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	inputs := []string{"Café", "  Über  Eats ", "WhatsApp", "Ñandú"}
	for _, in := range inputs {
		once := NormalizeName(in)
		if twice := NormalizeName(once); twice != once {
			t.Errorf("NormalizeName not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
