package ident

import "testing"

func TestNormalizeTaxID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"7707083893", "7707083893"},
		{" 7707-08-38-93 ", "7707083893"},
		{"ИНН 7707083893", "7707083893"},
		{"no digits", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTaxID(tt.raw); got != tt.want {
			t.Errorf("NormalizeTaxID(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestValidTaxID(t *testing.T) {
	valid := []string{
		"7707083893",   // 10-digit legal entity
		"500100732259", // 12-digit individual
		"7707-08-38-93",
	}
	for _, inn := range valid {
		if !ValidTaxID(inn) {
			t.Errorf("ValidTaxID(%q) = false, want true", inn)
		}
	}

	invalid := []string{
		"7707083894",   // bad control digit
		"500100732258", // bad control digit
		"770708389",    // wrong length
		"",
	}
	for _, inn := range invalid {
		if ValidTaxID(inn) {
			t.Errorf("ValidTaxID(%q) = true, want false", inn)
		}
	}
}
