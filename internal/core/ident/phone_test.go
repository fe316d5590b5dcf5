package ident

import (
	"reflect"
	"testing"
)

func TestPhoneCandidates(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "formatted with country code",
			raw:  "+7 (912) 345-67-89",
			want: []string{"+79123456789", "79123456789", "89123456789", "9123456789"},
		},
		{
			name: "eight prefix",
			raw:  "89123456789",
			want: []string{"+79123456789", "79123456789", "89123456789", "9123456789"},
		},
		{
			name: "bare ten digits",
			raw:  "9123456789",
			want: []string{"+79123456789", "79123456789", "89123456789", "9123456789"},
		},
		{
			name: "too short",
			raw:  "12345",
			want: nil,
		},
		{
			name: "eleven digits with foreign prefix",
			raw:  "19123456789",
			want: nil,
		},
		{
			name: "empty",
			raw:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PhoneCandidates(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("PhoneCandidates(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestPhonesEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"+79123456789", "89123456789", true},
		{"79123456789", "9123456789", true},
		{"8 (912) 345-67-89", "+7 912 345 67 89", true},
		{"+79123456789", "+79123456780", false},
		{"9123456789", "", false},
		{"", "", false},
		{"12345", "12345", false},
	}

	for _, tt := range tests {
		if got := PhonesEqual(tt.a, tt.b); got != tt.want {
			t.Errorf("PhonesEqual(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	if got := NormalizePhone("8 (912) 345-67-89"); got != "+79123456789" {
		t.Fatalf("NormalizePhone = %q, want +79123456789", got)
	}
	if got := NormalizePhone("nonsense"); got != "" {
		t.Fatalf("NormalizePhone on garbage = %q, want empty", got)
	}
}

func TestValidPhone(t *testing.T) {
	valid := []string{"+79123456789", "89123456789", "79123456789", "+7 (912) 345-67-89"}
	for _, phone := range valid {
		if !ValidPhone(phone) {
			t.Errorf("ValidPhone(%q) = false, want true", phone)
		}
	}

	invalid := []string{"", "9123456789", "+7912345678", "+19123456789"}
	for _, phone := range invalid {
		if ValidPhone(phone) {
			t.Errorf("ValidPhone(%q) = true, want false", phone)
		}
	}
}
