// Package ident canonicalizes the noisy identifiers used to match
// local chat users against remote directory records: Russian-style
// phone numbers and tax ids (INN). Everything here is pure; malformed
// input yields an empty result, never an error.
package ident

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`\D`)

// PhoneCandidates expands a raw phone number into every equivalent
// wire form a directory search may have stored: +7XXXXXXXXXX,
// 7XXXXXXXXXX, 8XXXXXXXXXX and the bare 10-digit tail. Callers probe a
// search endpoint with each in order. Returns nil when the input does
// not look like a usable number.
func PhoneCandidates(raw string) []string {
	digits := nonDigits.ReplaceAllString(raw, "")

	var tail string
	switch {
	case len(digits) == 11 && (digits[0] == '7' || digits[0] == '8'):
		tail = digits[1:]
	case len(digits) == 10:
		tail = digits
	default:
		return nil
	}

	return []string{
		"+7" + tail,
		"7" + tail,
		"8" + tail,
		tail,
	}
}

// NormalizePhone reduces a raw phone number to the canonical
// +7XXXXXXXXXX form, or returns the empty string when the input cannot
// be normalized.
func NormalizePhone(raw string) string {
	candidates := PhoneCandidates(raw)
	if candidates == nil {
		return ""
	}
	return candidates[0]
}

// PhonesEqual compares two phone numbers by their last ten significant
// digits, tolerating country-code and prefix noise ("8...", "7...",
// "+7...").
func PhonesEqual(a, b string) bool {
	ta := lastDigits(a, 10)
	tb := lastDigits(b, 10)
	if ta == "" || tb == "" {
		return false
	}
	return ta == tb
}

// ValidPhone reports whether raw is a plausible Russian-style number.
func ValidPhone(raw string) bool {
	clean := strings.Map(func(r rune) rune {
		if r == '+' || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, raw)

	switch {
	case strings.HasPrefix(clean, "+7") && len(clean) == 12:
		return true
	case strings.HasPrefix(clean, "8") && len(clean) == 11:
		return true
	case strings.HasPrefix(clean, "7") && len(clean) == 11:
		return true
	}
	return false
}

func lastDigits(raw string, n int) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	if len(digits) < n {
		return ""
	}
	return digits[len(digits)-n:]
}
