package ident

// NormalizeTaxID strips everything but digits from a raw tax id (INN).
// Returns the empty string when no digits remain; downstream callers
// treat empty as "cannot search".
func NormalizeTaxID(raw string) string {
	return nonDigits.ReplaceAllString(raw, "")
}

// ValidTaxID checks length and the Russian INN control sums: 10 digits
// for legal entities, 12 for individuals.
func ValidTaxID(raw string) bool {
	inn := NormalizeTaxID(raw)
	switch len(inn) {
	case 10:
		return validINN10(inn)
	case 12:
		return validINN12(inn)
	}
	return false
}

func validINN10(inn string) bool {
	coefficients := []int{2, 4, 10, 3, 5, 9, 4, 6, 8}
	return checksum(inn, coefficients) == int(inn[9]-'0')
}

func validINN12(inn string) bool {
	coefficients1 := []int{7, 2, 4, 10, 3, 5, 9, 4, 6, 8}
	coefficients2 := []int{3, 7, 2, 4, 10, 3, 5, 9, 4, 6, 8}
	return checksum(inn, coefficients1) == int(inn[10]-'0') &&
		checksum(inn, coefficients2) == int(inn[11]-'0')
}

func checksum(inn string, coefficients []int) int {
	sum := 0
	for i, coefficient := range coefficients {
		sum += coefficient * int(inn[i]-'0')
	}
	return sum % 11 % 10
}
