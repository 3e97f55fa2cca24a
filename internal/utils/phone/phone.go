package phone

import "strings"

// DefaultCountryCode is the Kenyan dialing prefix used by Safaricom.
const DefaultCountryCode = "254"

// Normalize strips every non-digit from msisdn and rewrites a local number
// (leading "0") into country-code form. All other digits are preserved.
func Normalize(msisdn, countryCode string) string {
	var b strings.Builder
	b.Grow(len(msisdn) + len(countryCode))
	for _, r := range msisdn {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		return countryCode + digits[1:]
	}
	return digits
}

// IsNumeric reports whether s is a non-empty run of ASCII digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
