package utils

import "strings"

// Indian mobile numbers: +91 followed by ten digits, first of which is 6-9.
// Phone numbers are validated before any verification-service call is made.

// NormalizePhone trims whitespace and prefixes bare ten-digit numbers with
// +91. Returns the normalized number and whether it is valid.
func NormalizePhone(phone string) (string, bool) {
	p := strings.TrimSpace(phone)
	p = strings.ReplaceAll(p, " ", "")
	p = strings.ReplaceAll(p, "-", "")
	if len(p) == 10 && allDigits(p) {
		p = "+91" + p
	}
	if !strings.HasPrefix(p, "+91") {
		return "", false
	}
	rest := p[3:]
	if len(rest) != 10 || !allDigits(rest) {
		return "", false
	}
	if rest[0] < '6' || rest[0] > '9' {
		return "", false
	}
	return p, true
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
