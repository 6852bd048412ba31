package validation

import (
	"regexp"
	"strings"
	"unicode"
)

// isValidEmail matches /^[^\s@]+@[^\s@]+\.[^\s@]+$/
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Display names: letters, digits, spaces, hyphens, apostrophes and dots.
var displayNameRe = regexp.MustCompile(`^[A-Za-z0-9\s\-'.]+$`)

// Ledger addresses are 20-byte hex strings with a 0x prefix.
var addressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword enforces:
// - at least 8 characters
// - contains at least one letter
// - contains at least one number
// - contains at least one special character
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

func IsValidDisplayName(name string) bool {
	return name != "" && len(name) <= 80 && displayNameRe.MatchString(name)
}

func IsValidAddress(address string) bool {
	return addressRe.MatchString(strings.TrimSpace(address))
}

// NormalizeAddress trims and lower-cases an address so lookups are case-insensitive.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// ZeroAddress is never a valid owner or recipient.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// ParseAddress normalizes address and reports whether it is a usable, non-zero address.
func ParseAddress(address string) (string, bool) {
	a := NormalizeAddress(address)
	if !IsValidAddress(a) || a == ZeroAddress {
		return "", false
	}
	return a, true
}
