// Package contact holds the syntactic validators applied to intake form data.
// Every function is total: bad input yields false or an invalid result, never a panic.
package contact

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxLocalPartLength = 64
	maxDomainLength    = 253
)

// ValidateEmail checks the address shape only; deliverability is not verified.
func ValidateEmail(input string) bool {
	email := strings.TrimSpace(input)
	if strings.Count(email, "@") != 1 {
		return false
	}
	if strings.IndexFunc(email, unicode.IsSpace) >= 0 {
		return false
	}

	at := strings.IndexByte(email, '@')
	local, domain := email[:at], email[at+1:]

	if len(local) < 1 || len(local) > maxLocalPartLength || !validDots(local) {
		return false
	}
	if len(domain) < 1 || len(domain) > maxDomainLength || !validDots(domain) {
		return false
	}
	if !strings.Contains(domain, ".") {
		return false
	}

	tld := domain[strings.LastIndexByte(domain, '.')+1:]
	if len(tld) < 2 {
		return false
	}
	return !allDigits(tld)
}

// ValidateName requires at least two characters after trimming.
func ValidateName(input string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(input)) >= 2
}

func validDots(s string) bool {
	return !strings.HasPrefix(s, ".") && !strings.HasSuffix(s, ".") && !strings.Contains(s, "..")
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
