package contact

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

type PhoneResult struct {
	IsValid         bool   `json:"isValid"`
	Error           string `json:"error,omitempty"`
	Country         string `json:"country,omitempty"`
	FormattedNumber string `json:"formattedNumber,omitempty"`
}

// ValidatePhone checks a national number against the rule of its calling code.
// Unknown codes fall back to a permissive 8 to 15 digit rule.
func ValidatePhone(nationalNumber, countryCallingCode string) PhoneResult {
	code := normalizeCode(countryCallingCode)
	digits := digitsOnly(nationalNumber)
	if digits == "" {
		return PhoneResult{Error: "El número de teléfono es obligatorio"}
	}

	r, known := rulesByCode[code]
	if !known {
		r = genericRule
	}
	digits = stripCallingCode(digits, code, r)

	if len(digits) < r.MinLength || len(digits) > r.MaxLength {
		return PhoneResult{Error: lengthError(r, known), Country: r.Name}
	}
	if !r.pattern.MatchString(digits) {
		return PhoneResult{Error: formatError(r, known), Country: r.Name}
	}

	return PhoneResult{
		IsValid:         true,
		Country:         r.Name,
		FormattedNumber: formatE164(code, digits),
	}
}

// stripCallingCode removes a calling code the user typed again in the
// national field, but only when the remainder still fits the rule.
func stripCallingCode(digits, code string, r CountryRule) string {
	prefix := strings.TrimPrefix(code, "+")
	if prefix == "" || len(digits) <= r.MaxLength || !strings.HasPrefix(digits, prefix) {
		return digits
	}
	rest := digits[len(prefix):]
	if len(rest) >= r.MinLength && len(rest) <= r.MaxLength {
		return rest
	}
	return digits
}

func lengthError(r CountryRule, known bool) string {
	var size string
	if r.MinLength == r.MaxLength {
		size = fmt.Sprintf("%d dígitos", r.MinLength)
	} else {
		size = fmt.Sprintf("entre %d y %d dígitos", r.MinLength, r.MaxLength)
	}
	if !known {
		return fmt.Sprintf("El número debe tener %s", size)
	}
	return fmt.Sprintf("El número para %s debe tener %s. Ejemplo: %s", r.DisplayName, size, r.Example)
}

func formatError(r CountryRule, known bool) string {
	if !known {
		return "El número solo puede contener dígitos"
	}
	return fmt.Sprintf("Formato de número inválido para %s. Ejemplo: %s", r.DisplayName, r.Example)
}

func formatE164(code, digits string) string {
	if code == "" {
		return digits
	}
	raw := code + digits
	parsed, err := phonenumbers.Parse(raw, "ZZ")
	if err != nil {
		return raw
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
