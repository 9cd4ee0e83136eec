package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/edicionpersuasiva/crm/internal/contact"
)

const (
	maxNameLength   = 200
	maxAnswerLength = 2000
	minPasswordLen  = 8
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateCaptureLeadInput checks the intake answers. The returned phone is
// the normalised E.164 number when the phone is valid.
func ValidateCaptureLeadInput(input CaptureLeadInput) ([]ValidationError, string) {
	var errors []ValidationError

	if !contact.ValidateName(input.Name) {
		errors = append(errors, ValidationError{"name", "debe tener al menos 2 caracteres"})
	} else if utf8.RuneCountInString(input.Name) > maxNameLength {
		errors = append(errors, ValidationError{"name", "no puede superar 200 caracteres"})
	}

	if strings.TrimSpace(input.Email) == "" {
		errors = append(errors, ValidationError{"email", "es obligatorio"})
	} else if !contact.ValidateEmail(input.Email) {
		errors = append(errors, ValidationError{"email", "no es un email válido"})
	}

	var phone string
	if strings.TrimSpace(input.CountryCode) == "" {
		errors = append(errors, ValidationError{"countryCode", "es obligatorio"})
	} else {
		res := contact.ValidatePhone(input.Phone, input.CountryCode)
		if !res.IsValid {
			errors = append(errors, ValidationError{"phone", res.Error})
		} else {
			phone = res.FormattedNumber
		}
	}

	answers := map[string]string{
		"role":       input.Role,
		"level":      input.Level,
		"software":   input.Software,
		"clients":    input.Clients,
		"investment": input.Investment,
	}
	for _, field := range []string{"role", "level", "software", "clients", "investment"} {
		if strings.TrimSpace(answers[field]) == "" {
			errors = append(errors, ValidationError{field, "selecciona una opción"})
		}
	}
	if utf8.RuneCountInString(input.Why) > maxAnswerLength {
		errors = append(errors, ValidationError{"why", "no puede superar 2000 caracteres"})
	}

	return errors, phone
}

func validatePassword(password string) []ValidationError {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return []ValidationError{{"password", "debe tener al menos 8 caracteres"}}
	}
	return nil
}
