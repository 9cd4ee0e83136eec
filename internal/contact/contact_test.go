package contact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@gmail.com",
		"nombre.apellido@empresa.com.mx",
		"a@b.co",
		"  spaced@trim.io  ",
		"user+tag@sub.domain.org",
	}
	for _, e := range valid {
		assert.True(t, ValidateEmail(e), e)
	}

	invalid := []string{
		"",
		"jaj@hila",
		"a@b.12",
		"no-at-sign.com",
		"two@@signs.com",
		"a@b@c.com",
		".lead@mail.com",
		"trail.@mail.com",
		"dou..ble@mail.com",
		"user@.mail.com",
		"user@mail.com.",
		"user@mail..com",
		"user@mail.c",
		"@mail.com",
		"user@",
		"us er@mail.com",
		strings.Repeat("a", 65) + "@mail.com",
		"user@" + strings.Repeat("a", 250) + ".com",
	}
	for _, e := range invalid {
		assert.False(t, ValidateEmail(e), e)
	}
}

func TestValidateName(t *testing.T) {
	assert.True(t, ValidateName("Al"))
	assert.True(t, ValidateName("  José  "))
	assert.False(t, ValidateName(" J "))
	assert.False(t, ValidateName(""))
	assert.True(t, ValidateName("Ñu"))
}

func TestEveryCountryExampleIsValid(t *testing.T) {
	for _, c := range Countries() {
		res := ValidatePhone(c.Example, c.Code)
		assert.True(t, res.IsValid, "%s %s: %s", c.Code, c.Example, res.Error)
		assert.Equal(t, c.Name, res.Country)
	}
}

func TestCountryTableSize(t *testing.T) {
	assert.GreaterOrEqual(t, len(Countries()), 35)
}

func TestValidatePhoneMexico(t *testing.T) {
	res := ValidatePhone("5522838461", "+52")
	assert.True(t, res.IsValid)
	assert.Equal(t, "Mexico", res.Country)
	assert.Equal(t, "+525522838461", res.FormattedNumber)

	res = ValidatePhone("554589624", "+52")
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Error, "10 dígitos")
	assert.Contains(t, res.Error, "5512345678")

	res = ValidatePhone("0512345678", "+52")
	assert.False(t, res.IsValid, "mexican numbers cannot start with 0")
}

func TestValidatePhoneLengthBoundaries(t *testing.T) {
	for _, c := range Countries() {
		short := c.Example[:c.MinLength-1]
		assert.False(t, ValidatePhone(short, c.Code).IsValid, "%s accepted %q", c.Code, short)
	}
}

func TestValidatePhoneFormatting(t *testing.T) {
	res := ValidatePhone("(55) 1234-5678", "52")
	assert.True(t, res.IsValid)
	assert.Equal(t, "+525512345678", res.FormattedNumber)
}

func TestValidatePhoneStripsDuplicatedCallingCode(t *testing.T) {
	res := ValidatePhone("+52 5512345678", "+52")
	assert.True(t, res.IsValid, res.Error)
	assert.Equal(t, "+525512345678", res.FormattedNumber)

	res = ValidatePhone("56912345678", "+56")
	assert.True(t, res.IsValid, res.Error)
}

func TestValidatePhoneCountrySpecificRules(t *testing.T) {
	assert.False(t, ValidatePhone("812345678", "+56").IsValid, "chilean mobiles start with 9")
	assert.True(t, ValidatePhone("4141234567", "+58").IsValid)
	assert.False(t, ValidatePhone("4131234567", "+58").IsValid, "413 is not a venezuelan operator prefix")
	assert.False(t, ValidatePhone("2121234567", "+58").IsValid)
}

func TestValidatePhoneUnknownCountryFallsBack(t *testing.T) {
	assert.True(t, ValidatePhone("12345678", "+999").IsValid)
	assert.True(t, ValidatePhone("123456789012345", "+999").IsValid)
	assert.False(t, ValidatePhone("1234567", "+999").IsValid)
	assert.False(t, ValidatePhone("1234567890123456", "+999").IsValid)
}

func TestValidatePhoneEmpty(t *testing.T) {
	res := ValidatePhone("  ", "+52")
	assert.False(t, res.IsValid)
	assert.NotEmpty(t, res.Error)
}

func TestLookupCountry(t *testing.T) {
	c, ok := LookupCountry("52")
	assert.True(t, ok)
	assert.Equal(t, "MX", c.Region)

	_, ok = LookupCountry("+000")
	assert.False(t, ok)
}
