package contact

import "regexp"

// CountryRule describes the accepted mobile number shape for one calling code.
// Lengths and patterns apply to the national number without the calling code.
type CountryRule struct {
	Code        string `json:"code"`
	Region      string `json:"region"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	MinLength   int    `json:"minLength"`
	MaxLength   int    `json:"maxLength"`
	Example     string `json:"example"`

	pattern *regexp.Regexp
}

func rule(code, region, name, display string, min, max int, pattern, example string) CountryRule {
	return CountryRule{
		Code:        code,
		Region:      region,
		Name:        name,
		DisplayName: display,
		MinLength:   min,
		MaxLength:   max,
		Example:     example,
		pattern:     regexp.MustCompile(pattern),
	}
}

var countryRules = []CountryRule{
	// Latin America
	rule("+52", "MX", "Mexico", "México", 10, 10, `^[1-9]\d{9}$`, "5512345678"),
	rule("+56", "CL", "Chile", "Chile", 9, 9, `^9\d{8}$`, "912345678"),
	rule("+58", "VE", "Venezuela", "Venezuela", 10, 10, `^(?:412|414|416|424|426)\d{7}$`, "4121234567"),
	rule("+54", "AR", "Argentina", "Argentina", 10, 11, `^9?[1-9]\d{9}$`, "91123456789"),
	rule("+57", "CO", "Colombia", "Colombia", 10, 10, `^3\d{9}$`, "3001234567"),
	rule("+51", "PE", "Peru", "Perú", 9, 9, `^9\d{8}$`, "912345678"),
	rule("+593", "EC", "Ecuador", "Ecuador", 9, 9, `^9\d{8}$`, "991234567"),
	rule("+591", "BO", "Bolivia", "Bolivia", 8, 8, `^[67]\d{7}$`, "71234567"),
	rule("+595", "PY", "Paraguay", "Paraguay", 9, 9, `^9\d{8}$`, "981123456"),
	rule("+598", "UY", "Uruguay", "Uruguay", 8, 8, `^9\d{7}$`, "94123456"),
	rule("+55", "BR", "Brazil", "Brasil", 11, 11, `^[1-9]{2}9\d{8}$`, "11912345678"),
	rule("+506", "CR", "Costa Rica", "Costa Rica", 8, 8, `^[5-8]\d{7}$`, "83123456"),
	rule("+507", "PA", "Panama", "Panamá", 8, 8, `^6\d{7}$`, "61234567"),
	rule("+502", "GT", "Guatemala", "Guatemala", 8, 8, `^[3-5]\d{7}$`, "51234567"),
	rule("+503", "SV", "El Salvador", "El Salvador", 8, 8, `^[67]\d{7}$`, "70123456"),
	rule("+504", "HN", "Honduras", "Honduras", 8, 8, `^[3789]\d{7}$`, "91234567"),
	rule("+505", "NI", "Nicaragua", "Nicaragua", 8, 8, `^[578]\d{7}$`, "81234567"),
	rule("+53", "CU", "Cuba", "Cuba", 8, 8, `^5\d{7}$`, "51234567"),

	// North America
	rule("+1", "US", "United States / Canada", "Estados Unidos / Canadá", 10, 10, `^[2-9]\d{2}[2-9]\d{6}$`, "2015550123"),

	// Europe
	rule("+34", "ES", "Spain", "España", 9, 9, `^[67]\d{8}$`, "612345678"),
	rule("+44", "GB", "United Kingdom", "Reino Unido", 10, 10, `^7\d{9}$`, "7400123456"),
	rule("+33", "FR", "France", "Francia", 9, 9, `^[67]\d{8}$`, "612345678"),
	rule("+49", "DE", "Germany", "Alemania", 10, 11, `^1[5-7]\d{8,9}$`, "15123456789"),
	rule("+39", "IT", "Italy", "Italia", 9, 10, `^3\d{8,9}$`, "3123456789"),
	rule("+351", "PT", "Portugal", "Portugal", 9, 9, `^9[1236]\d{7}$`, "912345678"),
	rule("+41", "CH", "Switzerland", "Suiza", 9, 9, `^7[5-9]\d{7}$`, "781234567"),
	rule("+31", "NL", "Netherlands", "Países Bajos", 9, 9, `^6\d{8}$`, "612345678"),
	rule("+32", "BE", "Belgium", "Bélgica", 9, 9, `^4[5-9]\d{7}$`, "470123456"),
	rule("+7", "RU", "Russia", "Rusia", 10, 10, `^9\d{9}$`, "9123456789"),

	// Rest of the world
	rule("+61", "AU", "Australia", "Australia", 9, 9, `^4\d{8}$`, "412345678"),
	rule("+64", "NZ", "New Zealand", "Nueva Zelanda", 8, 10, `^2\d{7,9}$`, "211234567"),
	rule("+81", "JP", "Japan", "Japón", 10, 10, `^[789]0\d{8}$`, "9012345678"),
	rule("+86", "CN", "China", "China", 11, 11, `^1[3-9]\d{9}$`, "13123456789"),
	rule("+91", "IN", "India", "India", 10, 10, `^[6-9]\d{9}$`, "9123456789"),
	rule("+971", "AE", "United Arab Emirates", "Emiratos Árabes Unidos", 9, 9, `^5[024568]\d{7}$`, "501234567"),
	rule("+972", "IL", "Israel", "Israel", 9, 9, `^5\d{8}$`, "501234567"),
	rule("+27", "ZA", "South Africa", "Sudáfrica", 9, 9, `^[6-8]\d{8}$`, "711234567"),
}

// genericRule applies to calling codes missing from the table.
var genericRule = CountryRule{
	MinLength: 8,
	MaxLength: 15,
	Example:   "12345678",
	pattern:   regexp.MustCompile(`^\d{8,15}$`),
}

var rulesByCode = func() map[string]CountryRule {
	m := make(map[string]CountryRule, len(countryRules))
	for _, r := range countryRules {
		m[r.Code] = r
	}
	return m
}()

// Countries returns a copy of the country table in display order.
func Countries() []CountryRule {
	out := make([]CountryRule, len(countryRules))
	copy(out, countryRules)
	return out
}

// LookupCountry finds the rule for a calling code such as "+52" or "52".
func LookupCountry(code string) (CountryRule, bool) {
	r, ok := rulesByCode[normalizeCode(code)]
	return r, ok
}

func normalizeCode(code string) string {
	d := digitsOnly(code)
	if d == "" {
		return ""
	}
	return "+" + d
}
