package tax

import "strings"

// EU member states by ISO 3166-1 alpha-2 code. Anything not listed counts as
// outside the union, including unknown codes.
var euMembers = map[string]struct{}{
	"AT": {}, "BE": {}, "BG": {}, "HR": {}, "CY": {}, "CZ": {}, "DK": {},
	"EE": {}, "FI": {}, "FR": {}, "DE": {}, "GR": {}, "HU": {}, "IE": {},
	"IT": {}, "LV": {}, "LT": {}, "LU": {}, "MT": {}, "NL": {}, "PL": {},
	"PT": {}, "RO": {}, "SK": {}, "SI": {}, "ES": {}, "SE": {},
}

// IsEUMember reports whether a country code belongs to the union.
func IsEUMember(code string) bool {
	_, ok := euMembers[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}
