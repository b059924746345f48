package sanitizer

import (
	"strings"
	"unicode"
)

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeCity(city string) string {
	return TrimAndNormalize(city)
}

// NormalizeCityKey is the search form of a city name. Stored keys and query
// prefixes go through the same function so prefix matching is exact.
func NormalizeCityKey(city string) string {
	return strings.ToLower(TrimAndNormalize(city))
}

// NormalizeCode upper-cases an airport/station code or a vehicle number and
// strips spaces.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), ""))
}

func NormalizeSeatNumber(seat string) string {
	return NormalizeCode(seat)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeMode(mode string) string {
	return strings.ToLower(strings.TrimSpace(mode))
}
