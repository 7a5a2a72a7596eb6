// Package country normalizes ISO-3166 alpha-2 codes and evaluates the
// configured whitelist/blacklist filter.
package country

import (
	"strings"

	"github.com/xctd-glitch/trackng.app/models"
)

// Unknown is the sentinel used for codes that fail normalization.
const Unknown = "XX"

// Normalize uppercases a country code and replaces anything that is not
// exactly two ASCII letters with the Unknown sentinel.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return Unknown
	}
	for i := 0; i < 2; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return Unknown
		}
	}
	return code
}

// Allowed reports whether a (normalized) country code passes the filter.
// Mode "all" admits everything, including the Unknown sentinel; list
// modes evaluate membership against normalized entries.
func Allowed(code string, mode models.CountryFilterMode, list []string) bool {
	switch mode {
	case models.FilterWhitelist:
		return contains(list, code)
	case models.FilterBlacklist:
		return !contains(list, code)
	default:
		return true
	}
}

func contains(list []string, code string) bool {
	for _, entry := range list {
		if Normalize(entry) == code {
			return true
		}
	}
	return false
}
