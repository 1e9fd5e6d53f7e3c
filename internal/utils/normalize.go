package utils

import "strings"

// Romanian diacritics folded for comparison purposes. Both the cedilla
// (ş/ţ) and comma-below (ș/ț) forms appear in real-world data.
var diacritics = strings.NewReplacer(
	"ă", "a",
	"â", "a",
	"î", "i",
	"ș", "s",
	"ş", "s",
	"ț", "t",
	"ţ", "t",
)

// Normalize lowercases s and strips Romanian diacritics. It must be
// applied to both sides of every substring comparison in the query
// pipeline, otherwise matches are silently missed.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	return diacritics.Replace(strings.ToLower(s))
}

// CityOf returns the trailing comma-separated segment of an address,
// which the catalog treats as the city.
func CityOf(address string) string {
	parts := strings.Split(address, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

// SimplifyCategory reduces a compound category string like
// "cafenea / specialty coffee" or "club - muzica live" to its first
// segment, for compact prompt serialization.
func SimplifyCategory(category string) string {
	simplified := category
	for _, sep := range []string{"/", " - ", "|"} {
		if idx := strings.Index(simplified, sep); idx >= 0 {
			simplified = simplified[:idx]
		}
	}
	return strings.TrimSpace(simplified)
}
