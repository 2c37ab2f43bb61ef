package geo

import "strings"

// knownDistricts is the curated neighborhood table for the target city.
// Deduplication of extended suggestions keys on these names.
var knownDistricts = []string{
	"Wan Chai", "Central", "Admiralty", "Causeway Bay", "Sheung Wan",
	"Mid-Levels", "Quarry Bay", "Tai Koo", "Tsim Sha Tsui", "Mong Kok",
	"Yau Ma Tei", "Jordan", "Kowloon", "Sha Tin", "Tuen Mun",
}

// District extracts a neighborhood name from a free-text address. Returns
// "unknown" when no known district appears.
func District(address string) string {
	lower := strings.ToLower(address)
	for _, d := range knownDistricts {
		if strings.Contains(lower, strings.ToLower(d)) {
			return d
		}
	}
	return "unknown"
}
