package geo

import "strings"

// knownPlaces is a hand-curated set of anchor locations for the target city,
// served when the geocoding provider is unavailable. Keys are matched as
// lowercase substrings of the query.
var knownPlaces = map[string]Place{
	"airport": {
		Latitude: 22.3080, Longitude: 113.9185,
		DisplayName: "Hong Kong International Airport, 1 Sky Plaza Road, Lantau",
		Type:        "airport",
	},
	"central": {
		Latitude: 22.2813, Longitude: 114.1580,
		DisplayName: "Central MTR Station, Central, Hong Kong Island",
		Type:        "mtr_station",
	},
	"admiralty": {
		Latitude: 22.2796, Longitude: 114.1652,
		DisplayName: "Admiralty MTR Station, Admiralty, Hong Kong Island",
		Type:        "mtr_station",
	},
	"wan chai": {
		Latitude: 22.2770, Longitude: 114.1720,
		DisplayName: "Wan Chai MTR Station, Wan Chai, Hong Kong Island",
		Type:        "mtr_station",
	},
	"causeway bay": {
		Latitude: 22.2800, Longitude: 114.1850,
		DisplayName: "Causeway Bay MTR Station, Causeway Bay, Hong Kong Island",
		Type:        "mtr_station",
	},
	"tsim sha tsui": {
		Latitude: 22.2976, Longitude: 114.1722,
		DisplayName: "Tsim Sha Tsui MTR Station, Tsim Sha Tsui, Kowloon",
		Type:        "mtr_station",
	},
	"mong kok": {
		Latitude: 22.3193, Longitude: 114.1694,
		DisplayName: "Mong Kok MTR Station, Mong Kok, Kowloon",
		Type:        "mtr_station",
	},
	"bank": {
		Latitude: 22.2810, Longitude: 114.1590,
		DisplayName: "HSBC Main Building, 1 Queen's Road Central, Central",
		Type:        "bank",
	},
	"government": {
		Latitude: 22.2801, Longitude: 114.1652,
		DisplayName: "Immigration Tower, 7 Gloucester Road, Wan Chai",
		Type:        "government_office",
	},
}

// fallbackPlace looks a query up in the curated table.
func fallbackPlace(query string) (*Place, bool) {
	q := strings.ToLower(query)
	for key, p := range knownPlaces {
		if strings.Contains(q, key) {
			place := p
			return &place, true
		}
	}
	return nil, false
}
