package domain

import "strings"

// Campus is one of the fixed chat rooms. Campuses are known at startup
// and never created by users.
type Campus string

const (
	CampusBulan        Campus = "bulan"
	CampusCastilla     Campus = "castilla"
	CampusMagallanes   Campus = "magallanes"
	CampusSorsogonCity Campus = "sorsogon-city"
)

func Campuses() []Campus {
	return []Campus{CampusBulan, CampusCastilla, CampusMagallanes, CampusSorsogonCity}
}

// ParseCampus normalizes and validates a campus identifier.
func ParseCampus(s string) (Campus, bool) {
	c := Campus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Campuses() {
		if c == known {
			return c, true
		}
	}
	return "", false
}
