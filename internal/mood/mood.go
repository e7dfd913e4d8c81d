// package mood maps a weather observation onto a musical profile.
package mood

import (
	"strings"

	"github.com/desertthunder/wxfm/internal/models"
)

// rule pairs condition keywords with the profile they select.
type rule struct {
	keywords []string
	profile  models.Mood
}

// rules are evaluated in order; the first keyword found in the
// condition wins, so "light rain and clouds" resolves as rain.
var rules = []rule{
	{
		keywords: []string{"thunder"},
		profile: models.Mood{
			Name:    "thunder",
			Genres:  []string{"dark-pop", "trip-hop", "alt-rock"},
			Energy:  models.Range{Min: 0.5, Max: 0.7},
			Valence: models.Range{Min: 0.2, Max: 0.4},
			Tempo:   models.TempoRange{Min: 90, Max: 115},
		},
	},
	{
		keywords: []string{"rain", "drizzle"},
		profile: models.Mood{
			Name:    "rain",
			Genres:  []string{"lo-fi", "acoustic", "indie-folk"},
			Energy:  models.Range{Min: 0.3, Max: 0.5},
			Valence: models.Range{Min: 0.3, Max: 0.5},
			Tempo:   models.TempoRange{Min: 70, Max: 100},
		},
	},
	{
		keywords: []string{"snow"},
		profile: models.Mood{
			Name:    "snow",
			Genres:  []string{"acoustic", "singer-songwriter", "folk"},
			Energy:  models.Range{Min: 0.3, Max: 0.5},
			Valence: models.Range{Min: 0.4, Max: 0.6},
			Tempo:   models.TempoRange{Min: 70, Max: 100},
		},
	},
	{
		keywords: []string{"mist", "fog", "haze"},
		profile: models.Mood{
			Name:    "mist",
			Genres:  []string{"lo-fi", "chill", "downtempo"},
			Energy:  models.Range{Min: 0.25, Max: 0.5},
			Valence: models.Range{Min: 0.35, Max: 0.55},
			Tempo:   models.TempoRange{Min: 70, Max: 95},
		},
	},
	{
		keywords: []string{"cloud"},
		profile: models.Mood{
			Name:    "cloud",
			Genres:  []string{"alternative", "indie-rock", "electronic"},
			Energy:  models.Range{Min: 0.5, Max: 0.7},
			Valence: models.Range{Min: 0.45, Max: 0.65},
			Tempo:   models.TempoRange{Min: 95, Max: 115},
		},
	},
}

var hotProfile = models.Mood{
	Name:    "hot",
	Genres:  []string{"pop", "dance", "edm", "tropical-house"},
	Energy:  models.Range{Min: 0.75, Max: 0.95},
	Valence: models.Range{Min: 0.6, Max: 0.9},
	Tempo:   models.TempoRange{Min: 110, Max: 130},
}

var coldProfile = models.Mood{
	Name:    "cold",
	Genres:  []string{"ambient", "classical", "chill"},
	Energy:  models.Range{Min: 0.2, Max: 0.45},
	Valence: models.Range{Min: 0.3, Max: 0.5},
	Tempo:   models.TempoRange{Min: 60, Max: 90},
}

var defaultProfile = models.Mood{
	Name:    "default",
	Genres:  []string{"indie-pop", "rock", "pop"},
	Energy:  models.Range{Min: 0.55, Max: 0.75},
	Valence: models.Range{Min: 0.55, Max: 0.8},
	Tempo:   models.TempoRange{Min: 100, Max: 120},
}

// Resolve returns the mood profile for a weather condition and
// temperature. Condition matching is case-insensitive and checked in
// rule order; when no keyword matches, temperature thresholds select
// the hot (>= 25), cold (<= 5), or default profile. A nil temperature
// resolves to the default profile.
func Resolve(condition string, tempC *float64) models.Mood {
	cond := strings.ToLower(condition)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(cond, kw) {
				return clone(r.profile)
			}
		}
	}

	if tempC != nil {
		if *tempC >= 25 {
			return clone(hotProfile)
		}
		if *tempC <= 5 {
			return clone(coldProfile)
		}
	}

	return clone(defaultProfile)
}

// clone copies the profile so callers cannot mutate the shared tables.
func clone(m models.Mood) models.Mood {
	m.Genres = append([]string(nil), m.Genres...)
	return m
}
