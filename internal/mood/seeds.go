package mood

// aliases maps mood genre spellings onto the service's seed
// vocabulary. Absent entries pass through unchanged.
var aliases = map[string]string{
	"alt-pop":           "alternative",
	"alt-rock":          "alt-rock",
	"chillhop":          "chill",
	"downtempo":         "downtempo",
	"electropop":        "electronic",
	"indie-folk":        "folk",
	"indie-pop":         "indie-pop",
	"indie-rock":        "indie-rock",
	"lo-fi":             "chill",
	"modern-rock":       "rock",
	"neo-classical":     "classical",
	"singer-songwriter": "singer-songwriter",
	"trip-hop":          "trip-hop",
}

// allowedSeeds is the seed vocabulary the recommendation endpoint
// accepts.
var allowedSeeds = map[string]bool{
	"alternative":       true,
	"indie":             true,
	"indie-pop":         true,
	"indie-rock":        true,
	"rock":              true,
	"pop":               true,
	"dance":             true,
	"edm":               true,
	"electronic":        true,
	"electropop":        true,
	"tropical-house":    true,
	"chill":             true,
	"ambient":           true,
	"classical":         true,
	"folk":              true,
	"singer-songwriter": true,
	"downtempo":         true,
	"trip-hop":          true,
}

// fallbackSeeds fills the seed set when no input genre survives
// sanitization, in fixed priority order.
var fallbackSeeds = []string{
	"indie-pop",
	"indie-rock",
	"alternative",
	"electronic",
	"rock",
	"pop",
	"chill",
	"dance",
}

// Sanitize maps mood genres onto accepted seed genres, preserving
// input order. Unknown genres are dropped after aliasing. An empty
// result is filled from the fallback list (up to 3 seeds); the final
// set is capped at 5, the most the recommendation endpoint takes.
func Sanitize(genres []string) []string {
	seeds := make([]string, 0, len(genres))
	for _, g := range genres {
		if alias, ok := aliases[g]; ok {
			g = alias
		}
		if allowedSeeds[g] {
			seeds = append(seeds, g)
		}
	}

	if len(seeds) == 0 {
		for _, s := range fallbackSeeds {
			seeds = append(seeds, s)
			if len(seeds) == 3 {
				break
			}
		}
	}

	if len(seeds) > 5 {
		seeds = seeds[:5]
	}

	return seeds
}
