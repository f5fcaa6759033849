package places

import (
	"math"
	"strings"

	"github.com/agext/levenshtein"
)

// Place-match scoring. A found place carries most of the trust; fuzzy name
// and address agreement plus a listed website refine it.
const (
	scoreFound       = 0.40
	weightNameFuzzy  = 0.20
	weightAddrFuzzy  = 0.25
	scoreHasWebsite  = 0.15
	geocodeOnlyScore = 0.35
)

// scoreLocation computes the blended match score for a found place in-place.
func scoreLocation(loc *Location, name, address string) {
	score := scoreFound

	loc.NameMatch = round3(fuzzy(name, loc.PlaceName))
	score += loc.NameMatch * weightNameFuzzy

	loc.AddressMatch = round3(fuzzy(address, loc.FormattedAddress))
	score += loc.AddressMatch * weightAddrFuzzy

	if loc.Website != "" {
		score += scoreHasWebsite
	}

	loc.MatchScore = round3(math.Min(score, 1.0))
}

func fuzzy(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	return levenshtein.Similarity(a, b, nil)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
