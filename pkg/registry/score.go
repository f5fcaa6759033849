package registry

import (
	"math"
	"strings"

	"github.com/agext/levenshtein"
)

// Candidate scoring weights. Name similarity dominates; the remaining
// attributes refine the ranking.
const (
	weightName     = 0.50
	weightTaxonomy = 0.25
	weightState    = 0.15
	weightAddress  = 0.10
	weightPhone    = 0.05
)

// scoreCandidates ranks registry results against the query and returns the
// best one with its blended match score and per-signal breakdown.
func scoreCandidates(results []apiResult, q Query) *Match {
	first, last := splitName(q.Name)

	var best *Match
	bestScore := -1.0

	for _, r := range results {
		score := 0.0
		signals := map[string]float64{}

		nameScore := (fuzzy(first, r.Basic.FirstName) + fuzzy(last, r.Basic.LastName)) / 2
		if r.Basic.OrganizationName != "" {
			if org := fuzzy(q.Name, r.Basic.OrganizationName); org > nameScore {
				nameScore = org
			}
		}
		score += nameScore * weightName
		signals["name_match"] = round3(nameScore)

		if q.Specialization != "" && len(r.Taxonomies) > 0 {
			taxScore := fuzzy(q.Specialization, r.Taxonomies[0].Desc)
			score += taxScore * weightTaxonomy
			signals["taxonomy_match"] = round3(taxScore)
		}

		loc := locationAddress(r.Addresses)
		if q.State != "" && loc != nil && strings.EqualFold(loc.State, q.State) {
			score += weightState
			signals["state_match"] = 1
		}

		if q.Address != "" && loc != nil {
			addrScore := fuzzy(q.Address, loc.Address1+" "+loc.City)
			score += addrScore * weightAddress
			signals["address_match"] = round3(addrScore)
		}

		// Full numbers rarely survive formatting differences; the last four
		// digits are stable across them.
		if q.Phone != "" && loc != nil && loc.TelephoneNumber != "" &&
			lastDigits(q.Phone, 4) == lastDigits(loc.TelephoneNumber, 4) {
			score += weightPhone
			signals["phone_match"] = 1
		}

		if score > bestScore {
			bestScore = score
			m := candidateMatch(r)
			m.MatchScore = round3(math.Min(score, 1.0))
			m.Signals = signals
			best = m
		}
	}

	if best == nil {
		return &Match{Found: false}
	}
	return best
}

// candidateMatch flattens one registry result into a Match without a score.
func candidateMatch(r apiResult) *Match {
	m := &Match{
		Found:  true,
		Number: r.Number,
	}

	switch {
	case r.Basic.OrganizationName != "":
		m.Name = r.Basic.OrganizationName
	default:
		m.Name = strings.TrimSpace(r.Basic.FirstName + " " + r.Basic.LastName)
	}

	if loc := locationAddress(r.Addresses); loc != nil {
		m.Address = strings.TrimSpace(loc.Address1 + ", " + loc.City)
		m.Phone = loc.TelephoneNumber
	}
	if len(r.Taxonomies) > 0 {
		m.Taxonomy = r.Taxonomies[0].Desc
	}
	return m
}

func locationAddress(addrs []apiAddress) *apiAddress {
	for i := range addrs {
		if addrs[i].AddressPurpose == "LOCATION" {
			return &addrs[i]
		}
	}
	if len(addrs) > 0 {
		return &addrs[0]
	}
	return nil
}

func fuzzy(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	return levenshtein.Similarity(a, b, nil)
}

func splitName(name string) (first, last string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	first = parts[0]
	if len(parts) > 1 {
		last = parts[len(parts)-1]
	}
	return first, last
}

func lastDigits(s string, n int) string {
	var digits []rune
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < n {
		return string(digits)
	}
	return string(digits[len(digits)-n:])
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
