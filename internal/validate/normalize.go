// Package validate implements the validation stage: field normalization,
// format and source-agreement scoring, per-field confidence combination,
// license validity checking, and the overall validation verdict.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	honorificRE   = regexp.MustCompile(`(?i)\b(dr|drs|prof|mr|ms|mrs)\b\.?`)
	nameCharRE    = regexp.MustCompile(`[^\pL\pN\s\-.'’]`)
	digitRunRE    = regexp.MustCompile(`\d+`)
	yearsRE       = regexp.MustCompile(`(?i)(\d{1,2})\s*(?:yrs?|years?)`)
	regNoCharRE   = regexp.MustCompile(`[^A-Za-z0-9/\-\s]`)
	listSplitRE   = regexp.MustCompile(`[,/;]+`)
	whitespaceRE  = regexp.MustCompile(`\s{2,}`)
	lineBreakRE   = regexp.MustCompile(`[\r\n\t]+`)
	internalWSRE  = regexp.MustCompile(`\s+`)
	titleCaser    = cases.Title(language.English)
	maxExperience = 120
)

// NormalizeName strips honorifics and stray punctuation, title-cases each
// token and collapses internal whitespace. Empty input yields "".
func NormalizeName(raw string) string {
	if raw == "" {
		return ""
	}
	s := honorificRE.ReplaceAllString(raw, "")
	s = nameCharRE.ReplaceAllString(s, " ")

	parts := strings.Fields(s)
	for i, p := range parts {
		parts[i] = titleLetterRuns(p)
	}
	return strings.Join(parts, " ")
}

// titleLetterRuns uppercases the first letter of every letter run and
// lowercases the rest, so capitals after apostrophes and hyphens survive
// ("o'brien" becomes "O'Brien").
func titleLetterRuns(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) {
			if !prevLetter {
				r = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizePhone keeps only digit characters, preserving a single leading
// "+" when the input contained one. No digit-count validation happens here;
// that is the format estimator's job.
func NormalizePhone(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.TrimSpace(raw)
	digits := strings.Join(digitRunRE.FindAllString(s, -1), "")
	if digits == "" {
		return ""
	}
	if strings.Contains(s, "+") {
		return "+" + digits
	}
	return digits
}

// NormalizeEmail trims, lowercases and removes internal whitespace. Format
// rejection is left to the format estimator.
func NormalizeEmail(raw string) string {
	if raw == "" {
		return ""
	}
	e := strings.ToLower(strings.TrimSpace(raw))
	return internalWSRE.ReplaceAllString(e, "")
}

// NormalizeAddress collapses CR/LF/TAB runs to single spaces, then squeezes
// repeated spaces and trims.
func NormalizeAddress(raw string) string {
	if raw == "" {
		return ""
	}
	s := lineBreakRE.ReplaceAllString(raw, " ")
	s = whitespaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeQualifications splits on comma/slash/semicolon, uppercases and
// strips periods from each token, dropping empties. Order is preserved and
// duplicates are not removed.
func NormalizeQualifications(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range listSplitRE.Split(raw, -1) {
		p = strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(p)), ".", "")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeRegistration retains only alnum/slash/hyphen/space characters.
func NormalizeRegistration(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(regNoCharRE.ReplaceAllString(raw, ""))
}

// NormalizeSpecializations splits a free-text specialization list on
// comma/slash/semicolon and title-cases each entry. Callers holding an
// actual list pass it through without re-splitting.
func NormalizeSpecializations(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range listSplitRE.Split(raw, -1) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, titleCaser.String(strings.ToLower(p)))
		}
	}
	return out
}

// ExtractExperienceYears searches digit runs for the first value in
// [0, 120); failing that it tries an "N yrs"/"N years" pattern. Returns nil
// when nothing usable is found.
func ExtractExperienceYears(raw string) *int {
	if raw == "" {
		return nil
	}
	for _, d := range digitRunRE.FindAllString(raw, -1) {
		v, err := strconv.Atoi(d)
		if err != nil {
			continue
		}
		if v >= 0 && v < maxExperience {
			return &v
		}
	}
	if m := yearsRE.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			return &v
		}
	}
	return nil
}
